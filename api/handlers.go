/*
handlers.go - HTTP API handlers for game sessions

PURPOSE:
  Exposes the simulation engine via REST API. Each session is one game:
  the handler loads the stored state, runs one engine command, saves the
  returned state and responds with the client view.

ENDPOINTS:
  Presets:
    GET    /api/presets                       List named game definitions
    GET    /api/scenarios                     List scripted demo sessions
    POST   /api/scenarios/{id}                Start a session from a scenario

  Games:
    GET    /api/games                         List sessions
    POST   /api/games                         Start a session (preset or inline game)
    GET    /api/games/{id}                    Current state
    DELETE /api/games/{id}                    Drop a session

  Commands:
    POST   /api/games/{id}/payments           Pay toward one account
    POST   /api/games/{id}/earnings           Credit an earning round
    POST   /api/games/{id}/advance/payday     Advance to the next payday
    POST   /api/games/{id}/advance/due-date   Advance to the next due date
    POST   /api/games/{id}/pay-everything     Settle every balance at once
    POST   /api/games/{id}/reset              Start the same game over

  Queries:
    GET    /api/games/{id}/balances?day=N     Balances as of a future day
    GET    /api/games/{id}/recommendation     Avalanche plan for current cash
    GET    /api/games/{id}/analysis           Strategy report vs optimal play
    GET    /api/games/{id}/snapshots          Ledger series
    GET    /api/games/{id}/audit              Payment audit trail (sqlite only)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Session persistence (any store.Store)
  - Factory: JSON game definition to engine.Config
  - Logger: zerolog logger, tagged per session for the engine

  Every session stores its own game definition, so restoring a state and
  simulating the optimal player always use the game the session was
  started with.

CONCURRENCY:
  The engine is single-threaded by contract. Requests for one session are
  serialized with a per-session mutex; different sessions run in parallel.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad body, non-positive or oversized payment)
  - 404: Unknown session or preset
  - 409: Valid command the game cannot take now (stage, insufficient funds)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - janitor.go: Expiry of idle sessions
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/avalanche-engine/analytics"
	"github.com/warp/avalanche-engine/engine"
	"github.com/warp/avalanche-engine/factory"
	"github.com/warp/avalanche-engine/internal/logger"
	"github.com/warp/avalanche-engine/store"
	"github.com/warp/avalanche-engine/store/sqlite"
)

// PaymentAuditor is implemented by stores that keep a payment audit trail.
type PaymentAuditor interface {
	PaymentHistory(ctx context.Context, sessionID string, accountID engine.AccountID) ([]sqlite.PaymentRecord, error)
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   store.Store
	Factory *factory.GameFactory
	Logger  zerolog.Logger

	// Game definition used when a create request names none.
	DefaultGame string

	locks sessionLocks
}

// NewHandler creates a handler over the given store.
func NewHandler(st store.Store, defaultGame string, log zerolog.Logger) *Handler {
	return &Handler{
		Store:       st,
		Factory:     factory.NewGameFactory(),
		Logger:      log,
		DefaultGame: defaultGame,
	}
}

// session is a loaded game ready for one command.
type session struct {
	id     string
	engine *engine.Engine
	state  engine.GameState
}

// newEngine builds the engine for a stored game definition.
func (h *Handler) newEngine(id, game string) (*engine.Engine, error) {
	cfg, err := h.Factory.ParseGameConfig(game)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, logger.WithSession(h.Logger, id)), nil
}

func (h *Handler) loadSession(ctx context.Context, id string) (session, error) {
	rec, err := h.Store.Load(ctx, id)
	if err != nil {
		return session{}, err
	}
	e, err := h.newEngine(id, string(rec.Game))
	if err != nil {
		return session{}, fmt.Errorf("stored game definition for %s: %w", id, err)
	}
	return session{id: id, engine: e, state: e.Restore(rec.Blob)}, nil
}

// withSession loads the session named in the URL under its lock and hands
// it to fn. Load failures are answered here.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(sess session)) {
	id := chi.URLParam(r, "id")
	unlock := h.locks.lock(id)
	defer unlock()

	sess, err := h.loadSession(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Game not found", nil)
		return
	}
	if err != nil {
		h.Logger.Error().Err(err).Str("session_id", id).Msg("failed to load session")
		writeError(w, http.StatusInternalServerError, "Failed to load game", err)
		return
	}
	fn(sess)
}

// command runs one engine command against the session and saves the result.
func (h *Handler) command(w http.ResponseWriter, r *http.Request, name string, fn func(e *engine.Engine, s engine.GameState) (engine.GameState, error)) {
	h.withSession(w, r, func(sess session) {
		next, err := fn(sess.engine, sess.state)
		if err != nil {
			writeCommandError(w, err)
			return
		}

		if err := h.Store.Save(r.Context(), sess.id, next); err != nil {
			h.Logger.Error().Err(err).Str("session_id", sess.id).Str("command", name).Msg("failed to save session")
			writeError(w, http.StatusInternalServerError, "Failed to save game", err)
			return
		}

		h.Logger.Debug().
			Str("session_id", sess.id).
			Str("command", name).
			Int("day", int(next.CurrentDay)).
			Str("stage", string(next.Stage)).
			Msg("command applied")
		writeJSON(w, http.StatusOK, toGameDTO(sess.id, next))
	})
}

// =============================================================================
// PRESET & GAME HANDLERS
// =============================================================================

// ListPresets returns the named game definitions.
// GET /api/presets
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.Presets())
}

// ListGames returns session summaries, most recent first.
// GET /api/games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	sums, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list games", err)
		return
	}
	if sums == nil {
		sums = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

// CreateGame starts a new session.
// POST /api/games
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	game := h.DefaultGame
	switch {
	case req.Game != nil:
		raw, err := json.Marshal(req.Game)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid game definition", err)
			return
		}
		game = string(raw)
	case req.Preset != "":
		preset, ok := factory.LookupPreset(req.Preset)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown preset: %s", req.Preset), nil)
			return
		}
		game = preset.JSON
	}

	id := uuid.NewString()
	e, err := h.newEngine(id, game)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid game definition", err)
		return
	}

	s := e.NewGame()
	if err := h.Store.Create(r.Context(), id, []byte(game), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create game", err)
		return
	}

	h.Logger.Info().Str("session_id", id).Str("preset", req.Preset).Msg("game created")
	writeJSON(w, http.StatusCreated, toGameDTO(id, s))
}

// GetGame returns the current state of a session.
// GET /api/games/{id}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(sess session) {
		writeJSON(w, http.StatusOK, toGameDTO(sess.id, sess.state))
	})
}

// DeleteGame drops a session.
// DELETE /api/games/{id}
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := h.locks.lock(id)
	defer unlock()

	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete game", err)
		return
	}
	h.locks.forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// Pay pays toward one account.
// POST /api/games/{id}/payments
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "account_id is required", nil)
		return
	}

	h.command(w, r, "pay", func(e *engine.Engine, s engine.GameState) (engine.GameState, error) {
		if _, ok := s.Account(req.AccountID); !ok {
			return s, errUnknownAccount{id: req.AccountID}
		}
		return e.Pay(s, req.AccountID, req.Amount)
	})
}

// CompleteEarning credits an earning round.
// POST /api/games/{id}/earnings
func (h *Handler) CompleteEarning(w http.ResponseWriter, r *http.Request) {
	var req EarningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.command(w, r, "complete earning", func(e *engine.Engine, s engine.GameState) (engine.GameState, error) {
		return e.CompleteEarning(s, req.Amount)
	})
}

// AdvanceToNextPayday moves the clock to the next payday.
// POST /api/games/{id}/advance/payday
func (h *Handler) AdvanceToNextPayday(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "advance to payday", func(e *engine.Engine, s engine.GameState) (engine.GameState, error) {
		return e.AdvanceToNextPayday(s)
	})
}

// AdvanceToNextDueDate moves the clock to the nearest due date.
// POST /api/games/{id}/advance/due-date
func (h *Handler) AdvanceToNextDueDate(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "advance to due date", func(e *engine.Engine, s engine.GameState) (engine.GameState, error) {
		return e.AdvanceToNextDueDate(s)
	})
}

// PayEverything settles every balance.
// POST /api/games/{id}/pay-everything
func (h *Handler) PayEverything(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "pay everything", func(e *engine.Engine, s engine.GameState) (engine.GameState, error) {
		return e.PayEverything(s)
	})
}

// ResetGame starts the session's game over.
// POST /api/games/{id}/reset
func (h *Handler) ResetGame(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "reset", func(e *engine.Engine, _ engine.GameState) (engine.GameState, error) {
		return e.Reset(), nil
	})
}

// =============================================================================
// QUERY HANDLERS
// =============================================================================

// GetBalances previews balances on a day at or after the current one.
// GET /api/games/{id}/balances?day=N
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(sess session) {
		s := sess.state
		day := s.CurrentDay
		if raw := r.URL.Query().Get("day"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid day", err)
				return
			}
			day = engine.Day(n)
		}
		if day < s.CurrentDay {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Day %d is before the current day %d", day, s.CurrentDay), nil)
			return
		}

		dto := BalancesDTO{Day: day, Total: engine.ZeroMoney(), Accounts: make([]BalanceDTO, len(s.Accounts))}
		for i, a := range s.Accounts {
			bal := engine.CurrentBalance(a, day)
			dto.Accounts[i] = BalanceDTO{
				AccountID:        a.ID,
				Balance:          bal,
				PendingInterest:  a.PendingInterest(day),
				RemainingMinimum: engine.RemainingMinimum(a, day),
			}
			dto.Total = dto.Total.Add(bal)
		}
		writeJSON(w, http.StatusOK, dto)
	})
}

// GetRecommendation returns the avalanche plan for the session's cash, or
// for ?cash= when given.
// GET /api/games/{id}/recommendation
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(sess session) {
		s := sess.state
		cash := s.TotalMoney
		if raw := r.URL.Query().Get("cash"); raw != "" {
			parsed, err := engine.ParseMoney(raw)
			if err != nil || parsed.IsNegative() {
				writeError(w, http.StatusBadRequest, "Invalid cash amount", err)
				return
			}
			cash = parsed
		}

		plan := analytics.RecommendPayments(s, cash)
		estimates := make([]EstimateDTO, 0, len(plan))
		for _, p := range plan {
			a, ok := s.Account(p.AccountID)
			if !ok {
				continue
			}
			daysUntilDue := engine.DaysBetween(s.CurrentDay, engine.DueDayAfter(a.DueDay, s.CurrentDay))
			estimates = append(estimates, EstimateDTO{
				AccountID:      p.AccountID,
				Amount:         p.Amount,
				PayoffEstimate: analytics.EstimatePayoff(a, p.Amount, daysUntilDue),
			})
		}

		writeJSON(w, http.StatusOK, RecommendationDTO{
			Cash:        cash,
			Total:       analytics.PlanTotal(plan),
			Suggestions: plan,
			Estimates:   estimates,
			Advice:      analytics.Advice(s),
		})
	})
}

// GetAnalysis compares the session with an avalanche player given the
// same game and the same earnings.
// GET /api/games/{id}/analysis
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(sess session) {
		optimal, err := analytics.SimulateOptimal(sess.engine, sess.state.Ledger.Earnings)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to simulate optimal play", err)
			return
		}

		writeJSON(w, http.StatusOK, AnalysisDTO{
			Report:     analytics.AnalyzeStrategy(sess.state),
			Optimal:    optimal,
			Comparison: analytics.Compare(sess.state, optimal),
		})
	})
}

// GetHistory returns the ledger series. ?account= filters payments.
// GET /api/games/{id}/snapshots
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(sess session) {
		l := sess.state.Ledger
		payments := l.PaymentLog
		if account := r.URL.Query().Get("account"); account != "" {
			payments = l.PaymentsFor(engine.AccountID(account))
		}

		writeJSON(w, http.StatusOK, HistoryDTO{
			Snapshots: nonNil(l.DailySnapshots),
			LateFees:  nonNil(l.LateFees),
			Earnings:  nonNil(l.Earnings),
			Payments:  nonNil(payments),
		})
	})
}

// GetAudit returns mirrored payments across every round of a session,
// including rounds discarded by reset. ?account= filters by account.
// GET /api/games/{id}/audit
func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	auditor, ok := h.Store.(PaymentAuditor)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Payment audit requires the sqlite store", nil)
		return
	}

	id := chi.URLParam(r, "id")
	records, err := auditor.PaymentHistory(r.Context(), id, engine.AccountID(r.URL.Query().Get("account")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read payment audit", err)
		return
	}
	writeJSON(w, http.StatusOK, AuditDTO{SessionID: id, Payments: nonNil(records)})
}

// =============================================================================
// HELPERS
// =============================================================================

// errUnknownAccount rejects payments to ids the game does not have. The
// engine treats them as no-ops; over HTTP they are almost always typos.
type errUnknownAccount struct{ id engine.AccountID }

func (e errUnknownAccount) Error() string { return fmt.Sprintf("unknown account %q", e.id) }

func writeCommandError(w http.ResponseWriter, err error) {
	var unknown errUnknownAccount
	var funds *engine.InsufficientFundsError

	switch {
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "unknown_account"})
	case errors.As(err, &funds):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:   err.Error(),
			Code:    "insufficient_funds",
			Details: map[string]engine.Money{"shortfall": funds.Shortfall()},
		})
	case engine.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: errorCode(err)})
	case engine.IsConflict(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: errorCode(err)})
	default:
		writeError(w, http.StatusInternalServerError, "Command failed", err)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, engine.ErrOverpayment):
		return "overpayment"
	case errors.Is(err, engine.ErrGameComplete):
		return "game_complete"
	case errors.Is(err, engine.ErrInvalidStage):
		return "invalid_stage"
	case errors.Is(err, engine.ErrInsufficientFunds):
		return "insufficient_funds"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// sessionLocks hands out one mutex per session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (l *sessionLocks) forget(id string) {
	l.mu.Lock()
	delete(l.locks, id)
	l.mu.Unlock()
}
