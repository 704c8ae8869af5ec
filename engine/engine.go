/*
engine.go - Command and query API

PURPOSE:
  The Engine is the boundary consumed by the UI. It owns no game state:
  the caller holds the current GameState and passes it into every command,
  receiving a new GameState back.

COMMANDS:
  Pay(state, accountID, amount)   -> payment.go
  CompleteEarning(state, amount)  earning -> paying
  AdvanceToNextPayday(state)      paying -> earning   (advance.go)
  AdvanceToNextDueDate(state)     paying -> paying | complete (advance.go)
  PayEverything(state)            paying -> complete  (advance.go)
  Reset()                         any -> fresh game

QUERIES:
  CurrentBalance(account, asOfDay)
  TotalOutstanding(state), AccountsRemaining(state)

CONCURRENCY:
  Commands are synchronous and never block. The engine does not serialize
  or deduplicate commands; hosts that accept concurrent input must run one
  command per game at a time.

ERRORS:
  A failed command returns its input state unchanged alongside the error.

SEE ALSO:
  - errors.go: Error taxonomy
  - codec.go: Serialization of GameState
*/
package engine

import (
	"github.com/rs/zerolog"
)

// Engine applies commands to game states under a fixed Config.
type Engine struct {
	Config Config
	Logger zerolog.Logger
}

// New creates an engine. Pass zerolog.Nop() to disable logging.
func New(cfg Config, logger zerolog.Logger) *Engine {
	return &Engine{
		Config: cfg,
		Logger: logger.With().Str("component", "engine").Logger(),
	}
}

// NewGame builds the initial state: configured accounts, starting cash,
// day 1, and a single opening snapshot.
func (e *Engine) NewGame() GameState {
	accounts := make([]Account, len(e.Config.Accounts))
	for i, a := range e.Config.Accounts {
		accounts[i] = a.clone()
	}

	stage := e.Config.StartingStage
	if stage == "" {
		stage = StagePaying
	}

	s := GameState{
		Accounts:             accounts,
		CurrentDay:           1,
		Stage:                stage,
		TotalMoney:           e.Config.StartingCash,
		MoneyEarnedThisRound: ZeroMoney(),
		TotalInterestPaid:    ZeroMoney(),
		TotalLateFees:        ZeroMoney(),
		FreedMinimums:        ZeroMoney(),
		Ledger:               NewLedger(),
	}
	s.NextPayDay = NextPayday(s.CurrentDay, e.Config.paydays())
	s.NextDueDate = NextDueDate(s.Accounts, s.CurrentDay)
	s.Ledger = s.Ledger.withSnapshot(TakeSnapshot(s))
	return s
}

// Reset discards all state and ledger history.
func (e *Engine) Reset() GameState {
	e.Logger.Info().Msg("game reset")
	return e.NewGame()
}

// CompleteEarning credits the minigame's earnings and moves to paying.
func (e *Engine) CompleteEarning(s GameState, amount Money) (GameState, error) {
	if err := requireStage(s, "complete earning", StageEarning); err != nil {
		return s, err
	}
	if amount.IsNegative() {
		return s, ErrInvalidAmount
	}

	next := s.Clone()
	next.TotalMoney = next.TotalMoney.Add(amount)
	next.MoneyEarnedThisRound = amount
	next.Stage = StagePaying
	next.Ledger = next.Ledger.withEarning(EarningEntry{Day: next.CurrentDay, Amount: amount})

	e.Logger.Debug().
		Int("day", int(next.CurrentDay)).
		Str("amount", amount.String()).
		Str("cash", next.TotalMoney.String()).
		Msg("earning credited")
	return next, nil
}

// requireStage fails unless the state is in the wanted stage.
func requireStage(s GameState, command string, want Stage) error {
	if s.Stage != want {
		return &StageError{Command: command, Stage: s.Stage}
	}
	return nil
}
