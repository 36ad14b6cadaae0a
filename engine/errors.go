package engine

import "fmt"

// PhaseError reports a propose/cancel/commit call made outside its valid
// phase. This is a programmer error on the caller's side, never a game
// condition.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("turn engine: %s not valid in phase %s", e.Op, e.Phase)
}

// StaleStateError reports an Action carrying an outdated state version. It
// is expected and recoverable: the engine has already reset to Idle, so the
// caller can re-propose against fresh state.
type StaleStateError struct {
	Expected int // the world's current version
	Got      int // the version the action was built against
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("stale state: action built against version %d, world is at %d", e.Got, e.Expected)
}

// ResolutionError reports a resolver or cascade failure during commit. The
// engine has reset to Idle without incrementing the state version or
// persisting; the world may hold partial resolver mutations.
type ResolutionError struct {
	ActionID string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving action %s: %v", e.ActionID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
