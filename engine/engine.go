// Package engine implements the commitment-gate turn pipeline: a proposal is
// previewed without mutation, a reviewed action commits, and commitment runs
// deterministic resolution plus bounded cascades before persisting.
//
// One Engine drives one campaign. The phase machine is the concurrency
// control: while a commit is resolving, any further propose or commit fails
// with a PhaseError. There is no lock — an Engine is meant to be driven from
// a single goroutine, with cross-client conflicts caught optimistically via
// state versions.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/cascade"
	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
	"github.com/KvFxKaido/SENTINEL-sub001/notify"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// Phase is the orchestrator's position in the turn lifecycle.
type Phase string

const (
	Idle      Phase = "idle"
	Proposed  Phase = "proposed"
	Resolving Phase = "resolving"
	Resolved  Phase = "resolved"
	Narrating Phase = "narrating"
	Complete  Phase = "complete"
)

// validNext encodes the only legal phase transitions. Anything else is a
// bug in the engine itself and panics.
var validNext = map[Phase][]Phase{
	Idle:      {Proposed},
	Proposed:  {Resolving, Idle},
	Resolving: {Resolved},
	Resolved:  {Narrating, Complete},
	Narrating: {Complete},
	Complete:  {Idle},
}

// Validator previews a proposal against the world without mutating it. Its
// internals — how requirements, risks, and alternatives are computed — live
// outside this core.
type Validator interface {
	Validate(p types.Proposal, w *world.State) (*types.ProposalResult, error)
}

// Resolver resolves one action type. It mutates the world directly and must
// be deterministic in (action, world, rng): no I/O, no wall-clock reads that
// affect output.
type Resolver func(a *types.Action, w *world.State, rng *RNG) ([]types.TurnEvent, []types.Change, error)

// PersistFunc is the injected durability hook, called exactly once per
// successful commit, after the version increment and before any narration.
// The core consumes no return value; implementations own their error
// handling.
type PersistFunc func(*world.State)

// NarrateFunc is an optional best-effort flavor step run after persistence.
// Returned lines are appended to the result's narrative hooks. Panics are
// swallowed — narration must never be able to lose state.
type NarrateFunc func(*types.TurnResult, *world.State) []string

// Config wires an Engine's collaborators.
type Config struct {
	Validator Validator
	Cascade   cascade.Config
	Persist   PersistFunc
	Narrate   NarrateFunc
	Notify    notify.Sink
}

// pending holds the proposal/result pair between propose and commit.
type pending struct {
	proposal types.Proposal
	result   *types.ProposalResult
}

// Engine owns the phase machine for one campaign.
type Engine struct {
	World *world.State

	validator Validator
	resolvers map[types.ActionType]Resolver
	cascade   *cascade.Processor
	persist   PersistFunc
	narrate   NarrateFunc
	sink      notify.Sink

	phase       Phase
	pending     *pending
	lastChanges []types.Change
}

// New creates an engine for the given world. The validator is mandatory;
// resolvers are registered separately before the first commit.
func New(w *world.State, cfg Config) *Engine {
	if w == nil {
		panic("engine: nil world")
	}
	if cfg.Validator == nil {
		panic("engine: validator required")
	}
	return &Engine{
		World:     w,
		validator: cfg.Validator,
		resolvers: map[types.ActionType]Resolver{},
		cascade:   cascade.New(cfg.Cascade),
		persist:   cfg.Persist,
		narrate:   cfg.Narrate,
		sink:      cfg.Notify,
		phase:     Idle,
	}
}

var knownActionTypes = map[types.ActionType]bool{
	types.ActionTravel:   true,
	types.ActionParley:   true,
	types.ActionSalvage:  true,
	types.ActionSabotage: true,
}

// ParseActionType converts a wire string to a known action type. Unknown
// strings are rejected here, at construction time, not at commit time.
func ParseActionType(s string) (types.ActionType, error) {
	t := types.ActionType(s)
	if !knownActionTypes[t] {
		return "", fmt.Errorf("unknown action type %q", s)
	}
	return t, nil
}

// Register installs the resolver for an action type. Registering an unknown
// type or a nil resolver is a configuration bug and panics.
func (e *Engine) Register(t types.ActionType, r Resolver) {
	if !knownActionTypes[t] {
		panic(fmt.Sprintf("engine: cannot register resolver for unknown action type %q", t))
	}
	if r == nil {
		panic(fmt.Sprintf("engine: nil resolver for action type %q", t))
	}
	e.resolvers[t] = r
}

// Phase reports the current phase. Observable at all times, for UI feedback
// and tests.
func (e *Engine) Phase() Phase { return e.phase }

// Pending returns the stored proposal/result pair while in Proposed.
func (e *Engine) Pending() (types.Proposal, *types.ProposalResult, bool) {
	if e.pending == nil {
		return types.Proposal{}, nil, false
	}
	return e.pending.proposal, e.pending.result, true
}

// LastChanges returns the direct world changes reported by the most recent
// successful commit's resolver, for trace display.
func (e *Engine) LastChanges() []types.Change { return e.lastChanges }

// Propose previews a proposal. Valid only in Idle. Nothing is mutated; the
// result is safe to discard.
func (e *Engine) Propose(p types.Proposal) (*types.ProposalResult, error) {
	if e.phase != Idle {
		return nil, &PhaseError{Op: "propose", Phase: e.phase}
	}
	result, err := e.validator.Validate(p, e.World)
	if err != nil {
		return nil, fmt.Errorf("validating proposal: %w", err)
	}
	e.pending = &pending{proposal: p, result: result}
	e.transition(Proposed)
	e.emit(string(p.ActionType), 0, 0)
	return result, nil
}

// Cancel discards the pending proposal. Valid only in Proposed. Guaranteed
// zero side effects.
func (e *Engine) Cancel() error {
	if e.phase != Proposed {
		return &PhaseError{Op: "cancel", Phase: e.phase}
	}
	e.pending = nil
	e.transition(Idle)
	return nil
}

// ActionFromPending builds an Action from the pending proposal, bound to the
// world's current state version. Valid only in Proposed.
func (e *Engine) ActionFromPending(chosenAlternative string) (*types.Action, error) {
	if e.phase != Proposed {
		return nil, &PhaseError{Op: "action", Phase: e.phase}
	}
	return &types.Action{
		ActionID:          uuid.New().String(),
		ActionType:        e.pending.proposal.ActionType,
		StateVersion:      e.World.StateVersion,
		Payload:           e.pending.proposal.Payload,
		Timestamp:         time.Now().UTC(),
		ChosenAlternative: chosenAlternative,
	}, nil
}

// Commit resolves an authorized action: version check, deterministic
// resolution, cascade expansion, version increment, persistence, optional
// narration. Valid only in Proposed. On resolver failure the engine resets
// to Idle without incrementing the version or persisting.
func (e *Engine) Commit(a *types.Action) (result *types.TurnResult, err error) {
	if e.phase != Proposed {
		return nil, &PhaseError{Op: "commit", Phase: e.phase}
	}

	if a.StateVersion != e.World.StateVersion {
		e.pending = nil
		e.transition(Idle)
		return nil, &StaleStateError{Expected: e.World.StateVersion, Got: a.StateVersion}
	}

	e.transition(Resolving)
	e.emit(string(a.ActionType), 0, 0)

	// Looked up before the recovery guard: a missing resolver is a wiring
	// bug, not a runtime failure, and must stay fatal.
	resolver, ok := e.resolvers[a.ActionType]
	if !ok {
		panic(fmt.Sprintf("engine: no resolver registered for action type %q", a.ActionType))
	}

	// A failed commit must not leave the version bumped: the counter moves
	// exactly once per successful commit and never otherwise.
	incremented := false
	defer func() {
		if r := recover(); r != nil {
			if incremented {
				e.World.StateVersion--
				e.World.TurnCount--
			}
			e.pending = nil
			e.reset()
			result = nil
			err = &ResolutionError{ActionID: a.ActionID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	seed := SeedFor(a.ActionID)
	events, changes, rerr := resolver(a, e.World, NewRNG(seed))
	if rerr != nil {
		e.pending = nil
		e.reset()
		return nil, &ResolutionError{ActionID: a.ActionID, Err: rerr}
	}

	nextID := eventIDSequence(a.ActionID)
	for i := range events {
		events[i].EventID = nextID()
		events[i].SourceAction = a.ActionID
		events[i].CascadeDepth = 0
		events[i].Timestamp = a.Timestamp
	}

	// A resolver that reports no changes resolved to a no-op (e.g. travel
	// to the current region). The turn completes unsuccessfully: no version
	// increment, no cascades, no persistence.
	if len(changes) == 0 {
		result = &types.TurnResult{
			ActionID:       a.ActionID,
			Success:        false,
			StateVersion:   e.World.StateVersion,
			Events:         events,
			StateSnapshot:  e.World.Snapshot(),
			Seed:           seed,
			NarrativeHooks: narrativeHooks(events),
			TurnNumber:     e.World.TurnCount,
		}
		e.pending = nil
		e.lastChanges = nil
		e.transition(Resolved)
		e.emit(string(a.ActionType), len(events), 0)
		e.transition(Complete)
		e.emit(string(a.ActionType), len(events), 0)
		e.transition(Idle)
		return result, nil
	}

	// Exactly once per successful commit.
	e.World.StateVersion++
	e.World.TurnCount++
	incremented = true

	audit := make([]types.TurnEvent, 0, len(events))
	var notices []types.Notice
	for _, ev := range events {
		audit = append(audit, ev)
		derived, derivedNotices := e.cascade.Process(ev, e.World, nextID)
		for i := range derived {
			derived[i].Timestamp = a.Timestamp
		}
		audit = append(audit, derived...)
		notices = append(notices, derivedNotices...)
	}

	e.transition(Resolved)
	e.emit(string(a.ActionType), len(audit), len(notices))

	// Durable before any flavor step.
	if e.persist != nil {
		e.persist(e.World)
	}

	result = &types.TurnResult{
		ActionID:       a.ActionID,
		Success:        true,
		StateVersion:   e.World.StateVersion,
		Events:         audit,
		StateSnapshot:  e.World.Snapshot(),
		Seed:           seed,
		NarrativeHooks: narrativeHooks(audit),
		CascadeNotices: notices,
		TurnNumber:     e.World.TurnCount,
	}

	if e.narrate != nil {
		e.transition(Narrating)
		result.NarrativeHooks = append(result.NarrativeHooks, runNarrator(e.narrate, result, e.World)...)
	}

	e.pending = nil
	e.lastChanges = changes
	e.transition(Complete)
	e.emit(string(a.ActionType), len(audit), len(notices))
	e.transition(Idle)
	return result, nil
}

// transition moves the phase along a legal edge, panicking otherwise —
// an illegal edge means the engine itself is broken.
func (e *Engine) transition(to Phase) {
	for _, next := range validNext[e.phase] {
		if next == to {
			e.phase = to
			return
		}
	}
	panic(fmt.Sprintf("engine: invalid phase transition %s -> %s", e.phase, to))
}

// reset is the error escape hatch: it forces the phase back to Idle from
// anywhere so a failed commit can never wedge the machine in Resolving.
func (e *Engine) reset() {
	e.phase = Idle
}

func (e *Engine) emit(actionType string, eventCount, noticeCount int) {
	if e.sink == nil {
		return
	}
	e.sink.PhaseChanged(notify.Event{
		Campaign:    e.World.CampaignID,
		Session:     e.World.SessionNumber,
		Phase:       string(e.phase),
		ActionType:  actionType,
		Turn:        e.World.TurnCount,
		EventCount:  eventCount,
		NoticeCount: noticeCount,
	})
}

// runNarrator shields the pipeline from a misbehaving narrator. State is
// already persisted when this runs.
func runNarrator(narrate NarrateFunc, result *types.TurnResult, w *world.State) (lines []string) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
		}
	}()
	return narrate(result, w)
}

// narrativeHooks extracts the one-line summaries of all events, in audit
// order, as raw material for an external narrator.
func narrativeHooks(events []types.TurnEvent) []string {
	var hooks []string
	for _, ev := range events {
		if ev.Summary != "" {
			hooks = append(hooks, ev.Summary)
		}
	}
	return hooks
}
