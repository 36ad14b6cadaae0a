// Package cascade derives the ripple consequences of a turn event: faction
// standing propagation, NPC reactions, and dormant-thread surfacing. It
// explores the full reachable consequence tree with an explicit worklist,
// bounded by depth and de-duplicated by event id.
package cascade

import (
	"fmt"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// Processor applies the configured cascade rules.
type Processor struct {
	cfg Config
}

// New returns a processor with the given tuning.
func New(cfg Config) *Processor {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}
	return &Processor{cfg: cfg}
}

// Process expands one trigger event into all derived events reachable from
// it, mutating the world as rules fire. nextID allocates event ids; the
// caller owns the sequence so ids stay unique across one whole commit.
//
// The returned events are the audit log of this cascade (the trigger itself
// is not included). Notices are the grouped player-facing view, one per rule
// per expanded event, plus at most one depth-limit warning.
func (p *Processor) Process(trigger types.TurnEvent, w *world.State, nextID func() string) ([]types.TurnEvent, []types.Notice) {
	queue := []types.TurnEvent{trigger}
	seen := map[string]bool{}
	limitHit := false

	var derived []types.TurnEvent
	var notices []types.Notice

	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		if seen[ev.EventID] {
			continue
		}
		seen[ev.EventID] = true

		if ev.CascadeDepth >= p.cfg.MaxDepth {
			limitHit = true
			continue
		}

		var produced []types.TurnEvent
		if p.cfg.FactionRipple {
			evs, notice := p.factionRipple(ev, w, nextID)
			produced = append(produced, evs...)
			if notice != nil {
				notices = append(notices, *notice)
			}
		}
		if p.cfg.NPCReactions {
			evs, notice := p.npcReactions(ev, w, nextID)
			produced = append(produced, evs...)
			if notice != nil {
				notices = append(notices, *notice)
			}
		}
		if p.cfg.ThreadMatching {
			evs, notice := p.surfaceThreads(ev, w, nextID)
			produced = append(produced, evs...)
			if notice != nil {
				notices = append(notices, *notice)
			}
		}

		derived = append(derived, produced...)
		queue = append(queue, produced...)
	}

	if limitHit {
		notices = append(notices, types.Notice{
			Headline: "Cascade limit reached",
			Details:  []string{fmt.Sprintf("Consequences rippled %d steps deep; the rest fades into the background.", p.cfg.MaxDepth)},
			Severity: types.NoticeWarning,
		})
	}

	return derived, notices
}

// child builds a derived event one hop below its parent.
func child(parent types.TurnEvent, nextID func() string, eventType, summary string, payload map[string]any) types.TurnEvent {
	return types.TurnEvent{
		EventID:      nextID(),
		EventType:    eventType,
		SourceAction: parent.SourceAction,
		Payload:      payload,
		CascadedFrom: parent.EventID,
		CascadeDepth: parent.CascadeDepth + 1,
		Summary:      summary,
	}
}

// toInt coerces payload numbers, which arrive as int from resolvers or
// float64 after a JSON round trip.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
