package cascade

import (
	"fmt"
	"math"
	"strings"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// Well-known event types the rules react to.
const (
	EventStandingChanged = "standing.changed"
	EventTravelArrived   = "travel.arrived"
	EventNPCReacted      = "npc.reacted"
	EventThreadSurfaced  = "thread.surfaced"
)

// factionRipple propagates a standing change to allies and enemies of the
// affected faction. Allies move with the player's standing; enemies move
// against it (the hostile multiplier is negative). Deltas that truncate to
// zero produce no event — small shifts vanish rather than rounding up.
func (p *Processor) factionRipple(trigger types.TurnEvent, w *world.State, nextID func() string) ([]types.TurnEvent, *types.Notice) {
	if trigger.EventType != EventStandingChanged {
		return nil, nil
	}
	faction, _ := trigger.Payload["faction"].(string)
	delta := toInt(trigger.Payload["delta"])
	if faction == "" || delta == 0 {
		return nil, nil
	}

	var events []types.TurnEvent
	var details []string
	anyLoss := false

	for _, otherID := range w.FactionIDs() {
		if otherID == faction {
			continue
		}
		relation := w.Relation(otherID, faction)
		var multiplier float64
		switch {
		case relation >= p.cfg.AlliedThreshold:
			multiplier = p.cfg.AlliedMultiplier
		case relation <= p.cfg.HostileThreshold:
			multiplier = p.cfg.HostileMultiplier
		default:
			continue
		}

		// Truncation toward zero is load-bearing: trunc(-1 * 0.3) == 0.
		propagated := int(math.Trunc(float64(delta) * multiplier))
		if propagated == 0 {
			continue
		}

		other := w.Factions[otherID]
		other.Standing += propagated
		if propagated < 0 {
			anyLoss = true
		}

		stance := "ally"
		if relation <= p.cfg.HostileThreshold {
			stance = "rival"
		}
		summary := fmt.Sprintf("Standing with %s shifted by %+d (%s of %s)",
			other.Name, propagated, stance, w.Factions[faction].Name)
		events = append(events, child(trigger, nextID, EventStandingChanged, summary, map[string]any{
			"faction":        otherID,
			"delta":          propagated,
			"standing":       other.Standing,
			"source_faction": faction,
		}))
		details = append(details, summary)
	}

	if len(events) == 0 {
		return nil, nil
	}
	severity := types.NoticeInfo
	if anyLoss {
		severity = types.NoticeWarning
	}
	return events, &types.Notice{
		Headline: "Ripple Effect",
		Details:  details,
		Severity: severity,
	}
}

// npcReactions makes NPCs respond to the player's fortunes. A standing
// change past the reaction threshold shifts the disposition of every NPC in
// the affected faction. An arrival fires any NPC memory bound to the
// destination instead; memories fire once.
func (p *Processor) npcReactions(trigger types.TurnEvent, w *world.State, nextID func() string) ([]types.TurnEvent, *types.Notice) {
	switch trigger.EventType {
	case EventStandingChanged:
		return p.standingReactions(trigger, w, nextID)
	case EventTravelArrived:
		return p.memoryReactions(trigger, w, nextID)
	default:
		return nil, nil
	}
}

func (p *Processor) standingReactions(trigger types.TurnEvent, w *world.State, nextID func() string) ([]types.TurnEvent, *types.Notice) {
	faction, _ := trigger.Payload["faction"].(string)
	delta := toInt(trigger.Payload["delta"])
	if faction == "" || abs(delta) < p.cfg.ReactionThreshold {
		return nil, nil
	}

	var events []types.TurnEvent
	var details []string
	for _, id := range w.NPCIDs() {
		npc := w.NPCs[id]
		if npc.Faction != faction {
			continue
		}
		var mood, summary string
		if delta > 0 {
			npc.Disposition++
			mood = "cooperative"
			summary = fmt.Sprintf("%s warms to you", npc.Name)
		} else {
			npc.Disposition--
			mood = "wary"
			summary = fmt.Sprintf("%s grows warier of you", npc.Name)
		}
		events = append(events, child(trigger, nextID, EventNPCReacted, summary, map[string]any{
			"npc":         id,
			"faction":     faction,
			"mood":        mood,
			"disposition": npc.Disposition,
		}))
		details = append(details, summary+".")
	}

	if len(events) == 0 {
		return nil, nil
	}
	return events, &types.Notice{
		Headline: "NPC Reactions",
		Details:  details,
		Severity: types.NoticeInfo,
	}
}

func (p *Processor) memoryReactions(trigger types.TurnEvent, w *world.State, nextID func() string) ([]types.TurnEvent, *types.Notice) {
	destination, _ := trigger.Payload["to"].(string)
	if destination == "" {
		return nil, nil
	}

	var events []types.TurnEvent
	var details []string
	for _, id := range w.NPCIDs() {
		npc := w.NPCs[id]
		for i, mem := range npc.Memories {
			if mem.Region != destination {
				continue
			}
			// Fires once.
			npc.Memories = append(npc.Memories[:i], npc.Memories[i+1:]...)
			summary := fmt.Sprintf("%s remembers something about %s", npc.Name, w.RegionName(destination))
			events = append(events, child(trigger, nextID, EventNPCReacted, summary, map[string]any{
				"npc":    id,
				"mood":   "stirred",
				"memory": mem.Note,
				"region": destination,
			}))
			details = append(details, fmt.Sprintf("%s: %s", npc.Name, mem.Note))
			break
		}
	}

	if len(events) == 0 {
		return nil, nil
	}
	return events, &types.Notice{
		Headline: "NPC Reactions",
		Details:  details,
		Severity: types.NoticeInfo,
	}
}

// surfaceThreads wakes dormant threads whose trigger keywords intersect the
// event's keyword set. One shared keyword is enough. A surfaced thread is
// removed from the pool by id here, at emit time — nothing downstream
// re-filters the pool.
func (p *Processor) surfaceThreads(trigger types.TurnEvent, w *world.State, nextID func() string) ([]types.TurnEvent, *types.Notice) {
	if len(w.Threads) == 0 {
		return nil, nil
	}
	eventWords := keywordSet(trigger)
	if len(eventWords) == 0 {
		return nil, nil
	}

	var events []types.TurnEvent
	var details []string

	// Collect first: RemoveThread mutates the slice being scanned.
	var surfaced []*world.Thread
	matchedBy := map[string][]string{}
	for _, t := range w.Threads {
		if matched := matchKeywords(t.Keywords, eventWords); len(matched) > 0 {
			surfaced = append(surfaced, t)
			matchedBy[t.ID] = matched
		}
	}

	for _, t := range surfaced {
		w.RemoveThread(t.ID)
		matched := matchedBy[t.ID]
		summary := fmt.Sprintf("A dormant thread surfaces: %s", t.Label)
		events = append(events, child(trigger, nextID, EventThreadSurfaced, summary, map[string]any{
			"thread":  t.ID,
			"label":   t.Label,
			"matched": strings.Join(matched, " "),
			"note":    t.Note,
		}))
		details = append(details, t.Label)
	}

	if len(events) == 0 {
		return nil, nil
	}
	return events, &types.Notice{
		Headline: "Thread Awakened",
		Details:  details,
		Severity: types.NoticeWarning,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
