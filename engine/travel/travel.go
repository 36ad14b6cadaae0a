// Package travel implements the reference resolver: moving the convoy
// between regions. It is the worked example of the resolver contract —
// deterministic, I/O-free, mutating the world only through its parameters.
package travel

import (
	"fmt"
	"sort"

	"github.com/KvFxKaido/SENTINEL-sub001/engine"
	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// Event types emitted by this resolver.
const (
	EventArrived             = "travel.arrived"
	EventFailed              = "travel.failed"
	EventConnectivityChanged = "connectivity.changed"
	EventVehicleConsumed     = "vehicle.consumed"
	EventConsequenceQueued   = "consequence.queued"
)

// Fixed per-trip cost drawn from the first operational vehicle.
const (
	fuelCost      = 5
	conditionWear = 2
)

// Resolve moves the convoy to payload["destination"]. Travel to the current
// region resolves to a no-op failure event with no changes; the engine
// leaves the state version untouched for those.
func Resolve(a *types.Action, w *world.State, rng *engine.RNG) ([]types.TurnEvent, []types.Change, error) {
	destination, _ := a.Payload["destination"].(string)
	if destination == "" {
		return nil, nil, fmt.Errorf("travel: payload has no destination")
	}
	region, ok := w.Regions[destination]
	if !ok {
		return nil, nil, fmt.Errorf("travel: unknown region %q", destination)
	}

	from := w.CurrentRegion
	if destination == from {
		ev := types.TurnEvent{
			EventType: EventFailed,
			Payload:   map[string]any{"region": destination},
			Summary:   fmt.Sprintf("Travel failed: already in %s", w.RegionName(destination)),
		}
		return []types.TurnEvent{ev}, nil, nil
	}

	var events []types.TurnEvent
	var changes []types.Change

	w.CurrentRegion = destination
	changes = append(changes, types.Change{Field: "current_region", From: from, To: destination})
	events = append(events, types.TurnEvent{
		EventType: EventArrived,
		Payload: map[string]any{
			"from":      from,
			"to":        destination,
			"from_name": w.RegionName(from),
			"to_name":   region.Name,
		},
		Summary: fmt.Sprintf("Arrived in %s", w.RegionName(destination)),
	})

	// Familiarity climbs one rung per visit, never more.
	if next := world.NextConnectivity(region.Connectivity); next != region.Connectivity {
		prev := region.Connectivity
		region.Connectivity = next
		changes = append(changes, types.Change{Field: "connectivity." + destination, From: string(prev), To: string(next)})
		events = append(events, types.TurnEvent{
			EventType: EventConnectivityChanged,
			Payload: map[string]any{
				"region": destination,
				"from":   string(prev),
				"to":     string(next),
			},
			Summary: fmt.Sprintf("Connectivity with %s: %s -> %s", w.RegionName(destination), prev, next),
		})
	}

	if ev, ch := consumeVehicle(w); ev != nil {
		events = append(events, *ev)
		changes = append(changes, ch...)
	}

	if a.ChosenAlternative != "" {
		altEvents, altChanges, err := applyAlternative(a, w, region)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, altEvents...)
		changes = append(changes, altChanges...)
	}

	return events, changes, nil
}

// consumeVehicle draws the fixed trip cost from the first operational
// vehicle. No vehicle, or nothing actually consumed, means no event.
func consumeVehicle(w *world.State) (*types.TurnEvent, []types.Change) {
	v := w.FirstOperationalVehicle()
	if v == nil {
		return nil, nil
	}

	burnedFuel := min(fuelCost, v.Fuel)
	wear := min(conditionWear, v.Condition)
	if burnedFuel == 0 && wear == 0 {
		return nil, nil
	}

	var changes []types.Change
	if burnedFuel > 0 {
		changes = append(changes, types.Change{Field: "vehicle." + v.ID + ".fuel", From: v.Fuel, To: v.Fuel - burnedFuel})
		v.Fuel -= burnedFuel
	}
	if wear > 0 {
		changes = append(changes, types.Change{Field: "vehicle." + v.ID + ".condition", From: v.Condition, To: v.Condition - wear})
		v.Condition -= wear
	}
	if v.Fuel == 0 || v.Condition == 0 {
		v.Operational = false
		changes = append(changes, types.Change{Field: "vehicle." + v.ID + ".operational", From: true, To: false})
	}

	ev := &types.TurnEvent{
		EventType: EventVehicleConsumed,
		Payload: map[string]any{
			"vehicle":   v.ID,
			"name":      v.Name,
			"fuel":      burnedFuel,
			"condition": wear,
		},
		Summary: fmt.Sprintf("%s burned %d fuel", v.Name, burnedFuel),
	}
	return ev, changes
}

// applyAlternative drains the chosen route alternative's extra costs and
// queues its consequence tag, if any. Resolving the consequence itself is a
// cascade/lookup concern, not this resolver's.
func applyAlternative(a *types.Action, w *world.State, region *world.Region) ([]types.TurnEvent, []types.Change, error) {
	alt, ok := region.Alternatives[a.ChosenAlternative]
	if !ok {
		return nil, nil, fmt.Errorf("travel: region %q has no alternative %q", region.ID, a.ChosenAlternative)
	}

	var events []types.TurnEvent
	var changes []types.Change

	for _, res := range sortedKeys(alt.Costs.Resources) {
		amount := alt.Costs.Resources[res]
		if amount == 0 {
			continue
		}
		before := w.Resources[res]
		after := max(0, before-amount)
		w.Resources[res] = after
		changes = append(changes, types.Change{Field: "resources." + res, From: before, To: after})
	}

	if alt.Consequence != "" {
		events = append(events, types.TurnEvent{
			EventType: EventConsequenceQueued,
			Payload: map[string]any{
				"tag":         alt.Consequence,
				"alternative": alt.Label,
			},
			Summary: fmt.Sprintf("Taking %s will have consequences", alt.Label),
		})
	}

	return events, changes, nil
}

// sortedKeys keeps resource drains in deterministic order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
