// Package validate holds the reference Action Validator used by the demo
// front ends and tests. Real campaigns supply their own feasibility rules;
// the engine only depends on the Validator contract, never on this package.
package validate

import (
	"fmt"
	"sort"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// Travel previews travel proposals: route and vehicle requirements, fuel
// cost, hostile-territory risk, and any route alternatives the destination
// region declares. It never mutates the world and is safe to call any
// number of times.
type Travel struct{}

// Validate implements the engine.Validator contract for travel proposals.
// Non-travel proposals come back infeasible with an explanatory requirement
// rather than an error — feasibility problems are preview content, not
// exceptions.
func (Travel) Validate(p types.Proposal, w *world.State) (*types.ProposalResult, error) {
	if p.ActionType != types.ActionTravel {
		return &types.ProposalResult{
			Feasible: false,
			Requirements: []types.Requirement{{
				Label:  "Supported action",
				Status: types.RequirementUnmet,
				Detail: fmt.Sprintf("this campaign has no rules for %q yet", p.ActionType),
			}},
			Summary: "Nothing comes of it.",
		}, nil
	}

	destination, _ := p.Payload["destination"].(string)
	result := &types.ProposalResult{
		Costs: types.Costs{
			Turns:     1,
			Resources: map[string]int{"fuel": 5},
		},
	}

	region, known := w.Regions[destination]
	switch {
	case destination == "":
		result.Requirements = append(result.Requirements, types.Requirement{
			Label:  "Destination",
			Status: types.RequirementUnmet,
			Detail: "no destination named",
		})
	case !known:
		result.Requirements = append(result.Requirements, types.Requirement{
			Label:  "Destination",
			Status: types.RequirementUnmet,
			Detail: fmt.Sprintf("no charted route to %q", destination),
		})
	case destination == w.CurrentRegion:
		result.Requirements = append(result.Requirements, types.Requirement{
			Label:  "Destination",
			Status: types.RequirementUnmet,
			Detail: fmt.Sprintf("the convoy is already in %s", w.RegionName(destination)),
		})
	default:
		result.Requirements = append(result.Requirements, types.Requirement{
			Label:  "Destination",
			Status: types.RequirementMet,
			Detail: fmt.Sprintf("route charted to %s", region.Name),
		})
	}

	if w.FirstOperationalVehicle() != nil {
		result.Requirements = append(result.Requirements, types.Requirement{
			Label:  "Operational vehicle",
			Status: types.RequirementMet,
		})
	} else {
		result.Requirements = append(result.Requirements, types.Requirement{
			Label:  "Operational vehicle",
			Status: types.RequirementBypassable,
			Detail: "no vehicle can make the trip",
			Bypass: "travel on foot, slower and riskier",
		})
		result.Risks = append(result.Risks, types.Risk{
			Label:    "On foot",
			Severity: types.RiskMedium,
			Detail:   "the convoy moves without cover",
		})
	}

	if known {
		result.Risks = append(result.Risks, territoryRisks(w, region)...)
		result.Alternatives = alternativesOf(region)
	}

	result.Feasible = true
	for _, req := range result.Requirements {
		if req.Status == types.RequirementUnmet {
			result.Feasible = false
			break
		}
	}

	if result.Feasible {
		result.Summary = fmt.Sprintf("Travel to %s: 1 turn, 5 fuel.", region.Name)
	} else {
		result.Summary = "The trip is not possible as proposed."
	}
	return result, nil
}

// territoryRisks grades the destination by the controlling faction's
// standing toward the player.
func territoryRisks(w *world.State, region *world.Region) []types.Risk {
	if region.Faction == "" {
		return nil
	}
	faction, ok := w.Factions[region.Faction]
	if !ok {
		return nil
	}
	switch {
	case faction.Standing <= -50:
		return []types.Risk{{
			Label:    "Hostile territory",
			Severity: types.RiskHigh,
			Detail:   fmt.Sprintf("%s shoot on sight", faction.Name),
		}}
	case faction.Standing <= -10:
		return []types.Risk{{
			Label:    "Unfriendly territory",
			Severity: types.RiskMedium,
			Detail:   fmt.Sprintf("%s hold a grudge", faction.Name),
		}}
	default:
		return nil
	}
}

// alternativesOf lists the region's declared route alternatives in stable
// order.
func alternativesOf(region *world.Region) []types.Alternative {
	if len(region.Alternatives) == 0 {
		return nil
	}
	labels := make([]string, 0, len(region.Alternatives))
	for label := range region.Alternatives {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	alts := make([]types.Alternative, 0, len(labels))
	for _, label := range labels {
		alts = append(alts, region.Alternatives[label])
	}
	return alts
}
