package validate

import (
	"testing"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

func testWorld() *world.State {
	w := world.New("c")
	w.CurrentRegion = "depot"
	w.Regions["depot"] = &world.Region{ID: "depot", Name: "The Depot"}
	w.Regions["flats"] = &world.Region{
		ID: "flats", Name: "The Flats", Faction: "guard",
		Alternatives: map[string]types.Alternative{
			"toll":   {Label: "toll", Type: "travel"},
			"bridge": {Label: "bridge", Type: "travel"},
		},
	}
	w.Factions["guard"] = &world.Faction{ID: "guard", Name: "Guard", Standing: 0}
	w.Vehicles = []*world.Vehicle{{ID: "rig", Name: "Rig", Fuel: 20, Condition: 50, Operational: true}}
	return w
}

func travelProposal(destination string) types.Proposal {
	return types.Proposal{
		ActionType: types.ActionTravel,
		Payload:    map[string]any{"destination": destination},
	}
}

func requirement(result *types.ProposalResult, label string) *types.Requirement {
	for i := range result.Requirements {
		if result.Requirements[i].Label == label {
			return &result.Requirements[i]
		}
	}
	return nil
}

func TestValidate_FeasibleTrip(t *testing.T) {
	result, err := Travel{}.Validate(travelProposal("flats"), testWorld())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Feasible {
		t.Fatalf("expected feasible, got %+v", result)
	}
	if req := requirement(result, "Destination"); req == nil || req.Status != types.RequirementMet {
		t.Errorf("expected destination met, got %+v", req)
	}
	if req := requirement(result, "Operational vehicle"); req == nil || req.Status != types.RequirementMet {
		t.Errorf("expected vehicle met, got %+v", req)
	}
	if result.Costs.Turns != 1 || result.Costs.Resources["fuel"] != 5 {
		t.Errorf("expected 1 turn 5 fuel, got %+v", result.Costs)
	}
}

func TestValidate_NeverMutates(t *testing.T) {
	w := testWorld()
	before := *w.Vehicles[0]
	for i := 0; i < 3; i++ {
		if _, err := (Travel{}).Validate(travelProposal("flats"), w); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}
	if *w.Vehicles[0] != before {
		t.Errorf("validation touched the vehicle: %+v", w.Vehicles[0])
	}
	if w.CurrentRegion != "depot" || w.StateVersion != 0 {
		t.Errorf("validation moved the world: %s v%d", w.CurrentRegion, w.StateVersion)
	}
}

func TestValidate_UnknownDestination(t *testing.T) {
	result, err := Travel{}.Validate(travelProposal("atlantis"), testWorld())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Feasible {
		t.Error("expected infeasible for uncharted region")
	}
	if req := requirement(result, "Destination"); req == nil || req.Status != types.RequirementUnmet {
		t.Errorf("expected unmet destination, got %+v", req)
	}
}

func TestValidate_AlreadyThere(t *testing.T) {
	result, _ := Travel{}.Validate(travelProposal("depot"), testWorld())
	if result.Feasible {
		t.Error("expected infeasible travel to current region")
	}
}

func TestValidate_NoVehicleIsBypassable(t *testing.T) {
	w := testWorld()
	w.Vehicles[0].Operational = false

	result, _ := Travel{}.Validate(travelProposal("flats"), w)
	req := requirement(result, "Operational vehicle")
	if req == nil || req.Status != types.RequirementBypassable {
		t.Fatalf("expected bypassable vehicle requirement, got %+v", req)
	}
	if req.Bypass == "" {
		t.Error("bypassable requirement must describe the bypass")
	}
	if !result.Feasible {
		t.Error("bypassable requirements alone must not block the trip")
	}
	found := false
	for _, r := range result.Risks {
		if r.Severity == types.RiskMedium {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a medium on-foot risk, got %v", result.Risks)
	}
}

func TestValidate_HostileTerritoryRisk(t *testing.T) {
	w := testWorld()
	w.Factions["guard"].Standing = -60

	result, _ := Travel{}.Validate(travelProposal("flats"), w)
	found := false
	for _, r := range result.Risks {
		if r.Severity == types.RiskHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a high territory risk at standing -60, got %v", result.Risks)
	}
}

func TestValidate_AlternativesStableOrder(t *testing.T) {
	w := testWorld()
	result, _ := Travel{}.Validate(travelProposal("flats"), w)
	if len(result.Alternatives) != 2 {
		t.Fatalf("expected both alternatives, got %v", result.Alternatives)
	}
	if result.Alternatives[0].Label != "bridge" || result.Alternatives[1].Label != "toll" {
		t.Errorf("expected sorted labels, got %v", result.Alternatives)
	}
}

func TestValidate_UnsupportedActionType(t *testing.T) {
	result, err := Travel{}.Validate(types.Proposal{ActionType: types.ActionParley}, testWorld())
	if err != nil {
		t.Fatalf("unsupported actions are previews, not errors: %v", err)
	}
	if result.Feasible {
		t.Error("expected infeasible preview for unsupported action")
	}
}
