package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// The wire names are a stable contract with external narrators and logs;
// renaming a Go field must not silently rename the JSON key.
func TestAction_WireNames(t *testing.T) {
	a := Action{
		ActionID:          "a1",
		ActionType:        ActionTravel,
		StateVersion:      4,
		Payload:           map[string]any{"destination": "flats"},
		Timestamp:         time.Date(2031, 4, 2, 12, 0, 0, 0, time.UTC),
		ChosenAlternative: "night_run",
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{
		`"action_id"`, `"action_type"`, `"state_version"`,
		`"payload"`, `"timestamp"`, `"chosen_alternative"`,
	} {
		if !strings.Contains(string(data), key) {
			t.Errorf("missing wire key %s in %s", key, data)
		}
	}
}

func TestTurnResult_WireNames(t *testing.T) {
	r := TurnResult{
		ActionID:     "a1",
		Success:      true,
		StateVersion: 4,
		Events: []TurnEvent{{
			EventID:      "ev-1",
			EventType:    "travel.arrived",
			SourceAction: "a1",
			CascadedFrom: "ev-0",
			CascadeDepth: 1,
			Summary:      "s",
		}},
		Seed:           42,
		CascadeNotices: []Notice{{Headline: "h", Severity: NoticeWarning}},
		TurnNumber:     4,
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{
		`"action_id"`, `"success"`, `"state_version"`, `"events"`,
		`"state_snapshot"`, `"seed"`, `"cascade_notices"`, `"turn_number"`,
		`"event_id"`, `"event_type"`, `"source_action"`, `"cascaded_from"`,
		`"cascade_depth"`, `"headline"`, `"severity"`,
	} {
		if !strings.Contains(string(data), key) {
			t.Errorf("missing wire key %s in %s", key, data)
		}
	}
}

func TestTurnEvent_OmitsEmptyLineage(t *testing.T) {
	ev := TurnEvent{EventID: "ev-1", EventType: "x", Summary: "s"}
	data, _ := json.Marshal(ev)
	if strings.Contains(string(data), "cascaded_from") {
		t.Errorf("root events must omit cascaded_from, got %s", data)
	}
	if !strings.Contains(string(data), `"cascade_depth":0`) {
		t.Errorf("depth zero must still appear, got %s", data)
	}
}

func TestProposalResult_RoundTrip(t *testing.T) {
	in := ProposalResult{
		Feasible: true,
		Requirements: []Requirement{
			{Label: "Destination", Status: RequirementMet},
			{Label: "Vehicle", Status: RequirementBypassable, Bypass: "walk"},
		},
		Costs:        Costs{Turns: 1, Resources: map[string]int{"fuel": 5}},
		Risks:        []Risk{{Label: "Hostile", Severity: RiskHigh}},
		Alternatives: []Alternative{{Label: "toll", Type: "travel"}},
		Summary:      "ok",
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out ProposalResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Requirements[1].Status != RequirementBypassable || out.Risks[0].Severity != RiskHigh {
		t.Errorf("round trip lost enum values: %+v", out)
	}
}
