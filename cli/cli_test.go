package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KvFxKaido/SENTINEL-sub001/engine"
	"github.com/KvFxKaido/SENTINEL-sub001/engine/cascade"
	"github.com/KvFxKaido/SENTINEL-sub001/engine/travel"
	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
	"github.com/KvFxKaido/SENTINEL-sub001/validate"
)

func testWorld() *world.State {
	w := world.New("script-camp")
	w.CampaignName = "Script Campaign"
	w.SessionNumber = 1
	w.CurrentRegion = "depot"
	w.Regions["depot"] = &world.Region{ID: "depot", Name: "The Depot", Connectivity: world.Embedded}
	w.Regions["flats"] = &world.Region{ID: "flats", Name: "The Flats", Connectivity: world.Aware}
	w.Vehicles = []*world.Vehicle{{ID: "rig", Name: "Rig", Fuel: 20, Condition: 50, Operational: true}}
	w.Resources = map[string]int{"scrap": 10}
	return w
}

// runScript feeds a script through a fully wired CLI and returns the output.
func runScript(t *testing.T, w *world.State, script string) string {
	t.Helper()
	eng := engine.New(w, engine.Config{
		Validator: validate.Travel{},
		Cascade:   cascade.DefaultConfig(),
	})
	eng.Register(types.ActionTravel, travel.Resolve)

	var out bytes.Buffer
	c := New(eng)
	c.In = strings.NewReader(script)
	c.Out = &out
	c.SaveDir = t.TempDir()
	c.Run()
	return out.String()
}

func TestRun_ProposeCommitSession(t *testing.T) {
	w := testWorld()
	out := runScript(t, w, strings.Join([]string{
		"propose travel flats",
		"commit",
		"status",
		"/quit",
	}, "\n"))

	if !strings.Contains(out, "Feasible. Travel to The Flats") {
		t.Errorf("expected feasible preview, got:\n%s", out)
	}
	if !strings.Contains(out, "Arrived in The Flats.") {
		t.Errorf("expected arrival line, got:\n%s", out)
	}
	if !strings.Contains(out, "Turn 1, state v1") {
		t.Errorf("expected status after commit, got:\n%s", out)
	}
	if w.CurrentRegion != "flats" || w.StateVersion != 1 {
		t.Errorf("world after session: region %s v%d", w.CurrentRegion, w.StateVersion)
	}
}

func TestRun_ReviewPromptShown(t *testing.T) {
	out := runScript(t, testWorld(), strings.Join([]string{
		"propose travel flats",
		"cancel",
		"/quit",
	}, "\n"))

	if !strings.Contains(out, "[review] > ") {
		t.Errorf("expected review prompt while proposed, got:\n%s", out)
	}
	if !strings.Contains(out, "Proposal withdrawn.") {
		t.Errorf("expected cancel confirmation, got:\n%s", out)
	}
}

func TestRun_CancelLeavesWorldUntouched(t *testing.T) {
	w := testWorld()
	runScript(t, w, strings.Join([]string{
		"propose travel flats",
		"cancel",
		"/quit",
	}, "\n"))

	if w.CurrentRegion != "depot" || w.StateVersion != 0 {
		t.Errorf("cancel leaked into world: region %s v%d", w.CurrentRegion, w.StateVersion)
	}
}

func TestRun_NoopTravelDoesNotConsumeTurn(t *testing.T) {
	w := testWorld()
	out := runScript(t, w, strings.Join([]string{
		"propose travel flats",
		"commit",
		"propose travel flats",
		"/quit",
	}, "\n"))

	// Second proposal targets the now-current region: infeasible preview.
	if !strings.Contains(out, "already in The Flats") {
		t.Errorf("expected already-there detail, got:\n%s", out)
	}
	if w.StateVersion != 1 {
		t.Errorf("expected v1 after one real commit, got v%d", w.StateVersion)
	}
}

func TestRun_CommentsAndBlanksSkipped(t *testing.T) {
	out := runScript(t, testWorld(), strings.Join([]string{
		"# a scripted session",
		"",
		"status",
		"/quit",
	}, "\n"))

	if strings.Contains(out, "Unknown command") {
		t.Errorf("comments or blanks dispatched, got:\n%s", out)
	}
	if !strings.Contains(out, "Region: The Depot") {
		t.Errorf("expected status output, got:\n%s", out)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	out := runScript(t, testWorld(), "dance\n/quit\n")
	if !strings.Contains(out, "Unknown command: dance") {
		t.Errorf("expected unknown-command line, got:\n%s", out)
	}
}

func TestRun_SaveAndLoadRoundTrip(t *testing.T) {
	w := testWorld()
	out := runScript(t, w, strings.Join([]string{
		"propose travel flats",
		"commit",
		"/save checkpoint",
		"/load checkpoint",
		"/quit",
	}, "\n"))

	if !strings.Contains(out, "Campaign saved to checkpoint.") {
		t.Errorf("expected save confirmation, got:\n%s", out)
	}
	if !strings.Contains(out, "Campaign loaded from checkpoint (turn 1).") {
		t.Errorf("expected load confirmation, got:\n%s", out)
	}
}

func TestRun_TraceShowsEventLineage(t *testing.T) {
	out := runScript(t, testWorld(), strings.Join([]string{
		"/trace",
		"propose travel flats",
		"commit",
		"/quit",
	}, "\n"))

	if !strings.Contains(out, "[trace] Events:") {
		t.Errorf("expected trace event count, got:\n%s", out)
	}
	if !strings.Contains(out, "d0 travel.arrived") {
		t.Errorf("expected depth-tagged event line, got:\n%s", out)
	}
	if !strings.Contains(out, "current_region: depot -> flats") {
		t.Errorf("expected change trace, got:\n%s", out)
	}
}

func TestRun_EchoInputForScripts(t *testing.T) {
	w := testWorld()
	eng := engine.New(w, engine.Config{Validator: validate.Travel{}})
	eng.Register(types.ActionTravel, travel.Resolve)

	var out bytes.Buffer
	cli := New(eng)
	cli.In = strings.NewReader("status\n/quit\n")
	cli.Out = &out
	cli.EchoInput = true
	cli.Run()

	if !strings.Contains(out.String(), "> status\n") {
		t.Errorf("expected echoed input after prompt, got:\n%s", out.String())
	}
}
