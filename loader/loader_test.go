package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
)

func writeCampaign(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

const minimalCampaign = `
Campaign {
    id = "mini",
    name = "Mini",
    session = 2,
    start = "yard",
    resources = { scrap = 5 },
}
Region "yard" { name = "The Yard", connectivity = "connected" }
`

func TestLoad_MinimalCampaign(t *testing.T) {
	dir := writeCampaign(t, map[string]string{"campaign.lua": minimalCampaign})
	w, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.CampaignID != "mini" || w.CampaignName != "Mini" || w.SessionNumber != 2 {
		t.Errorf("campaign header: %+v", w)
	}
	if w.CurrentRegion != "yard" {
		t.Errorf("expected start in yard, got %s", w.CurrentRegion)
	}
	if w.Regions["yard"].Connectivity != world.Connected {
		t.Errorf("expected connected, got %s", w.Regions["yard"].Connectivity)
	}
	if w.Resources["scrap"] != 5 {
		t.Errorf("expected 5 scrap, got %d", w.Resources["scrap"])
	}
}

func TestLoad_FullContent(t *testing.T) {
	dir := writeCampaign(t, map[string]string{
		"campaign.lua": minimalCampaign,
		"content.lua": `
Region "pass" {
    name = "The Pass",
    faction = "keepers",
    alternatives = {
        { label = "toll", type = "travel", costs = { scrap = 3 }, consequence = "toll_paid" },
    },
}
Faction "keepers" { name = "Keepers", standing = -20, relations = { keepers = 0 } }
NPC "ash" {
    name = "Ash",
    faction = "keepers",
    disposition = 10,
    memories = { { region = "pass", note = "a debt" } },
}
Vehicle "mule" { name = "Mule", fuel = 30, condition = 70 }
Thread "toll_war" { label = "The Toll War", keywords = { "toll" }, note = "n" }
`,
	})

	w, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	alt, ok := w.Regions["pass"].Alternatives["toll"]
	if !ok {
		t.Fatalf("expected toll alternative, got %v", w.Regions["pass"].Alternatives)
	}
	if alt.Consequence != "toll_paid" || alt.Costs.Resources["scrap"] != 3 {
		t.Errorf("alternative compiled wrong: %+v", alt)
	}
	if w.Factions["keepers"].Standing != -20 {
		t.Errorf("faction standing: %d", w.Factions["keepers"].Standing)
	}
	if len(w.NPCs["ash"].Memories) != 1 || w.NPCs["ash"].Memories[0].Region != "pass" {
		t.Errorf("npc memories: %+v", w.NPCs["ash"].Memories)
	}
	if len(w.Vehicles) != 1 || !w.Vehicles[0].Operational {
		t.Errorf("vehicle should default operational: %+v", w.Vehicles)
	}
	if len(w.Threads) != 1 || w.Threads[0].Keywords[0] != "toll" {
		t.Errorf("threads: %+v", w.Threads)
	}
}

func TestLoad_ValidationErrorsCollected(t *testing.T) {
	dir := writeCampaign(t, map[string]string{
		"campaign.lua": `
Campaign { id = "bad", name = "Bad", start = "nowhere" }
Region "yard" { name = "The Yard", faction = "ghosts" }
Thread "t" { label = "T" }
`,
	})

	_, err := Load(dir)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// Unknown start, unknown faction, keywordless thread: all in one pass.
	if len(ve.Errors) != 3 {
		t.Errorf("expected 3 errors, got %v", ve.Errors)
	}
}

func TestLoad_NoCampaignDeclaration(t *testing.T) {
	dir := writeCampaign(t, map[string]string{
		"regions.lua": `Region "yard" { name = "The Yard" }`,
	})
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "Campaign") {
		t.Errorf("expected missing-campaign error, got %v", err)
	}
}

func TestLoad_DuplicateRegionRejected(t *testing.T) {
	dir := writeCampaign(t, map[string]string{
		"campaign.lua": minimalCampaign + `
Region "yard" { name = "Again" }
`,
	})
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate region") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestLoad_UnknownConnectivityRejected(t *testing.T) {
	dir := writeCampaign(t, map[string]string{
		"campaign.lua": `
Campaign { id = "c", name = "C", start = "yard" }
Region "yard" { name = "The Yard", connectivity = "psychic" }
`,
	})
	if _, err := Load(dir); err == nil {
		t.Error("expected error for unknown connectivity level")
	}
}

func TestLoad_SandboxBlocksIO(t *testing.T) {
	dir := writeCampaign(t, map[string]string{
		"campaign.lua": minimalCampaign + `
dofile("/etc/passwd")
`,
	})
	if _, err := Load(dir); err == nil {
		t.Error("expected sandboxed dofile to fail")
	}
}

func TestLoad_EmptyDirectory(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for a directory with no lua files")
	}
}

func TestSortLuaFiles_CampaignFirst(t *testing.T) {
	files := []string{"threads.lua", "campaign.lua", "a.lua"}
	sortLuaFiles(files)
	if files[0] != "campaign.lua" || files[1] != "a.lua" || files[2] != "threads.lua" {
		t.Errorf("unexpected order: %v", files)
	}
}
