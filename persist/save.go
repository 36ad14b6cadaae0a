// Package persist provides reference implementations of the engine's
// persistence hook: a JSON save file for world state and a SQLite turn log
// for committed results. The engine itself only knows the hook signature.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KvFxKaido/SENTINEL-sub001/engine"
	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
)

// SaveFormat identifies the save file layout.
const SaveFormat = 1

// VehicleSave is the serialized runtime state of one vehicle.
type VehicleSave struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Fuel        int    `json:"fuel"`
	Condition   int    `json:"condition"`
	Operational bool   `json:"operational"`
}

// ThreadSave is one dormant thread still waiting to surface.
type ThreadSave struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
	Note     string   `json:"note,omitempty"`
}

// MemorySave is one unfired NPC memory.
type MemorySave struct {
	Region string `json:"region"`
	Note   string `json:"note"`
}

// SaveData is the JSON-serializable save format: the runtime state that
// diverges from the loaded campaign content.
type SaveData struct {
	Format       int                     `json:"format"`
	Campaign     string                  `json:"campaign"`
	Session      int                     `json:"session"`
	StateVersion int                     `json:"state_version"`
	Turn         int                     `json:"turn"`
	Region       string                  `json:"region"`
	Standings    map[string]int          `json:"standings"`
	Dispositions map[string]int          `json:"dispositions"`
	Memories     map[string][]MemorySave `json:"memories"`
	Connectivity map[string]string       `json:"connectivity"`
	Resources    map[string]int          `json:"resources"`
	Vehicles     []VehicleSave           `json:"vehicles"`
	Threads      []ThreadSave            `json:"threads"`
}

// Save serializes world runtime state to JSON bytes.
func Save(w *world.State) ([]byte, error) {
	data := SaveData{
		Format:       SaveFormat,
		Campaign:     w.CampaignID,
		Session:      w.SessionNumber,
		StateVersion: w.StateVersion,
		Turn:         w.TurnCount,
		Region:       w.CurrentRegion,
		Standings:    map[string]int{},
		Dispositions: map[string]int{},
		Memories:     map[string][]MemorySave{},
		Connectivity: map[string]string{},
		Resources:    map[string]int{},
	}
	for id, f := range w.Factions {
		data.Standings[id] = f.Standing
	}
	for id, npc := range w.NPCs {
		data.Dispositions[id] = npc.Disposition
		for _, mem := range npc.Memories {
			data.Memories[id] = append(data.Memories[id], MemorySave{Region: mem.Region, Note: mem.Note})
		}
	}
	for id, region := range w.Regions {
		data.Connectivity[id] = string(region.Connectivity)
	}
	for k, v := range w.Resources {
		data.Resources[k] = v
	}
	for _, v := range w.Vehicles {
		data.Vehicles = append(data.Vehicles, VehicleSave{
			ID: v.ID, Name: v.Name, Fuel: v.Fuel, Condition: v.Condition, Operational: v.Operational,
		})
	}
	for _, t := range w.Threads {
		data.Threads = append(data.Threads, ThreadSave{
			ID: t.ID, Label: t.Label, Keywords: t.Keywords, Note: t.Note,
		})
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData, hardening nil maps so callers
// never have to check.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Format != SaveFormat {
		return nil, fmt.Errorf("unsupported save format %d", sd.Format)
	}
	if sd.Standings == nil {
		sd.Standings = map[string]int{}
	}
	if sd.Dispositions == nil {
		sd.Dispositions = map[string]int{}
	}
	if sd.Memories == nil {
		sd.Memories = map[string][]MemorySave{}
	}
	if sd.Connectivity == nil {
		sd.Connectivity = map[string]string{}
	}
	if sd.Resources == nil {
		sd.Resources = map[string]int{}
	}
	return &sd, nil
}

// Apply overlays loaded save data onto a world built from campaign content.
// Entities present in the save but absent from the content are dropped
// silently — the content is authoritative for what exists.
func Apply(sd *SaveData, w *world.State) {
	w.SessionNumber = sd.Session
	w.StateVersion = sd.StateVersion
	w.TurnCount = sd.Turn
	if sd.Region != "" {
		w.CurrentRegion = sd.Region
	}
	for id, standing := range sd.Standings {
		if f, ok := w.Factions[id]; ok {
			f.Standing = standing
		}
	}
	for id, npc := range w.NPCs {
		if d, ok := sd.Dispositions[id]; ok {
			npc.Disposition = d
		}
		saved, ok := sd.Memories[id]
		if !ok {
			npc.Memories = nil
			continue
		}
		npc.Memories = npc.Memories[:0]
		for _, mem := range saved {
			npc.Memories = append(npc.Memories, world.Memory{Region: mem.Region, Note: mem.Note})
		}
	}
	for id, level := range sd.Connectivity {
		if region, ok := w.Regions[id]; ok {
			region.Connectivity = world.Connectivity(level)
		}
	}
	w.Resources = map[string]int{}
	for k, v := range sd.Resources {
		w.Resources[k] = v
	}
	w.Vehicles = w.Vehicles[:0]
	for _, v := range sd.Vehicles {
		w.Vehicles = append(w.Vehicles, &world.Vehicle{
			ID: v.ID, Name: v.Name, Fuel: v.Fuel, Condition: v.Condition, Operational: v.Operational,
		})
	}
	w.Threads = w.Threads[:0]
	for _, t := range sd.Threads {
		w.Threads = append(w.Threads, &world.Thread{
			ID: t.ID, Label: t.Label, Keywords: t.Keywords, Note: t.Note,
		})
	}
}

// FileHook returns a persistence hook that writes the save file atomically
// (temp file + rename). Write errors go to onErr if provided; the turn
// pipeline itself never sees them.
func FileHook(path string, onErr func(error)) engine.PersistFunc {
	return func(w *world.State) {
		report := func(err error) {
			if onErr != nil {
				onErr(err)
			}
		}
		data, err := Save(w)
		if err != nil {
			report(fmt.Errorf("serializing save: %w", err))
			return
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			report(fmt.Errorf("creating save directory: %w", err))
			return
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			report(fmt.Errorf("writing save: %w", err))
			return
		}
		if err := os.Rename(tmp, path); err != nil {
			report(fmt.Errorf("replacing save: %w", err))
		}
	}
}
