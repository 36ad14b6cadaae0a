package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// compile converts the collected Lua tables into a world state.
func compile(coll *collector) (*world.State, error) {
	if coll.campaign == nil {
		return nil, fmt.Errorf("no Campaign {} declaration found")
	}

	w := world.New(getString(coll.campaign, "id"))
	w.CampaignName = getString(coll.campaign, "name")
	w.SessionNumber = getInt(coll.campaign, "session")
	w.CurrentRegion = getString(coll.campaign, "start")
	w.Resources = tableToIntMap(getTable(coll.campaign, "resources"))
	if w.Resources == nil {
		w.Resources = map[string]int{}
	}

	for _, raw := range coll.regions {
		region, err := compileRegion(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := w.Regions[raw.id]; dup {
			return nil, fmt.Errorf("duplicate region %q", raw.id)
		}
		w.Regions[raw.id] = region
	}

	for _, raw := range coll.factions {
		if _, dup := w.Factions[raw.id]; dup {
			return nil, fmt.Errorf("duplicate faction %q", raw.id)
		}
		w.Factions[raw.id] = &world.Faction{
			ID:        raw.id,
			Name:      getString(raw.table, "name"),
			Standing:  getInt(raw.table, "standing"),
			Relations: tableToIntMap(getTable(raw.table, "relations")),
		}
	}

	for _, raw := range coll.npcs {
		if _, dup := w.NPCs[raw.id]; dup {
			return nil, fmt.Errorf("duplicate npc %q", raw.id)
		}
		w.NPCs[raw.id] = &world.NPC{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			Faction:     getString(raw.table, "faction"),
			Disposition: getInt(raw.table, "disposition"),
			Memories:    compileMemories(getTable(raw.table, "memories")),
		}
	}

	for _, raw := range coll.vehicles {
		w.Vehicles = append(w.Vehicles, &world.Vehicle{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			Fuel:        getInt(raw.table, "fuel"),
			Condition:   getInt(raw.table, "condition"),
			Operational: getBool(raw.table, "operational", true),
		})
	}

	for _, raw := range coll.threads {
		w.Threads = append(w.Threads, &world.Thread{
			ID:       raw.id,
			Label:    getString(raw.table, "label"),
			Keywords: tableToStringSlice(getTable(raw.table, "keywords")),
			Note:     getString(raw.table, "note"),
		})
	}

	return w, nil
}

func compileRegion(raw rawDef) (*world.Region, error) {
	region := &world.Region{
		ID:           raw.id,
		Name:         getString(raw.table, "name"),
		Faction:      getString(raw.table, "faction"),
		Connectivity: world.Disconnected,
	}
	if c := getString(raw.table, "connectivity"); c != "" {
		switch world.Connectivity(c) {
		case world.Disconnected, world.Aware, world.Connected, world.Embedded:
			region.Connectivity = world.Connectivity(c)
		default:
			return nil, fmt.Errorf("region %q: unknown connectivity %q", raw.id, c)
		}
	}

	if alts := getTable(raw.table, "alternatives"); alts != nil {
		region.Alternatives = map[string]types.Alternative{}
		for i := 1; i <= alts.MaxN(); i++ {
			tbl, ok := alts.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("region %q: alternative %d is not a table", raw.id, i)
			}
			alt := types.Alternative{
				Label:       getString(tbl, "label"),
				Type:        getString(tbl, "type"),
				Description: getString(tbl, "description"),
				Consequence: getString(tbl, "consequence"),
				Costs:       types.Costs{Resources: tableToIntMap(getTable(tbl, "costs"))},
			}
			if alt.Label == "" {
				return nil, fmt.Errorf("region %q: alternative %d has no label", raw.id, i)
			}
			region.Alternatives[alt.Label] = alt
		}
	}
	return region, nil
}

func compileMemories(tbl *lua.LTable) []world.Memory {
	if tbl == nil {
		return nil
	}
	var memories []world.Memory
	for i := 1; i <= tbl.MaxN(); i++ {
		if m, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			memories = append(memories, world.Memory{
				Region: getString(m, "region"),
				Note:   getString(m, "note"),
			})
		}
	}
	return memories
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToIntMap converts a Lua table of numeric fields to map[string]int.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, okK := k.(lua.LString)
		vn, okV := v.(lua.LNumber)
		if okK && okV {
			m[string(ks)] = int(vn)
		}
	})
	return m
}

// tableToStringSlice converts a Lua array of strings to a []string.
func tableToStringSlice(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}
