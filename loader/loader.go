// Package loader compiles Lua campaign content into a starting world state.
// The Lua VM is sandboxed and discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	campaign *lua.LTable
	regions  []rawDef
	factions []rawDef
	npcs     []rawDef
	vehicles []rawDef
	threads  []rawDef
}

// rawDef holds one "Kind \"id\" { ... }" declaration before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// Load reads all .lua files from dir, compiles them into a world state, and
// validates cross-references.
func Load(dir string) (*world.State, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading campaign directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	sortLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	w, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling campaign: %w", err)
	}
	if err := validate(w); err != nil {
		return nil, err
	}
	return w, nil
}

// sortLuaFiles orders campaign.lua first, the rest alphabetical, so the
// campaign header is defined before content that depends on it.
func sortLuaFiles(files []string) {
	sort.Slice(files, func(i, j int) bool {
		if files[i] == "campaign.lua" {
			return true
		}
		if files[j] == "campaign.lua" {
			return false
		}
		return files[i] < files[j]
	})
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that would let content touch the host system or
// break determinism.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}
	if mathTbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		mathTbl.RawSetString("randomseed", lua.LNil)
	}
}

// registerAPI registers the content constructors as Lua globals. All of them
// follow the curried form: Kind "id" { ... }.
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Campaign", L.NewFunction(func(L *lua.LState) int {
		coll.campaign = L.CheckTable(1)
		return 0
	}))
	curried := map[string]*[]rawDef{
		"Region":  &coll.regions,
		"Faction": &coll.factions,
		"NPC":     &coll.npcs,
		"Vehicle": &coll.vehicles,
		"Thread":  &coll.threads,
	}
	for name, dst := range curried {
		dst := dst
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				*dst = append(*dst, rawDef{id: id, table: tbl})
				return 0
			}))
			return 1
		}))
	}
}
