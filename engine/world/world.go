// Package world holds the mutable campaign state threaded through resolvers
// and cascade rules. Those callers mutate it directly — the *State parameter
// in their signatures is the explicit license to do so. The state must only
// change inside a commit; StateVersion is the optimistic-concurrency fence.
package world

import (
	"sort"

	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// Connectivity is the player's familiarity ladder for a region. Arrivals
// upgrade it at most one step at a time.
type Connectivity string

const (
	Disconnected Connectivity = "disconnected"
	Aware        Connectivity = "aware"
	Connected    Connectivity = "connected"
	Embedded     Connectivity = "embedded"
)

// NextConnectivity returns the level one step up, or the same level if
// already at the top.
func NextConnectivity(c Connectivity) Connectivity {
	switch c {
	case Disconnected:
		return Aware
	case Aware:
		return Connected
	case Connected:
		return Embedded
	default:
		return c
	}
}

// Region is a place the convoy can occupy.
type Region struct {
	ID           string
	Name         string
	Faction      string // controlling faction id, may be empty
	Connectivity Connectivity
	Alternatives map[string]types.Alternative // route alternatives by label
}

// Faction tracks standing toward the player and relations to other factions.
type Faction struct {
	ID        string
	Name      string
	Standing  int
	Relations map[string]int // other faction id → relation score
}

// Memory is a dormant NPC trigger bound to a region. It fires once, when the
// player arrives there.
type Memory struct {
	Region string
	Note   string
}

// NPC is a named character with a faction allegiance and a disposition
// toward the player.
type NPC struct {
	ID          string
	Name        string
	Faction     string
	Disposition int
	Memories    []Memory
}

// Vehicle is a convoy asset consumed by travel.
type Vehicle struct {
	ID          string
	Name        string
	Fuel        int
	Condition   int
	Operational bool
}

// Thread is a dormant consequence waiting for matching keywords to surface.
type Thread struct {
	ID       string
	Label    string
	Keywords []string
	Note     string
}

// State is the complete mutable campaign state.
type State struct {
	CampaignID    string
	CampaignName  string
	SessionNumber int

	StateVersion int
	TurnCount    int

	CurrentRegion string
	Regions       map[string]*Region
	Factions      map[string]*Faction
	NPCs          map[string]*NPC
	Vehicles      []*Vehicle
	Threads       []*Thread
	Resources     map[string]int
}

// New returns an empty but usable state. Loaders and tests fill it in.
func New(campaignID string) *State {
	return &State{
		CampaignID: campaignID,
		Regions:    map[string]*Region{},
		Factions:   map[string]*Faction{},
		NPCs:       map[string]*NPC{},
		Resources:  map[string]int{},
	}
}

// Relation returns faction from's relation score toward faction to.
// Unknown pairs are neutral (0).
func (s *State) Relation(from, to string) int {
	f, ok := s.Factions[from]
	if !ok || f.Relations == nil {
		return 0
	}
	return f.Relations[to]
}

// FactionIDs returns all faction ids in stable order.
func (s *State) FactionIDs() []string {
	ids := make([]string, 0, len(s.Factions))
	for id := range s.Factions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NPCIDs returns all NPC ids in stable order.
func (s *State) NPCIDs() []string {
	ids := make([]string, 0, len(s.NPCs))
	for id := range s.NPCs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FirstOperationalVehicle returns the first operational vehicle in the
// convoy, or nil if none remains.
func (s *State) FirstOperationalVehicle() *Vehicle {
	for _, v := range s.Vehicles {
		if v.Operational {
			return v
		}
	}
	return nil
}

// RemoveThread removes a dormant thread by id. Removal is by identity, never
// by position — cascades may surface threads in any order.
func (s *State) RemoveThread(id string) bool {
	for i, t := range s.Threads {
		if t.ID == id {
			s.Threads = append(s.Threads[:i], s.Threads[i+1:]...)
			return true
		}
	}
	return false
}

// RegionName returns the display name for a region id, falling back to the
// id itself.
func (s *State) RegionName(id string) string {
	if r, ok := s.Regions[id]; ok && r.Name != "" {
		return r.Name
	}
	return id
}

// Snapshot builds the UI-facing projection of this state. The projection is
// detached: mutating the world afterward does not change it.
func (s *State) Snapshot() types.Snapshot {
	snap := types.Snapshot{
		Campaign:       s.CampaignID,
		Turn:           s.TurnCount,
		StateVersion:   s.StateVersion,
		Region:         s.CurrentRegion,
		RegionName:     s.RegionName(s.CurrentRegion),
		DormantThreads: len(s.Threads),
	}
	if len(s.Regions) > 0 {
		snap.Connectivity = make(map[string]string, len(s.Regions))
		for id, r := range s.Regions {
			snap.Connectivity[id] = string(r.Connectivity)
		}
	}
	if len(s.Factions) > 0 {
		snap.Standings = make(map[string]int, len(s.Factions))
		for id, f := range s.Factions {
			snap.Standings[id] = f.Standing
		}
	}
	if len(s.Resources) > 0 {
		snap.Resources = make(map[string]int, len(s.Resources))
		for k, v := range s.Resources {
			snap.Resources[k] = v
		}
	}
	for _, v := range s.Vehicles {
		snap.Vehicles = append(snap.Vehicles, types.VehicleStatus{
			Name:        v.Name,
			Fuel:        v.Fuel,
			Condition:   v.Condition,
			Operational: v.Operational,
		})
	}
	return snap
}
