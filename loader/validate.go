package loader

import (
	"fmt"
	"strings"

	"github.com/KvFxKaido/SENTINEL-sub001/engine/world"
)

// ValidationError collects every referential problem found in a campaign so
// authors can fix them in one pass.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campaign validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled world for referential integrity.
func validate(w *world.State) error {
	ve := &ValidationError{}
	fail := func(format string, args ...any) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(format, args...))
	}

	if w.CampaignID == "" {
		fail("Campaign.id is required")
	}
	if w.CurrentRegion == "" {
		fail("Campaign.start is required")
	} else if _, ok := w.Regions[w.CurrentRegion]; !ok {
		fail("Campaign.start references unknown region %q", w.CurrentRegion)
	}

	for id, region := range w.Regions {
		if region.Name == "" {
			fail("region %q has no name", id)
		}
		if region.Faction != "" {
			if _, ok := w.Factions[region.Faction]; !ok {
				fail("region %q references unknown faction %q", id, region.Faction)
			}
		}
		for label, alt := range region.Alternatives {
			if alt.Type == "" {
				fail("region %q alternative %q has no type", id, label)
			}
		}
	}

	for id, faction := range w.Factions {
		if faction.Name == "" {
			fail("faction %q has no name", id)
		}
		for other := range faction.Relations {
			if _, ok := w.Factions[other]; !ok {
				fail("faction %q has a relation to unknown faction %q", id, other)
			}
		}
	}

	for id, npc := range w.NPCs {
		if npc.Faction != "" {
			if _, ok := w.Factions[npc.Faction]; !ok {
				fail("npc %q references unknown faction %q", id, npc.Faction)
			}
		}
		for _, mem := range npc.Memories {
			if _, ok := w.Regions[mem.Region]; !ok {
				fail("npc %q has a memory for unknown region %q", id, mem.Region)
			}
		}
	}

	for _, thread := range w.Threads {
		if len(thread.Keywords) == 0 {
			fail("thread %q has no trigger keywords", thread.ID)
		}
		if thread.Label == "" {
			fail("thread %q has no label", thread.ID)
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
