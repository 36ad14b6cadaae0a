package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// current region, pipeline phase, convoy fuel, and turn/version counters.
func (m Model) renderStatusBar() string {
	w := m.engine.World

	left := fmt.Sprintf(" %s | %s", w.RegionName(w.CurrentRegion), m.engine.Phase())

	fuel := "-"
	if v := w.FirstOperationalVehicle(); v != nil {
		fuel = fmt.Sprintf("%d", v.Fuel)
	}
	right := fmt.Sprintf("Fuel:%s | T:%d v%d ", fuel, w.TurnCount, w.StateVersion)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
