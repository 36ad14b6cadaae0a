// Package cli provides the terminal front end for the SENTINEL turn engine:
// a propose → review → commit shell with meta-command dispatch.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KvFxKaido/SENTINEL-sub001/engine"
	"github.com/KvFxKaido/SENTINEL-sub001/persist"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	TurnLog   *persist.TurnLog // optional
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".sentinel", "saves"),
	}
}

// Run starts the command loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	w := c.Engine.World
	if w.CampaignName != "" {
		c.printLine(fmt.Sprintf("%s — session %d", w.CampaignName, w.SessionNumber))
		c.printLine("")
	}
	c.cmdStatus()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print(c.prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		c.dispatch(input)
	}
}

// prompt reflects the pipeline phase so the player always knows whether a
// proposal is waiting for commitment.
func (c *CLI) prompt() string {
	if c.Engine.Phase() == engine.Proposed {
		return "[review] > "
	}
	return "> "
}

func (c *CLI) dispatch(input string) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		c.cmdHelp()
	case "status":
		c.cmdStatus()
	case "standings":
		c.cmdStandings()
	case "threads":
		c.cmdThreads()
	case "propose":
		c.cmdPropose(args)
	case "review":
		c.cmdReview()
	case "commit":
		c.cmdCommit(args)
	case "cancel":
		c.cmdCancel()
	default:
		c.printLine(fmt.Sprintf("Unknown command: %s. Type help.", cmd))
	}
}

// handleMeta dispatches meta-commands. Returns true if the shell should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/phase":
		c.printSystem(fmt.Sprintf("Phase: %s", c.Engine.Phase()))

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	case "/help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

// cmdPropose parses "propose travel <destination>" and previews it.
func (c *CLI) cmdPropose(args []string) {
	if len(args) < 1 {
		c.printLine("Propose what? (propose travel <destination>)")
		return
	}
	actionType, err := engine.ParseActionType(args[0])
	if err != nil {
		c.printLine(fmt.Sprintf("No such action: %s", args[0]))
		return
	}

	payload := map[string]any{}
	if actionType == types.ActionTravel {
		if len(args) < 2 {
			c.printLine("Travel where? (propose travel <destination>)")
			return
		}
		payload["destination"] = args[1]
	}

	result, err := c.Engine.Propose(types.Proposal{ActionType: actionType, Payload: payload})
	if err != nil {
		c.printError(err)
		return
	}
	c.printProposal(result)
}

func (c *CLI) cmdReview() {
	_, result, ok := c.Engine.Pending()
	if !ok {
		c.printLine("Nothing proposed. Use: propose travel <destination>")
		return
	}
	c.printProposal(result)
}

// cmdCommit turns the pending proposal into an action and commits it. An
// optional argument names a chosen alternative: "commit via smuggler_pass".
func (c *CLI) cmdCommit(args []string) {
	var chosen string
	if len(args) == 2 && args[0] == "via" {
		chosen = args[1]
	}

	action, err := c.Engine.ActionFromPending(chosen)
	if err != nil {
		c.printError(err)
		return
	}
	result, err := c.Engine.Commit(action)
	if err != nil {
		c.printError(err)
		return
	}
	c.printTurn(result)

	if c.TurnLog != nil {
		if err := c.TurnLog.Append(c.Engine.World.CampaignID, result); err != nil {
			c.printSystem(fmt.Sprintf("Turn log: %v", err))
		}
	}
	if c.Trace {
		c.printTrace(result)
	}
}

func (c *CLI) cmdCancel() {
	if err := c.Engine.Cancel(); err != nil {
		c.printError(err)
		return
	}
	c.printLine("Proposal withdrawn.")
}

func (c *CLI) cmdStatus() {
	snap := c.Engine.World.Snapshot()
	c.printLine(fmt.Sprintf("Region: %s", snap.RegionName))
	c.printLine(fmt.Sprintf("Turn %d, state v%d", snap.Turn, snap.StateVersion))
	for _, v := range snap.Vehicles {
		status := "operational"
		if !v.Operational {
			status = "out of action"
		}
		c.printLine(fmt.Sprintf("%s: fuel %d, condition %d (%s)", v.Name, v.Fuel, v.Condition, status))
	}
	if len(snap.Resources) > 0 {
		var parts []string
		for _, k := range sortedKeys(snap.Resources) {
			parts = append(parts, fmt.Sprintf("%s %d", k, snap.Resources[k]))
		}
		c.printLine("Resources: " + strings.Join(parts, ", "))
	}
}

func (c *CLI) cmdStandings() {
	w := c.Engine.World
	if len(w.Factions) == 0 {
		c.printLine("No factions in this campaign.")
		return
	}
	for _, id := range w.FactionIDs() {
		f := w.Factions[id]
		c.printLine(fmt.Sprintf("%-24s %+d", f.Name, f.Standing))
	}
}

func (c *CLI) cmdThreads() {
	w := c.Engine.World
	if len(w.Threads) == 0 {
		c.printLine("No dormant threads.")
		return
	}
	c.printLine(fmt.Sprintf("%d dormant thread(s) in the background.", len(w.Threads)))
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}
	data, err := persist.Save(c.Engine.World)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Campaign saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}
	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	sd, err := persist.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	persist.Apply(sd, c.Engine.World)
	c.printSystem(fmt.Sprintf("Campaign loaded from %s (turn %d).", name, sd.Turn))
	c.cmdStatus()
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  — Save campaign (default: quicksave)",
		"  /load [name]  — Load campaign (default: quicksave)",
		"  /phase        — Show the pipeline phase",
		"  /trace        — Toggle debug trace output",
		"  /quit         — Exit",
		"",
		"Turn commands:",
		"  propose travel <region>  — Preview a trip (no commitment)",
		"  review                   — Re-read the pending preview",
		"  commit [via <alt>]       — Commit the proposed action",
		"  cancel                   — Withdraw the proposal",
		"",
		"Campaign:",
		"  status       — Convoy status",
		"  standings    — Faction standings",
		"  threads      — Count of dormant threads",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printProposal(result *types.ProposalResult) {
	if result.Feasible {
		c.printLine("Feasible. " + result.Summary)
	} else {
		c.printLine("Not feasible. " + result.Summary)
	}
	for _, req := range result.Requirements {
		line := fmt.Sprintf("  [%s] %s", req.Status, req.Label)
		if req.Detail != "" {
			line += " — " + req.Detail
		}
		c.printLine(line)
		if req.Bypass != "" {
			c.printLine("        bypass: " + req.Bypass)
		}
	}
	for _, risk := range result.Risks {
		c.printLine(fmt.Sprintf("  risk (%s): %s — %s", risk.Severity, risk.Label, risk.Detail))
	}
	for _, alt := range result.Alternatives {
		c.printLine(fmt.Sprintf("  alternative: %s (%s) — %s", alt.Label, alt.Type, alt.Description))
	}
	if result.Feasible {
		c.printLine("Type commit to proceed, or cancel.")
	}
}

func (c *CLI) printTurn(result *types.TurnResult) {
	for _, ev := range result.Events {
		if ev.CascadeDepth == 0 && ev.Summary != "" {
			c.printLine(ev.Summary + ".")
		}
	}
	for _, notice := range result.CascadeNotices {
		c.printLine("")
		c.printLine(noticeTag(notice.Severity) + notice.Headline)
		for _, d := range notice.Details {
			c.printLine("  " + d)
		}
	}
	if !result.Success {
		c.printLine("(The turn was not consumed.)")
	}
}

func noticeTag(severity types.NoticeSeverity) string {
	switch severity {
	case types.NoticeWarning:
		return "! "
	case types.NoticeCritical:
		return "!! "
	default:
		return "* "
	}
}

func (c *CLI) printTrace(result *types.TurnResult) {
	c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
	for _, ev := range result.Events {
		c.printSystem(fmt.Sprintf("[trace]   d%d %s %s", ev.CascadeDepth, ev.EventType, ev.EventID))
	}
	if changes := c.Engine.LastChanges(); len(changes) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Changes: %d", len(changes)))
		for _, ch := range changes {
			c.printSystem(fmt.Sprintf("[trace]   %s: %v -> %v", ch.Field, ch.From, ch.To))
		}
	}
}

func (c *CLI) printError(err error) {
	var stale *engine.StaleStateError
	if errors.As(err, &stale) {
		c.printLine(fmt.Sprintf("The world moved on (v%d, you reviewed v%d). Propose again.", stale.Expected, stale.Got))
		return
	}
	c.printLine(err.Error())
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
