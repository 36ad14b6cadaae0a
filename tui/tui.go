package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/KvFxKaido/SENTINEL-sub001/engine"
	"github.com/KvFxKaido/SENTINEL-sub001/persist"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// rawLine stores an unstyled output line with its classification, so we can
// re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
}

// Model is the Bubble Tea model for the SENTINEL TUI.
type Model struct {
	engine *engine.Engine

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	saveDir  string
}

// turnOutputMsg carries output from the engine into the Update loop.
type turnOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	home, _ := os.UserHomeDir()
	return Model{
		engine:  eng,
		input:   ti,
		history: NewHistory(100),
		saveDir: filepath.Join(home, ".sentinel", "saves"),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine) error {
	m := New(eng)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command producing the campaign header.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		w := m.engine.World
		lines := []string{
			fmt.Sprintf("%s — session %d", w.CampaignName, w.SessionNumber),
			"",
		}
		lines = append(lines, m.cmdStatus()...)
		lines = append(lines, "", "Type help for commands.")
		return turnOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, turn output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case turnOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(turnOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	lines := m.execute(input)
	m = m.appendOutput(turnOutputMsg{input: input, lines: lines})
	return m, nil
}

// execute dispatches a turn command and returns the output lines.
func (m *Model) execute(input string) []string {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		return m.cmdHelp()
	case "status":
		return m.cmdStatus()
	case "standings":
		return m.cmdStandings()
	case "threads":
		return m.cmdThreads()
	case "propose":
		return m.cmdPropose(args)
	case "review":
		return m.cmdReview()
	case "commit":
		return m.cmdCommit(args)
	case "cancel":
		return m.cmdCancel()
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type help.", cmd)}
	}
}

func (m *Model) cmdPropose(args []string) []string {
	if len(args) < 1 {
		return []string{"Propose what? (propose travel <destination>)"}
	}
	actionType, err := engine.ParseActionType(args[0])
	if err != nil {
		return []string{fmt.Sprintf("No such action: %s", args[0])}
	}
	payload := map[string]any{}
	if actionType == types.ActionTravel {
		if len(args) < 2 {
			return []string{"Travel where? (propose travel <destination>)"}
		}
		payload["destination"] = args[1]
	}
	result, err := m.engine.Propose(types.Proposal{ActionType: actionType, Payload: payload})
	if err != nil {
		return []string{err.Error()}
	}
	return formatProposal(result)
}

func (m *Model) cmdReview() []string {
	_, result, ok := m.engine.Pending()
	if !ok {
		return []string{"Nothing proposed."}
	}
	return formatProposal(result)
}

func (m *Model) cmdCommit(args []string) []string {
	var chosen string
	if len(args) == 2 && args[0] == "via" {
		chosen = args[1]
	}
	action, err := m.engine.ActionFromPending(chosen)
	if err != nil {
		return []string{err.Error()}
	}
	result, err := m.engine.Commit(action)
	if err != nil {
		return []string{err.Error()}
	}
	lines := formatTurn(result)
	if m.trace {
		lines = append(lines, formatTrace(result)...)
	}
	return lines
}

func (m *Model) cmdCancel() []string {
	if err := m.engine.Cancel(); err != nil {
		return []string{err.Error()}
	}
	return []string{"Proposal withdrawn."}
}

func (m *Model) cmdStatus() []string {
	snap := m.engine.World.Snapshot()
	lines := []string{
		fmt.Sprintf("Region: %s", snap.RegionName),
		fmt.Sprintf("Turn %d, state v%d", snap.Turn, snap.StateVersion),
	}
	for _, v := range snap.Vehicles {
		status := "operational"
		if !v.Operational {
			status = "out of action"
		}
		lines = append(lines, fmt.Sprintf("%s: fuel %d, condition %d (%s)", v.Name, v.Fuel, v.Condition, status))
	}
	return lines
}

func (m *Model) cmdStandings() []string {
	w := m.engine.World
	if len(w.Factions) == 0 {
		return []string{"No factions in this campaign."}
	}
	var lines []string
	for _, id := range w.FactionIDs() {
		f := w.Factions[id]
		lines = append(lines, fmt.Sprintf("%-24s %+d", f.Name, f.Standing))
	}
	return lines
}

func (m *Model) cmdThreads() []string {
	w := m.engine.World
	if len(w.Threads) == 0 {
		return []string{"No dormant threads."}
	}
	var lines []string
	for _, t := range w.Threads {
		lines = append(lines, fmt.Sprintf("%s — %s", t.Label, t.Note))
	}
	return lines
}

// formatProposal renders a preview with status markers classifyLine picks up.
func formatProposal(result *types.ProposalResult) []string {
	var lines []string
	if result.Feasible {
		lines = append(lines, "Feasible. "+result.Summary)
	} else {
		lines = append(lines, "Not feasible. "+result.Summary)
	}
	for _, req := range result.Requirements {
		line := fmt.Sprintf("  [%s] %s", req.Status, req.Label)
		if req.Detail != "" {
			line += " — " + req.Detail
		}
		lines = append(lines, line)
	}
	for _, risk := range result.Risks {
		lines = append(lines, fmt.Sprintf("  ! risk (%s): %s", risk.Severity, risk.Label))
	}
	for _, alt := range result.Alternatives {
		lines = append(lines, fmt.Sprintf("  alternative: %s (%s)", alt.Label, alt.Type))
	}
	return lines
}

func formatTurn(result *types.TurnResult) []string {
	var lines []string
	for _, ev := range result.Events {
		if ev.CascadeDepth == 0 && ev.Summary != "" {
			lines = append(lines, ev.Summary+".")
		}
	}
	for _, notice := range result.CascadeNotices {
		marker := "* "
		switch notice.Severity {
		case types.NoticeWarning:
			marker = "! "
		case types.NoticeCritical:
			marker = "!! "
		}
		lines = append(lines, "", marker+notice.Headline)
		for _, d := range notice.Details {
			lines = append(lines, "  "+d)
		}
	}
	return lines
}

func formatTrace(result *types.TurnResult) []string {
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, ev := range result.Events {
		lines = append(lines, fmt.Sprintf("[trace]   d%d %s", ev.CascadeDepth, ev.EventType))
	}
	return lines
}

// appendOutput adds lines to the feed and refreshes the viewport.
func (m Model) appendOutput(msg turnOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text at word boundaries to fit within width.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0
	for i, word := range words {
		wLen := len(word)
		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}
		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}
	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/phase":
		return []string{fmt.Sprintf("Phase: %s", m.engine.Phase())}, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	case "/help":
		return m.cmdHelp(), false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	data, err := persist.Save(m.engine.World)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Campaign saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	sd, err := persist.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	persist.Apply(sd, m.engine.World)
	output := []string{fmt.Sprintf("Campaign loaded from %s (turn %d).", name, sd.Turn)}
	return append(output, m.cmdStatus()...)
}

func (m *Model) cmdHelp() []string {
	return []string{
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
		"  status     — Convoy status",
		"  standings  — Faction standings",
		"  threads    — Dormant story threads",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled (those are
// used for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
