// Package notify carries fire-and-forget phase notifications from the turn
// engine to whatever UI or transport layer is listening. The engine never
// blocks on, or reacts to, a sink.
package notify

// Event describes one phase transition of one campaign's turn pipeline.
type Event struct {
	Campaign    string `json:"campaign"`
	Session     int    `json:"session"`
	Phase       string `json:"phase"`
	ActionType  string `json:"action_type,omitempty"`
	Turn        int    `json:"turn"`
	EventCount  int    `json:"event_count"`
	NoticeCount int    `json:"notice_count"`
}

// Sink receives phase notifications. Implementations must not panic; the
// engine does not guard against it.
type Sink interface {
	PhaseChanged(Event)
}

// Func adapts a function to the Sink interface.
type Func func(Event)

// PhaseChanged calls f.
func (f Func) PhaseChanged(ev Event) { f(ev) }

// Multi fans one notification out to several sinks in order.
type Multi []Sink

// PhaseChanged forwards to every sink.
func (m Multi) PhaseChanged(ev Event) {
	for _, s := range m {
		s.PhaseChanged(ev)
	}
}
