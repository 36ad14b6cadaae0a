// Package types defines the shared artifact schemas for the SENTINEL turn
// core. This package contains only type definitions — no logic, no methods.
package types

import "time"

// ActionType is the closed set of player action categories. Resolvers are
// registered per type; unknown strings are rejected at parse time, not at
// commit time.
type ActionType string

const (
	ActionTravel   ActionType = "travel"
	ActionParley   ActionType = "parley"
	ActionSalvage  ActionType = "salvage"
	ActionSabotage ActionType = "sabotage"
)

// Proposal is a read-only statement of intent. It never mutates anything and
// carries no identity or version — it exists only between propose() and the
// player's review.
type Proposal struct {
	ActionType ActionType     `json:"action_type"`
	Payload    map[string]any `json:"payload"`
}

// RequirementStatus classifies a single requirement line in a preview.
type RequirementStatus string

const (
	RequirementMet        RequirementStatus = "met"
	RequirementUnmet      RequirementStatus = "unmet"
	RequirementBypassable RequirementStatus = "bypassable"
)

// Requirement is one precondition line of a ProposalResult.
type Requirement struct {
	Label  string            `json:"label"`
	Status RequirementStatus `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Bypass string            `json:"bypass,omitempty"`
}

// Costs is the prospective price of an action: turns spent, resources
// drained, and per-faction standing deltas.
type Costs struct {
	Turns     int            `json:"turns"`
	Resources map[string]int `json:"resources,omitempty"`
	Standing  map[string]int `json:"standing,omitempty"`
}

// RiskSeverity grades a risk line.
type RiskSeverity string

const (
	RiskLow    RiskSeverity = "low"
	RiskMedium RiskSeverity = "medium"
	RiskHigh   RiskSeverity = "high"
)

// Risk is one hazard line of a ProposalResult.
type Risk struct {
	Label    string       `json:"label"`
	Severity RiskSeverity `json:"severity"`
	Detail   string       `json:"detail,omitempty"`
}

// Alternative is an optional variant route/approach the player may choose at
// commit time. Consequence is an opaque tag resolved later by cascades.
type Alternative struct {
	Label       string `json:"label"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Costs       Costs  `json:"costs"`
	Consequence string `json:"consequence,omitempty"`
}

// ProposalResult is the immutable preview returned by the Action Validator.
// Discarding it has no effect on anything.
type ProposalResult struct {
	Feasible          bool          `json:"feasible"`
	Requirements      []Requirement `json:"requirements,omitempty"`
	Costs             Costs         `json:"costs"`
	Risks             []Risk        `json:"risks,omitempty"`
	Alternatives      []Alternative `json:"alternatives,omitempty"`
	Summary           string        `json:"summary"`
	ChosenAlternative string        `json:"chosen_alternative,omitempty"`
}

// Action is an authorized mutation: a reviewed Proposal bound to the world
// version it was reviewed against. It is consumed exactly once by commit.
type Action struct {
	ActionID          string         `json:"action_id"`
	ActionType        ActionType     `json:"action_type"`
	StateVersion      int            `json:"state_version"`
	Payload           map[string]any `json:"payload"`
	Timestamp         time.Time      `json:"timestamp"`
	ChosenAlternative string         `json:"chosen_alternative,omitempty"`
}

// TurnEvent records one thing that happened during a commit. Events with an
// empty CascadedFrom are roots of the cascade forest; all others reference
// the event that produced them.
type TurnEvent struct {
	EventID      string         `json:"event_id"`
	EventType    string         `json:"event_type"`
	SourceAction string         `json:"source_action,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	CascadedFrom string         `json:"cascaded_from,omitempty"`
	CascadeDepth int            `json:"cascade_depth"`
	Summary      string         `json:"summary"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Change records one direct world mutation performed by a resolver. Changes
// are a trace aid for front ends; they are not part of the wire result.
type Change struct {
	Field string `json:"field"`
	From  any    `json:"from,omitempty"`
	To    any    `json:"to,omitempty"`
}

// NoticeSeverity grades a player-facing notice.
type NoticeSeverity string

const (
	NoticeInfo     NoticeSeverity = "info"
	NoticeWarning  NoticeSeverity = "warning"
	NoticeCritical NoticeSeverity = "critical"
)

// Notice is a grouped, de-technicalized view of one or more TurnEvents for
// the player feed. It never carries raw event ids.
type Notice struct {
	Headline string         `json:"headline"`
	Details  []string       `json:"details,omitempty"`
	Severity NoticeSeverity `json:"severity"`
}

// VehicleStatus is the snapshot projection of one vehicle.
type VehicleStatus struct {
	Name        string `json:"name"`
	Fuel        int    `json:"fuel"`
	Condition   int    `json:"condition"`
	Operational bool   `json:"operational"`
}

// Snapshot is the UI-facing projection of world state included in a
// TurnResult. It is deliberately not the full world object.
type Snapshot struct {
	Campaign       string            `json:"campaign"`
	Turn           int               `json:"turn"`
	StateVersion   int               `json:"state_version"`
	Region         string            `json:"region"`
	RegionName     string            `json:"region_name"`
	Connectivity   map[string]string `json:"connectivity,omitempty"`
	Standings      map[string]int    `json:"standings,omitempty"`
	Resources      map[string]int    `json:"resources,omitempty"`
	Vehicles       []VehicleStatus   `json:"vehicles,omitempty"`
	DormantThreads int               `json:"dormant_threads"`
}

// TurnResult is the complete record of one committed turn: the full audit
// log including cascades, the player-facing notice feed, and the seed needed
// to replay resolution.
type TurnResult struct {
	ActionID       string      `json:"action_id"`
	Success        bool        `json:"success"`
	StateVersion   int         `json:"state_version"`
	Events         []TurnEvent `json:"events"`
	StateSnapshot  Snapshot    `json:"state_snapshot"`
	Seed           int64       `json:"seed"`
	NarrativeHooks []string    `json:"narrative_hooks,omitempty"`
	CascadeNotices []Notice    `json:"cascade_notices,omitempty"`
	TurnNumber     int         `json:"turn_number"`
}
