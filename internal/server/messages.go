package server

import (
	"github.com/Scrimzay/tacticsim/internal/rules"
	"github.com/Scrimzay/tacticsim/internal/world"
)

// Incoming, keyed by "action"

type JoinAction struct {
	Action string `json:"action"`
	Name   string `json:"name"`
}

type SpawnAction struct {
	Action string         `json:"action"`
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Unit   rules.UnitType `json:"unit"`
}

type MoveAction struct {
	Action string      `json:"action"`
	From   world.Point `json:"from"`
	To     world.Point `json:"to"`
}

type RotateAction struct {
	Action string          `json:"action"`
	X      int             `json:"x"`
	Y      int             `json:"y"`
	Facing rules.Direction `json:"facing"`
}

type AttackAction struct {
	Action string      `json:"action"`
	From   world.Point `json:"from"`
	Target world.Point `json:"target"`
}

// CellAction is shared by reachable and inspect
type CellAction struct {
	Action string `json:"action"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// Outgoing, keyed by "type"

type StateMessage struct {
	Type  string         `json:"type"`
	State world.Snapshot `json:"state"`
}

func stateMessage(s world.Snapshot) StateMessage {
	return StateMessage{Type: "state", State: s}
}

type JoinedMessage struct {
	Type   string       `json:"type"`
	Player world.Player `json:"player"`
}

type RejectedMessage struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func rejected(action, reason string) RejectedMessage {
	return RejectedMessage{Type: "rejected", Action: action, Reason: reason}
}

type EventsMessage struct {
	Type   string        `json:"type"`
	Events []world.Event `json:"events"`
	Logs   []string      `json:"logs"`
}

type ReachableMessage struct {
	Type  string        `json:"type"`
	From  world.Point   `json:"from"`
	Cells []world.Point `json:"cells"`
}

type InspectMessage struct {
	Type    string          `json:"type"`
	X       int             `json:"x"`
	Y       int             `json:"y"`
	Terrain rules.Terrain   `json:"terrain"`
	Unit    *world.UnitView `json:"unit,omitempty"`
}
