// Package game runs the fixed-timestep loop and the session state machine
// that ties map, player and camera together.
package game

import "fmt"

// State is the session state. The numeric values are the ones the web
// client used.
type State int

const (
	StatePlay          State = 0
	StateMenu          State = 1
	StateEditor        State = 2
	StateEditorSandbox State = 3
)

func (s State) String() string {
	switch s {
	case StatePlay:
		return "play"
	case StateMenu:
		return "menu"
	case StateEditor:
		return "editor"
	case StateEditorSandbox:
		return "editor-sandbox"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Reason names why the loop was suspended.
type Reason string

const (
	ReasonPause            Reason = "pause"
	ReasonLoadMap          Reason = "loadMap"
	ReasonChangeBackground Reason = "changeBg"
	ReasonMapComplete      Reason = "mapComplete"
	ReasonRetryMap         Reason = "retryMap"
)

var suspensions = map[Reason]string{
	ReasonPause:            "Game suspended: Pause",
	ReasonLoadMap:          "Game suspended: Loading map",
	ReasonChangeBackground: "Game suspended: Changing background scene",
	ReasonMapComplete:      "Game suspended: Map has been completed",
	ReasonRetryMap:         "Game suspended: Retrying map",
}

// Message returns the log line for a suspension.
func (r Reason) Message() string {
	if msg, ok := suspensions[r]; ok {
		return msg
	}
	return "Game suspended: " + string(r)
}
