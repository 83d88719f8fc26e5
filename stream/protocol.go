package stream

import (
	"encoding/json"
	"fmt"

	"openalgo/models"
)

// CommandAction selects what the writer goroutine does with a Command.
type CommandAction int

const (
	ActionSubscribe CommandAction = iota + 1
	ActionUnsubscribe
	ActionDisconnect
)

func (a CommandAction) String() string {
	switch a {
	case ActionSubscribe:
		return "subscribe"
	case ActionUnsubscribe:
		return "unsubscribe"
	case ActionDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Command is consumed exactly once by the writer goroutine. Mode and
// Instruments are unused for ActionDisconnect.
type Command struct {
	Action      CommandAction
	Mode        models.Mode
	Instruments []models.Instrument
}

// CommandSubscribe builds a subscribe command for the given mode.
func CommandSubscribe(mode models.Mode, instruments []models.Instrument) Command {
	return Command{Action: ActionSubscribe, Mode: mode, Instruments: instruments}
}

// CommandUnsubscribe builds an unsubscribe command for the given mode.
func CommandUnsubscribe(mode models.Mode, instruments []models.Instrument) Command {
	return Command{Action: ActionUnsubscribe, Mode: mode, Instruments: instruments}
}

// CommandDisconnect asks the writer to close the connection.
func CommandDisconnect() Command {
	return Command{Action: ActionDisconnect}
}

type subscriptionFrame struct {
	Action  string              `json:"action"`
	Mode    string              `json:"mode"`
	Symbols []models.Instrument `json:"symbols"`
}

type authFrame struct {
	Action string `json:"action"`
	APIKey string `json:"api_key"`
}

// Render produces the text frame for a subscribe or unsubscribe command.
// Instruments are written in the order given; a nil list renders as [].
func (c Command) Render() ([]byte, error) {
	switch c.Action {
	case ActionSubscribe, ActionUnsubscribe:
	default:
		return nil, fmt.Errorf("command %s has no wire form", c.Action)
	}
	symbols := c.Instruments
	if symbols == nil {
		symbols = []models.Instrument{}
	}
	return json.Marshal(subscriptionFrame{
		Action:  c.Action.String(),
		Mode:    c.Mode.String(),
		Symbols: symbols,
	})
}

func renderAuth(apiKey string) ([]byte, error) {
	return json.Marshal(authFrame{Action: "authenticate", APIKey: apiKey})
}
