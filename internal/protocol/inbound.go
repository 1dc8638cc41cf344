package protocol

import (
	"encoding/json"
	"fmt"
)

// Command is the closed sum type of client->server commands, kept as a
// variant type rather than stringly-typed dispatch on the hot path.
type Command interface {
	isCommand()
}

// Heartbeat is the bare liveness token, the literal string "heartbeat".
type Heartbeat struct{}

func (Heartbeat) isCommand() {}

// Move carries a raw, not-yet-normalized direction vector.
type Move struct {
	DX, DY float64
}

func (Move) isCommand() {}

// Stop requests the controlled entity come to rest.
type Stop struct{}

func (Stop) isCommand() {}

type moveEnvelope struct {
	Direction [2]float64 `json:"direction"`
}

// envelope matches the `{"Move": {...}}` / `{"Stop": null}` object shapes.
// json.RawMessage lets us distinguish "key present with value null" (a
// non-nil, non-empty RawMessage) from "key entirely absent" (nil).
type envelope struct {
	Move *moveEnvelope   `json:"Move"`
	Stop json.RawMessage `json:"Stop"`
}

// ParseCommand decodes one client text frame into a Command. Unknown or
// malformed frames return an error; the caller is responsible for logging
// at debug and discarding without dropping the connection.
func ParseCommand(frame []byte) (Command, error) {
	// The bare-literal forms ("heartbeat", "Stop") are themselves valid
	// JSON string values, so try that shape first.
	var literal string
	if err := json.Unmarshal(frame, &literal); err == nil {
		switch literal {
		case "heartbeat":
			return Heartbeat{}, nil
		case "Stop":
			return Stop{}, nil
		default:
			return nil, fmt.Errorf("protocol: unrecognized literal frame %q", literal)
		}
	}

	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("protocol: malformed frame: %w", err)
	}

	switch {
	case env.Move != nil:
		return Move{DX: env.Move.Direction[0], DY: env.Move.Direction[1]}, nil
	case env.Stop != nil:
		return Stop{}, nil
	default:
		return nil, fmt.Errorf("protocol: frame matched neither Move nor Stop")
	}
}

// MaxFrameSize is the oversized-frame cutoff: 64 KiB.
const MaxFrameSize = 64 * 1024
