// Package protocol defines the client/server wire messages and the JSON
// encode/decode logic for them.
package protocol

import "arenasrv/internal/world"

// Message type discriminators.
const (
	TypeWelcome = "w"
	TypeFull    = "f"
	TypeDelta   = "d"
	TypeRemoved = "r"
)

// EntityEntry is one entity's worth of component data in an outbound
// message: {"i": network_id, "c": {shortcode: value, ...}}.
type EntityEntry struct {
	I world.NetworkID        `json:"i"`
	C map[string]interface{} `json:"c,omitempty"`
}

// OutboundMessage is the single shape every server->client message shares.
type OutboundMessage struct {
	T string              `json:"t"`
	U []EntityEntry       `json:"u"`
	P *world.NetworkID    `json:"p,omitempty"`
}

// NewWelcome builds the welcome message sent once per session on connect,
// carrying the player's id, network id, and spawn position.
func NewWelcome(playerID, networkID world.NetworkID, spawnX, spawnY float64) OutboundMessage {
	p := playerID
	return OutboundMessage{
		T: TypeWelcome,
		U: []EntityEntry{
			{
				I: networkID,
				C: map[string]interface{}{
					"player_id":      playerID,
					"network_id":     networkID,
					"spawn_position": []float64{spawnX, spawnY},
				},
			},
		},
		P: &p,
	}
}

// NewFullSync builds a full-sync message containing every visible entity's
// complete networked-component state.
func NewFullSync(entries []EntityEntry) OutboundMessage {
	return OutboundMessage{T: TypeFull, U: entries}
}

// NewDelta builds a delta-update message containing only entities with at
// least one significant component change.
func NewDelta(entries []EntityEntry) OutboundMessage {
	return OutboundMessage{T: TypeDelta, U: entries}
}

// NewRemoved builds the entity-removed notice sent to every other session
// on despawn.
func NewRemoved(id world.NetworkID) OutboundMessage {
	return OutboundMessage{T: TypeRemoved, U: []EntityEntry{{I: id}}}
}
