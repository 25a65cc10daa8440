package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Error strings sent on the wire. Clients match on these.
const (
	errInvalidFormat  = "Invalid message format"
	errNotFound       = "Character not found"
	errForbiddenRead  = "Forbidden: No access to character"
	errForbiddenWrite = "Forbidden: Can only update own characters"
	errUnknownType    = "Unknown message type"
	errInternal       = "Internal server error"
)

// CharacterStore is the slice of the persistent store the dispatcher needs.
// Not-found is signalled with gorm.ErrRecordNotFound.
type CharacterStore interface {
	FindCharacter(ctx context.Context, id string) (*models.Character, error)
	FindShare(ctx context.Context, characterID string, userID uuid.UUID) (*models.CharacterShare, error)
	UpdateCharacter(ctx context.Context, id string, data datatypes.JSON, version int) error
}

// Dispatcher routes decoded client messages to their handlers. All registry
// mutations for a connection happen on that connection's read loop, so the
// client-observed order always matches the registry state.
type Dispatcher struct {
	reg   *Registry
	store CharacterStore
}

func NewDispatcher(reg *Registry, store CharacterStore) *Dispatcher {
	return &Dispatcher{reg: reg, store: store}
}

// Handle processes one inbound frame. A malformed or rejected message is
// answered with an error reply and never terminates the connection.
func (d *Dispatcher) Handle(ctx context.Context, c *Conn, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		_ = c.Send(errorMessage{Error: errInvalidFormat, Details: err.Error()})
		return
	}

	switch msg.Type {
	case msgSubscribe:
		messagesReceived.WithLabelValues(msgSubscribe).Inc()
		d.handleSubscribe(ctx, c, msg.CharacterID)
	case msgUnsubscribe:
		messagesReceived.WithLabelValues(msgUnsubscribe).Inc()
		d.handleUnsubscribe(c, msg.CharacterID)
	case msgUpdate:
		messagesReceived.WithLabelValues(msgUpdate).Inc()
		d.handleUpdate(ctx, c, msg)
	default:
		messagesReceived.WithLabelValues("unknown").Inc()
		_ = c.Send(errorMessage{Error: errUnknownType})
	}
}

func (d *Dispatcher) handleSubscribe(ctx context.Context, c *Conn, characterID string) {
	character, err := d.store.FindCharacter(ctx, characterID)
	if err != nil {
		d.sendStoreError(c, characterID, err)
		return
	}

	if character.OwnerID != c.user {
		if _, err := d.store.FindShare(ctx, characterID, c.user); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				_ = c.Send(errorMessage{Error: errForbiddenRead, CharacterID: characterID})
			} else {
				d.sendStoreError(c, characterID, err)
			}
			return
		}
	}

	d.reg.Subscribe(characterID, c)
	_ = c.Send(ackMessage{Type: msgSubscribed, CharacterID: characterID})
}

// Unsubscribing needs no authorization: removing yourself from a subscription
// you may or may not hold is always permitted.
func (d *Dispatcher) handleUnsubscribe(c *Conn, characterID string) {
	d.reg.Unsubscribe(characterID, c)
	_ = c.Send(ackMessage{Type: msgUnsubscribed, CharacterID: characterID})
}

func (d *Dispatcher) handleUpdate(ctx context.Context, c *Conn, msg clientMessage) {
	character, err := d.store.FindCharacter(ctx, msg.CharacterID)
	if err != nil {
		d.sendStoreError(c, msg.CharacterID, err)
		return
	}

	if character.OwnerID != c.user {
		_ = c.Send(errorMessage{Error: errForbiddenWrite, CharacterID: msg.CharacterID})
		return
	}

	// The version is persisted and echoed as sent; there is no stale-write
	// check (last write wins).
	if err := d.store.UpdateCharacter(ctx, msg.CharacterID, datatypes.JSON(msg.Data), msg.Version); err != nil {
		d.sendStoreError(c, msg.CharacterID, err)
		return
	}

	_ = c.Send(ackMessage{Type: msgUpdateConfirmed, CharacterID: msg.CharacterID})
	d.broadcast(msg.CharacterID, msg.Data, msg.Version, c)
}

// broadcast fans the update out to every subscriber except the originator.
// Sends are fire-and-forget; a dead or slow target is skipped silently.
func (d *Dispatcher) broadcast(characterID string, data json.RawMessage, version int, origin *Conn) {
	out := updateMessage{
		Type:        msgUpdated,
		CharacterID: characterID,
		Data:        data,
		Version:     version,
		UpdatedBy:   origin.user.String(),
	}
	targets := d.reg.Targets(characterID, origin)
	for _, t := range targets {
		_ = t.Send(out)
	}
	broadcastsDelivered.Add(float64(len(targets)))
}

func (d *Dispatcher) sendStoreError(c *Conn, characterID string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = c.Send(errorMessage{Error: errNotFound, CharacterID: characterID})
		return
	}
	log.Error().Err(err).Str("character_id", characterID).Msg("character store error")
	_ = c.Send(errorMessage{Error: errInternal, CharacterID: characterID})
}
