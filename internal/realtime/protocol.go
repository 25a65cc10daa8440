package realtime

import "encoding/json"

// Client → server message types.
const (
	msgSubscribe   = "subscribe"
	msgUnsubscribe = "unsubscribe"
	msgUpdate      = "character_update"
)

// Server → client message types.
const (
	msgSubscribed      = "subscribed"
	msgUnsubscribed    = "unsubscribed"
	msgUpdateConfirmed = "update_confirmed"
	msgUpdated         = "character_updated"
)

// clientMessage is the tagged union covering everything a client may send.
// One JSON object per websocket text frame, both directions.
type clientMessage struct {
	Type        string          `json:"type"`
	CharacterID string          `json:"characterId"`
	Data        json.RawMessage `json:"data,omitempty"`
	Version     int             `json:"version,omitempty"`
	UserID      string          `json:"userId,omitempty"`
}

// ackMessage acknowledges subscribe / unsubscribe / update_confirmed.
type ackMessage struct {
	Type        string `json:"type"`
	CharacterID string `json:"characterId"`
}

// updateMessage is the broadcast pushed to every other subscriber after a
// confirmed update.
type updateMessage struct {
	Type        string          `json:"type"`
	CharacterID string          `json:"characterId"`
	Data        json.RawMessage `json:"data"`
	Version     int             `json:"version"`
	UpdatedBy   string          `json:"updatedBy"`
}

type errorMessage struct {
	Error       string `json:"error"`
	CharacterID string `json:"characterId,omitempty"`
	Details     string `json:"details,omitempty"`
}
