package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Character is a saved character sheet. The sync service treats Data as an
// opaque blob; only the builder frontend knows its shape.
type Character struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;index"`
	Name      string         `gorm:"type:text"`
	Data      datatypes.JSON `gorm:"type:jsonb"`
	Version   int            `gorm:"default:1"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

// CharacterShare grants a non-owner read/subscribe access to a character.
// Write access always stays with the owner.
type CharacterShare struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CharacterID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_character_grantee"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_character_grantee"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
