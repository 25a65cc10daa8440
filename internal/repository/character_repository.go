package repository

import (
	"context"

	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CharacterRepository struct {
	db *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func (r *CharacterRepository) DB() *gorm.DB {
	return r.db
}

// FindCharacter retrieves a character by its wire-format id. Ids that do not
// parse as UUIDs cannot exist in the store, so they report not-found rather
// than a validation error.
func (r *CharacterRepository) FindCharacter(ctx context.Context, id string) (*models.Character, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var character models.Character
	if err := r.db.WithContext(ctx).Where("id = ?", cid).First(&character).Error; err != nil {
		return nil, err
	}
	return &character, nil
}

// FindShare looks up the share grant for (character, user), if any.
func (r *CharacterRepository) FindShare(ctx context.Context, characterID string, userID uuid.UUID) (*models.CharacterShare, error) {
	cid, err := uuid.Parse(characterID)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var share models.CharacterShare
	if err := r.db.WithContext(ctx).
		Where("character_id = ? AND user_id = ?", cid, userID).
		First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// UpdateCharacter overwrites the payload and version of an existing character.
// The version is stored as sent; stale writes are not rejected (last write wins).
func (r *CharacterRepository) UpdateCharacter(ctx context.Context, id string, data datatypes.JSON, version int) error {
	cid, err := uuid.Parse(id)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	res := r.db.WithContext(ctx).
		Model(&models.Character{}).
		Where("id = ?", cid).
		Updates(map[string]interface{}{
			"data":    data,
			"version": version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CharacterRepository) Create(ctx context.Context, character *models.Character) error {
	if character.ID == uuid.Nil {
		character.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(character).Error
}

// Share records a read grant for userID on characterID. Granting twice is a no-op.
func (r *CharacterRepository) Share(ctx context.Context, characterID, userID uuid.UUID) error {
	share := models.CharacterShare{
		ID:          uuid.New(),
		CharacterID: characterID,
		UserID:      userID,
	}
	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "character_id"}, {Name: "user_id"}},
		DoNothing: true,
	}
	return r.db.WithContext(ctx).Clauses(conflict).Create(&share).Error
}
