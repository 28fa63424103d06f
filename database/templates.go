package database

import (
	"context"
	"errors"

	"github.com/malshatti44/DA-Studio/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Templates is the durable per-owner slot store.
type Templates struct {
	db *gorm.DB
}

func NewTemplates(db *DB) *Templates {
	return &Templates{db: db.DB}
}

// Load returns the data URI stored in the owner's slot, or "" with ok=false
// when the slot is empty.
func (t *Templates) Load(ctx context.Context, owner, key string) (string, bool, error) {
	var slot models.TemplateSlot
	err := t.db.WithContext(ctx).
		Where(&models.TemplateSlot{Owner: owner, SlotKey: key}).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return slot.DataURI, true, nil
}

// Save writes dataURI into the owner's slot, replacing any previous value.
func (t *Templates) Save(ctx context.Context, owner, key, dataURI string) error {
	slot := models.TemplateSlot{Owner: owner, SlotKey: key, DataURI: dataURI}
	return t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data_uri", "updated_at"}),
	}).Create(&slot).Error
}

// Remove empties the owner's slot. Removing an empty slot is not an error.
func (t *Templates) Remove(ctx context.Context, owner, key string) error {
	return t.db.WithContext(ctx).
		Where("owner = ? AND slot_key = ?", owner, key).
		Delete(&models.TemplateSlot{}).Error
}
