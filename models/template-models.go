package models

import "time"

// TemplateSlotKey names the single durable slot holding the marketing template.
const TemplateSlotKey = "dukkan_template"

// TemplateSlot is one named slot of durable per-owner storage. The value is
// the template image as a data URI; a missing row means no template.
type TemplateSlot struct {
	ID        uint      `json:"-" gorm:"primarykey"`
	Owner     string    `json:"owner" gorm:"not null;uniqueIndex:idx_slot_owner_key"`
	SlotKey   string    `json:"key" gorm:"not null;uniqueIndex:idx_slot_owner_key"`
	DataURI   string    `json:"data_uri" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
