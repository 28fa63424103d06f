package models

import (
	"gorm.io/gorm"
)

const (
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
)

// Production records one produce run.
type Production struct {
	gorm.Model
	Owner          string `json:"owner" gorm:"not null;index"`
	RunID          uint64 `json:"run_id" gorm:"not null"`
	Title          string `json:"title"`
	RephrasedTitle string `json:"rephrased_title"`
	Price          string `json:"price"`
	SKU            string `json:"sku" gorm:"size:5"`
	Caption        string `json:"caption" gorm:"type:text"`
	FeedURL        string `json:"feed_url,omitempty"`
	StoryURL       string `json:"story_url,omitempty"`
	Status         string `json:"status" gorm:"not null;default:'processing'"`
	ErrorMessage   string `json:"error_message,omitempty"`
}
