package database

import (
	"context"

	"github.com/malshatti44/DA-Studio/models"
	"gorm.io/gorm"
)

// Productions is the history of produce runs.
type Productions struct {
	db *gorm.DB
}

func NewProductions(db *DB) *Productions {
	return &Productions{db: db.DB}
}

func (p *Productions) Create(ctx context.Context, prod *models.Production) error {
	return p.db.WithContext(ctx).Create(prod).Error
}

// Finish stores the outcome of a run.
func (p *Productions) Finish(ctx context.Context, prod *models.Production) error {
	return p.db.WithContext(ctx).Model(prod).Select(
		"RephrasedTitle", "Caption", "FeedURL", "StoryURL", "Status", "ErrorMessage",
	).Updates(prod).Error
}

// List returns the owner's most recent runs, newest first.
func (p *Productions) List(ctx context.Context, owner string, limit int) ([]models.Production, error) {
	var prods []models.Production
	err := p.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&prods).Error
	return prods, err
}

// ListSuccessful is List restricted to runs that produced both images.
func (p *Productions) ListSuccessful(ctx context.Context, owner string, limit int) ([]models.Production, error) {
	var prods []models.Production
	err := p.db.WithContext(ctx).
		Where("owner = ? AND status = ?", owner, models.StatusSuccess).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&prods).Error
	return prods, err
}
