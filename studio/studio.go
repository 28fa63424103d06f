// Package studio holds the per-session state of the post studio: form
// fields, uploaded images and the outcome of the latest produce run.
package studio

import (
	"context"
	"errors"

	"github.com/malshatti44/DA-Studio/gemini"
	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/models"
)

var (
	ErrMissingImages = errors.New("product image and template are required")
	ErrInvalidSKU    = errors.New("product code must be exactly 5 digits")
	ErrEmptyCaption  = errors.New("generated caption is empty")
)

// Generator is the generation capability a run needs.
type Generator interface {
	PrepareMarketingText(ctx context.Context, details models.ProductDetails) (gemini.MarketingText, error)
	GenerateDukkanPost(ctx context.Context, product, template imaging.Image, title, price, sku string, aspect models.AspectRatio) (imaging.Image, error)
}

// TemplateStore is durable per-owner slot storage.
type TemplateStore interface {
	Load(ctx context.Context, owner, key string) (string, bool, error)
	Save(ctx context.Context, owner, key, dataURI string) error
	Remove(ctx context.Context, owner, key string) error
}

// ProductionLog records produce runs.
type ProductionLog interface {
	Create(ctx context.Context, prod *models.Production) error
	Finish(ctx context.Context, prod *models.Production) error
}

// Result is the output of one successful (or partially published) run.
type Result struct {
	Caption        string
	RephrasedTitle string
	Feed           imaging.Image
	Story          imaging.Image
	FeedURL        string
	StoryURL       string
}

// View is a consistent snapshot of a session for rendering.
type View struct {
	Details       models.ProductDetails
	ProductImage  string
	TemplateImage string
	Loading       bool
	Err           error
	Caption       string
	FeedImage     string
	StoryImage    string
	FeedURL       string
	StoryURL      string
	RunID         uint64
}

func (v View) HasResult() bool {
	return v.FeedImage != "" || v.StoryImage != "" || v.Caption != ""
}

// CanProduce mirrors the checks Produce runs, for enabling the button.
func (v View) CanProduce() bool {
	return !v.Loading && v.ProductImage != "" && v.TemplateImage != "" && models.ValidSKU(v.Details.SKU)
}
