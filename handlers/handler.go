package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/malshatti44/DA-Studio/auth"
	"github.com/malshatti44/DA-Studio/feed"
	"github.com/malshatti44/DA-Studio/i18n"
	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/middleware"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/malshatti44/DA-Studio/page"
	"github.com/malshatti44/DA-Studio/studio"
)

// History lists an owner's produce runs, newest first.
type History interface {
	List(ctx context.Context, owner string, limit int) ([]models.Production, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Registry   *studio.Registry
	Gate       *auth.Gate
	Normalizer *imaging.Normalizer
	History    History
	Feed       *feed.Generator
	Pages      *page.Templator
	DB         Pinger
	PerPage    int
}

type Handler struct {
	registry   *studio.Registry
	gate       *auth.Gate
	normalizer *imaging.Normalizer
	history    History
	feed       *feed.Generator
	pages      *page.Templator
	db         Pinger
	perPage    int
}

func NewHandler(opts Options) *Handler {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = imaging.NewNormalizer(0, 0)
	}
	pages := opts.Pages
	if pages == nil {
		pages = page.NewTemplator()
	}
	return &Handler{
		registry:   opts.Registry,
		gate:       opts.Gate,
		normalizer: normalizer,
		history:    opts.History,
		feed:       opts.Feed,
		pages:      pages,
		db:         opts.DB,
		perPage:    perPage,
	}
}

func (h *Handler) session(c *fiber.Ctx) (*studio.Session, error) {
	return h.registry.Session(c.UserContext(), middleware.Owner(c))
}

func success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    data,
	})
}

// ErrorHandler answers any error a handler returned in the JSON envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return fail(c, e.Code, e.Message, nil)
	}
	log.FromContextOrDiscard(c.UserContext()).Error("request failed", "error", err)
	return fail(c, fiber.StatusInternalServerError, i18n.T(middleware.Lang(c), i18n.MsgGenericFailure), nil)
}
