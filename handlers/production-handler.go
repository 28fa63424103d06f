package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/malshatti44/DA-Studio/i18n"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/middleware"
)

func (h *Handler) Productions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.perPage)
	if limit <= 0 || limit > 100 {
		limit = h.perPage
	}

	prods, err := h.history.List(c.UserContext(), middleware.Owner(c), limit)
	if err != nil {
		log.FromContextOrDiscard(c.UserContext()).Error("could not list productions", "error", err)
		return fail(c, fiber.StatusInternalServerError, i18n.T(middleware.Lang(c), i18n.MsgGenericFailure), nil)
	}
	return success(c, fiber.StatusOK, "Productions", prods)
}

// Feed serves the session's archived posts as RSS.
func (h *Handler) Feed(c *fiber.Ctx) error {
	tag := middleware.Lang(c)
	rss, err := h.feed.Generate(c.UserContext(), middleware.Owner(c), i18n.T(tag, i18n.MsgFeedTitle))
	if err != nil {
		log.FromContextOrDiscard(c.UserContext()).Error("could not generate feed", "error", err)
		return fail(c, fiber.StatusInternalServerError, i18n.T(tag, i18n.MsgGenericFailure), nil)
	}
	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.Send(rss)
}

func (h *Handler) Healthz(c *fiber.Ctx) error {
	_, ready := h.gate.Capability()
	if h.db != nil {
		if err := h.db.Ping(c.UserContext()); err != nil {
			return fail(c, fiber.StatusServiceUnavailable, "Database unavailable", fiber.Map{"gate": ready})
		}
	}
	return success(c, fiber.StatusOK, "OK", fiber.Map{"gate": ready})
}
