package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/malshatti44/DA-Studio/auth"
	"github.com/malshatti44/DA-Studio/i18n"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/middleware"
	"github.com/malshatti44/DA-Studio/page"
)

// GatePage is served in place of the studio until a key is selected.
func (h *Handler) GatePage(c *fiber.Ctx) error {
	return h.renderGate(c, fiber.StatusOK, "")
}

// GateRequired answers API calls made before a key is selected.
func (h *Handler) GateRequired(c *fiber.Ctx) error {
	return fail(c, fiber.StatusPreconditionRequired, i18n.T(middleware.Lang(c), i18n.MsgGateRequired), fiber.Map{
		"ready": false,
	})
}

// GateStatus reports whether the studio is usable.
func (h *Handler) GateStatus(c *fiber.Ctx) error {
	capability, ok := h.gate.Capability()
	data := fiber.Map{"ready": ok}
	if ok {
		data["source"] = capability.Source
		data["selected_at"] = capability.SelectedAt
	}
	return success(c, fiber.StatusOK, "Gate status", data)
}

// SelectKey dials the submitted key and opens the gate with it. Once the gate
// is open the key cannot be replaced from here.
func (h *Handler) SelectKey(c *fiber.Ctx) error {
	if _, ok := h.gate.Capability(); ok {
		return h.gateAlreadyOpen(c)
	}

	type SelectKeyRequest struct {
		APIKey string `json:"apiKey" form:"apiKey"`
	}

	tag := middleware.Lang(c)
	var req SelectKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return h.renderGate(c, fiber.StatusBadRequest, i18n.T(tag, i18n.MsgInvalidRequest))
	}

	if _, err := h.gate.Select(c.UserContext(), req.APIKey, "form"); err != nil {
		if errors.Is(err, auth.ErrGateOpen) {
			return h.gateAlreadyOpen(c)
		}
		log.FromContextOrDiscard(c.UserContext()).Warn("submitted key rejected", "error", err)
		return h.renderGate(c, fiber.StatusUnauthorized, i18n.T(tag, i18n.MsgInvalidCredential))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) gateAlreadyOpen(c *fiber.Ctx) error {
	log.FromContextOrDiscard(c.UserContext()).Warn("key submitted while the gate is open")
	return fail(c, fiber.StatusConflict, i18n.T(middleware.Lang(c), i18n.MsgGateOpen), fiber.Map{
		"ready": true,
	})
}

func (h *Handler) renderGate(c *fiber.Ctx, status int, message string) error {
	out, err := h.pages.Gate(c.UserContext(), middleware.Lang(c), page.GateParams{Error: message})
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(out)
}
