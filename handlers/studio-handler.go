package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/malshatti44/DA-Studio/i18n"
	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/middleware"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/malshatti44/DA-Studio/page"
	"github.com/malshatti44/DA-Studio/studio"
	"golang.org/x/text/language"
)

type stateResponse struct {
	Details       models.ProductDetails `json:"details"`
	ProductImage  string                `json:"product_image,omitempty"`
	TemplateImage string                `json:"template_image,omitempty"`
	Loading       bool                  `json:"loading"`
	Error         string                `json:"error,omitempty"`
	Caption       string                `json:"caption,omitempty"`
	FeedImage     string                `json:"feed_image,omitempty"`
	StoryImage    string                `json:"story_image,omitempty"`
	FeedURL       string                `json:"feed_url,omitempty"`
	StoryURL      string                `json:"story_url,omitempty"`
	RunID         uint64                `json:"run_id"`
	CanProduce    bool                  `json:"can_produce"`
}

func newStateResponse(tag language.Tag, v studio.View) stateResponse {
	return stateResponse{
		Details:       v.Details,
		ProductImage:  v.ProductImage,
		TemplateImage: v.TemplateImage,
		Loading:       v.Loading,
		Error:         errorMessage(tag, v.Err),
		Caption:       v.Caption,
		FeedImage:     v.FeedImage,
		StoryImage:    v.StoryImage,
		FeedURL:       v.FeedURL,
		StoryURL:      v.StoryURL,
		RunID:         v.RunID,
		CanProduce:    v.CanProduce(),
	}
}

type detailsResponse struct {
	models.ProductDetails
	CanProduce bool `json:"can_produce"`
}

// Index renders the studio page.
func (h *Handler) Index(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	tag := middleware.Lang(c)
	view := s.View()

	params := page.StudioParams{View: view, Error: errorMessage(tag, view.Err)}
	if h.history != nil {
		params.History, err = h.history.List(c.UserContext(), s.Owner(), h.perPage)
		if err != nil {
			log.FromContextOrDiscard(c.UserContext()).Warn("could not list productions", "error", err)
		}
	}

	out, err := h.pages.Studio(c.UserContext(), tag, params)
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(out)
}

func (h *Handler) State(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Studio state", newStateResponse(middleware.Lang(c), s.View()))
}

func (h *Handler) UpdateDetails(c *fiber.Ctx) error {
	var details models.ProductDetails
	if err := c.BodyParser(&details); err != nil {
		return fail(c, fiber.StatusBadRequest, i18n.T(middleware.Lang(c), i18n.MsgInvalidRequest), nil)
	}

	s, err := h.session(c)
	if err != nil {
		return err
	}
	details = s.UpdateDetails(details)
	return success(c, fiber.StatusOK, "Details updated", detailsResponse{
		ProductDetails: details,
		CanProduce:     s.View().CanProduce(),
	})
}

// readImage decodes the "image" form file into a normalized image.
func (h *Handler) readImage(c *fiber.Ctx) (imaging.Image, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return imaging.Image{}, err
	}

	blobFile, err := file.Open()
	if err != nil {
		return imaging.Image{}, err
	}
	defer blobFile.Close()

	return h.normalizer.Normalize(blobFile)
}

func (h *Handler) uploadFailed(c *fiber.Ctx, err error) error {
	tag := middleware.Lang(c)
	log.FromContextOrDiscard(c.UserContext()).Warn("upload rejected", "error", err)
	if errors.Is(err, imaging.ErrUnsupportedImage) {
		return fail(c, fiber.StatusUnprocessableEntity, errorMessage(tag, err), nil)
	}
	return fail(c, fiber.StatusBadRequest, i18n.T(tag, i18n.MsgInvalidRequest), nil)
}

func (h *Handler) UploadProduct(c *fiber.Ctx) error {
	img, err := h.readImage(c)
	if err != nil {
		return h.uploadFailed(c, err)
	}

	s, err := h.session(c)
	if err != nil {
		return err
	}
	s.SetProductImage(img)
	return success(c, fiber.StatusOK, "Product image uploaded", newStateResponse(middleware.Lang(c), s.View()))
}

func (h *Handler) UploadTemplate(c *fiber.Ctx) error {
	img, err := h.readImage(c)
	if err != nil {
		return h.uploadFailed(c, err)
	}

	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := s.SetTemplateImage(c.UserContext(), img); err != nil {
		log.FromContextOrDiscard(c.UserContext()).Error("could not store template", "error", err)
		return fail(c, fiber.StatusInternalServerError, i18n.T(middleware.Lang(c), i18n.MsgGenericFailure), nil)
	}
	return success(c, fiber.StatusOK, "Template stored", newStateResponse(middleware.Lang(c), s.View()))
}

func (h *Handler) ClearTemplate(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := s.ClearTemplate(c.UserContext()); err != nil {
		log.FromContextOrDiscard(c.UserContext()).Error("could not clear template", "error", err)
		return fail(c, fiber.StatusInternalServerError, i18n.T(middleware.Lang(c), i18n.MsgGenericFailure), nil)
	}
	return success(c, fiber.StatusOK, "Template cleared", newStateResponse(middleware.Lang(c), s.View()))
}

// Produce starts a run. The result is picked up by polling State.
func (h *Handler) Produce(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	tag := middleware.Lang(c)

	runID, err := s.Produce(c.UserContext(), middleware.Capability(c).Generator)
	if err != nil {
		if isValidation(err) {
			return fail(c, fiber.StatusUnprocessableEntity, errorMessage(tag, err), newStateResponse(tag, s.View()))
		}
		return err
	}
	return success(c, fiber.StatusAccepted, "Production started", fiber.Map{"run_id": runID})
}

func (h *Handler) DismissError(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	s.DismissError()
	return success(c, fiber.StatusOK, "Error dismissed", newStateResponse(middleware.Lang(c), s.View()))
}
