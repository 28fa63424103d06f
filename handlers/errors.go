package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/malshatti44/DA-Studio/gemini"
	"github.com/malshatti44/DA-Studio/i18n"
	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/studio"
	"golang.org/x/text/language"
)

var knownErrors = []struct {
	err error
	key string
}{
	{studio.ErrMissingImages, i18n.MsgMissingImages},
	{studio.ErrInvalidSKU, i18n.MsgInvalidSKU},
	{studio.ErrEmptyCaption, i18n.MsgEmptyCaption},
	{gemini.ErrMalformedResponse, i18n.MsgMalformedResponse},
	{gemini.ErrNoImage, i18n.MsgNoImage},
	{imaging.ErrUnsupportedImage, i18n.MsgUnsupportedImage},
	{context.DeadlineExceeded, i18n.MsgTimeout},
}

// errorMessage is the text shown to the merchant for err. Errors raised by
// the generation service are shown as the service worded them.
func errorMessage(tag language.Tag, err error) string {
	if err == nil {
		return ""
	}
	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			return i18n.T(tag, known.key)
		}
	}

	var upstream *gemini.UpstreamError
	if errors.As(err, &upstream) {
		if msg := strings.TrimSpace(upstream.Message()); msg != "" {
			return msg
		}
	}
	return i18n.T(tag, i18n.MsgGenericFailure)
}

func isValidation(err error) bool {
	return errors.Is(err, studio.ErrMissingImages) || errors.Is(err, studio.ErrInvalidSKU)
}
