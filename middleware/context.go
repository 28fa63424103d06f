package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/malshatti44/DA-Studio/i18n"
	"github.com/malshatti44/DA-Studio/log"
	"golang.org/x/text/language"
)

const langKey = "lang"

// WithLogger puts logger on every request's user context.
func WithLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(log.NewContext(c.UserContext(), logger.With("method", c.Method(), "path", c.Path())))
		return c.Next()
	}
}

// Language resolves the response language and remembers an explicit choice
// in a cookie.
func Language() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tag, persist := i18n.Resolve(c.Query(i18n.LangParam), c.Cookies(i18n.LangCookieName), c.Get(fiber.HeaderAcceptLanguage))
		if persist {
			c.Cookie(&fiber.Cookie{
				Name:     i18n.LangCookieName,
				Value:    tag.String(),
				Path:     "/",
				Expires:  time.Now().Add(365 * 24 * time.Hour),
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(langKey, tag)
		return c.Next()
	}
}

// Lang is the tag chosen by Language, or the default.
func Lang(c *fiber.Ctx) language.Tag {
	if tag, ok := c.Locals(langKey).(language.Tag); ok {
		return tag
	}
	return i18n.Default()
}
