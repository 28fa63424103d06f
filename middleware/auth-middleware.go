package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/malshatti44/DA-Studio/auth"
	"github.com/malshatti44/DA-Studio/log"
)

const (
	ownerKey      = "owner"
	capabilityKey = "capability"
)

// Session identifies the browser. A request carrying a valid token (Bearer
// header or JWT cookie) keeps its owner; any other request is given a new
// owner and cookie.
func Session(sessions *auth.Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var tokenStr string

		if authHeader != "" && len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		} else {
			tokenStr = c.Cookies(auth.CookieName)
		}

		logger := log.FromContextOrDiscard(c.UserContext())
		owner := ""
		if tokenStr != "" {
			var err error
			owner, err = sessions.Owner(tokenStr)
			if err != nil {
				logger.Debug("discarding session token", "error", err)
			}
		}

		if owner == "" {
			owner = auth.NewOwner()
			signed, err := sessions.Issue(owner)
			if err != nil {
				logger.Error("failed to issue session", "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"status":  "error",
					"message": "Failed to start session",
					"data":    nil,
				})
			}
			c.Cookie(&fiber.Cookie{
				Name:     auth.CookieName,
				Value:    signed,
				Path:     "/",
				Expires:  time.Now().Add(sessions.CookieDuration()),
				HTTPOnly: true,
				Secure:   sessions.Secure(),
				SameSite: fiber.CookieSameSiteLaxMode,
			})
			logger.Info("session started", "owner", owner)
		}

		c.Locals(ownerKey, owner)
		c.SetUserContext(log.NewContext(c.UserContext(), logger.With("owner", owner)))
		return c.Next()
	}
}

// Owner is the session owner stored by Session.
func Owner(c *fiber.Ctx) string {
	owner, _ := c.Locals(ownerKey).(string)
	return owner
}

// RequireCapability lets the request through only once the gate holds a
// capability. Otherwise denied handles it.
func RequireCapability(gate *auth.Gate, denied fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		capability, ok := gate.Capability()
		if !ok {
			return denied(c)
		}
		c.Locals(capabilityKey, capability)
		return c.Next()
	}
}

// Capability is the capability stored by RequireCapability.
func Capability(c *fiber.Ctx) *auth.Capability {
	capability, _ := c.Locals(capabilityKey).(*auth.Capability)
	return capability
}
