package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"numrenohacks/utils"
)

func tokenFromRequest(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization format")
		}
		return tokenParts[1], nil
	}

	// Fall back to cookie if header not present
	token := c.Cookies("access_token")
	if token == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization required")
	}
	return token, nil
}

// TeamProtected guards dashboard and chat endpoints with a team session
// token issued at login. The session's team identity lands in c.Locals so
// handlers never trust client-supplied team IDs.
func TeamProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := tokenFromRequest(c)
		if err != nil {
			ferr := err.(*fiber.Error)
			return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
		}

		claims, err := utils.ParseToken(token)
		if err != nil || claims.Role != utils.RoleTeam {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}

		c.Locals("teamDocID", claims.TeamDocID)
		c.Locals("teamID", claims.TeamID)
		return c.Next()
	}
}

// AdminProtected guards the admin console endpoints with the token issued
// by the shared-password validate endpoint.
func AdminProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := tokenFromRequest(c)
		if err != nil {
			ferr := err.(*fiber.Error)
			return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
		}

		claims, err := utils.ParseToken(token)
		if err != nil || claims.Role != utils.RoleAdmin {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired admin session",
			})
		}

		return c.Next()
	}
}
