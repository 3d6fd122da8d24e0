package middleware

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func roleApp(gate fiber.Handler, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	app.Get("/guarded", gate, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRoleGates(t *testing.T) {
	cases := []struct {
		name string
		gate fiber.Handler
		role string
		want int
	}{
		{"admin gate admits admin", AdminOnly, "admin", fiber.StatusOK},
		{"admin gate rejects organizer", AdminOnly, "organizer", fiber.StatusForbidden},
		{"admin gate rejects missing role", AdminOnly, "", fiber.StatusForbidden},
		{"organizer gate admits admin", OrganizerOrAdmin, "admin", fiber.StatusOK},
		{"organizer gate admits organizer", OrganizerOrAdmin, "organizer", fiber.StatusOK},
		{"organizer gate rejects staff", OrganizerOrAdmin, "staff", fiber.StatusForbidden},
		{"staff gate admits staff", StaffOrAbove, "staff", fiber.StatusOK},
		{"staff gate admits organizer", StaffOrAbove, "organizer", fiber.StatusOK},
		{"staff gate rejects unknown role", StaffOrAbove, "visitor", fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := roleApp(tc.gate, tc.role)
			req, err := http.NewRequest(http.MethodGet, "/guarded", nil)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}
