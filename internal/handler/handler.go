package handler

import (
	"analysis-service/internal/payment"
	"analysis-service/pkg/config"

	"github.com/labstack/echo/v4"
)

var (
	cfg             *config.Config
	paymentProvider payment.Provider
)

// Init wires the handler package with its configuration and the hosted
// checkout provider. Called once at startup, and by tests.
func Init(c *config.Config, provider payment.Provider) {
	cfg = c
	paymentProvider = provider
}

// currentUserID returns the authenticated user's ID from the context.
func currentUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}

// currentRole returns the authenticated user's role from the context.
func currentRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
