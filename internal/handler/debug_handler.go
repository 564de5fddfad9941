package handler

import (
	"net/http"
	"time"

	"analysis-service/pkg/jwtutil"
	"analysis-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Ping answers unauthenticated connectivity checks.
func Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "pong",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// SessionInfo echoes the authenticated session claims.
func SessionInfo(c echo.Context) error {
	userID, _ := currentUserID(c)
	email, _ := c.Get("email").(string)

	return c.JSON(http.StatusOK, echo.Map{
		"user_id": userID,
		"email":   email,
		"role":    currentRole(c),
	})
}

// Cookies lists the names of the cookies the request carried. Values
// stay out of the response on purpose.
func Cookies(c echo.Context) error {
	names := []string{}
	for _, cookie := range c.Cookies() {
		names = append(names, cookie.Name)
	}
	return c.JSON(http.StatusOK, echo.Map{"cookies": names})
}

// AuthTest confirms the auth middleware accepted the request.
func AuthTest(c echo.Context) error {
	userID, _ := currentUserID(c)
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user_id":       userID,
	})
}

// RefreshSession issues a fresh token and cookie for the current session.
func RefreshSession(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	email, _ := c.Get("email").(string)

	token, err := jwtutil.GenerateToken(email, userID, currentRole(c))
	if err != nil {
		log.Error("Failed to refresh session token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	setSessionCookie(c, token)
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
