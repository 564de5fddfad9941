package middleware

import (
	"net/http"
	"strings"

	"analysis-service/internal/model"
	"analysis-service/pkg/jwtutil"
	"analysis-service/pkg/logger"
	"analysis-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the session JWT.
const SessionCookieName = "session_token"

// extractToken pulls the session JWT from the cookie or, for API
// clients, from a Bearer Authorization header.
func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

// AuthMiddleware validates the session token and stores the claims in
// the context. API routes answer 401 JSON on failure.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tokenString := extractToken(c)
		if tokenString == "" {
			log.Warn("Missing session token")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid session token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		return next(c)
	}
}

// AdminMiddleware gates analyst-only routes the way the browser flow
// expects: anonymous visitors are sent to the login page, signed-in
// non-analysts are sent home.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tokenString := extractToken(c)
		if tokenString == "" {
			prometheus.RecordAuthError("missing_token")
			return c.Redirect(http.StatusFound, "/auth")
		}

		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			prometheus.RecordAuthError("invalid_token")
			return c.Redirect(http.StatusFound, "/auth")
		}

		if claims.Role != model.RoleAdmin {
			log.Warn("Non-analyst tried to access an analyst route",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", claims.Role))
			prometheus.RecordAuthError("role_mismatch")
			return c.Redirect(http.StatusFound, "/")
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		return next(c)
	}
}
