package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"analysis-service/internal/model"
	"analysis-service/internal/payment"
	"analysis-service/pkg/database"
	"analysis-service/pkg/logger"
	"analysis-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateCheckout opens a hosted checkout session for an unpaid request
// and returns the URL the client should redirect to.
func CreateCheckout(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	req, err := findRequest(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis request not found"})
		}
		log.Error("Failed to load analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load analysis request"})
	}

	if req.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}
	if req.Status != model.StatusAwaitingPayment {
		return c.JSON(http.StatusConflict, echo.Map{"error": "analysis request is not awaiting payment"})
	}

	email, _ := c.Get("email").(string)
	session, err := paymentProvider.CreateCheckout(payment.CheckoutRequest{
		RequestID:     req.RequestID,
		CustomerEmail: email,
	})
	if err != nil {
		log.Error("Failed to create checkout session",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
		prometheus.RecordPaymentEvent("checkout_failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to create checkout session"})
	}

	prometheus.RecordPaymentEvent("checkout_created")
	log.Info("Checkout session created",
		zap.String("request_id", req.RequestID),
		zap.String("session_id", session.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"checkout_url": session.URL,
		"session_id":   session.ID,
	})
}

// PaymentWebhook receives the checkout collaborator's notifications. A
// completed capture moves the request from awaiting payment to awaiting
// analysis. Replayed notifications for an already-paid request are
// acknowledged without a second transition.
func PaymentWebhook(c echo.Context) error {
	log := logger.FromContext(c)

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read payload"})
	}

	event, err := paymentProvider.ParseWebhook(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		log.Warn("Rejected payment webhook", zap.Error(err))
		prometheus.RecordPaymentEvent("invalid")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid webhook"})
	}

	if !event.Completed {
		prometheus.RecordPaymentEvent("ignored")
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	var req model.AnalysisRequest
	if err := database.GetDB().Where("request_id = ?", event.RequestID).First(&req).Error; err != nil {
		log.Error("Payment webhook for unknown analysis request",
			zap.String("request_id", event.RequestID))
		prometheus.RecordPaymentEvent("unknown_request")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis request not found"})
	}

	if req.Status != model.StatusAwaitingPayment {
		prometheus.RecordPaymentEvent("replayed")
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	if err := req.Transition(model.StatusAwaitingAnalysis); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	now := time.Now()
	req.PaidAt = &now

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(&req).Error; err != nil {
		log.Error("Failed to record payment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}

	prometheus.RecordPaymentEvent("captured")
	log.Info("Payment captured", zap.String("request_id", req.RequestID))

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
