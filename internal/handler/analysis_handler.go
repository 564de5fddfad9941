package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"analysis-service/internal/model"
	"analysis-service/internal/scoring"
	"analysis-service/pkg/database"
	"analysis-service/pkg/logger"
	"analysis-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// findRequest loads an analysis request by its external UUID.
func findRequest(c echo.Context) (*model.AnalysisRequest, error) {
	var req model.AnalysisRequest
	result := database.GetDB().Where("request_id = ?", c.Param("id")).First(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	return &req, nil
}

// canAccessRequest reports whether the caller owns the request or is the analyst.
func canAccessRequest(c echo.Context, req *model.AnalysisRequest) bool {
	userID, ok := currentUserID(c)
	if !ok {
		return false
	}
	return req.UserID == userID || currentRole(c) == model.RoleAdmin
}

// savePhoto stores one uploaded photo under the request's upload directory.
func savePhoto(dir, photoType string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	path := filepath.Join(dir, photoType+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

// CreateAnalysisRequest handles the multi-step intake form: questionnaire
// answers plus the four posture photos. The new request always starts
// awaiting payment with no result.
func CreateAnalysisRequest(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRequestOperation("create")

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	req := model.NewAnalysisRequest(userID)
	req.MainComplaint = c.FormValue("main_complaint")
	req.ComplaintDuration = c.FormValue("complaint_duration")
	req.EmotionalState = c.FormValue("emotional_state")
	req.PhysicalPain = c.FormValue("physical_pain")
	req.Expectations = c.FormValue("expectations")

	if req.MainComplaint == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "main_complaint is required"})
	}

	// All four photos must be present before anything is stored.
	files := make(map[string]*multipart.FileHeader, len(model.PhotoTypes))
	for _, photoType := range model.PhotoTypes {
		file, err := c.FormFile("photo_" + photoType)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": fmt.Sprintf("photo_%s is required", photoType),
			})
		}
		if file.Size > cfg.Upload.MaxPhotoSize {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": fmt.Sprintf("photo_%s exceeds the size limit", photoType),
			})
		}
		files[photoType] = file
	}

	dir := filepath.Join(cfg.Upload.Dir, req.RequestID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("Failed to create upload directory", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store photos"})
	}

	photoDest := map[string]*string{
		model.PhotoFront: &req.PhotoFront,
		model.PhotoBack:  &req.PhotoBack,
		model.PhotoLeft:  &req.PhotoLeft,
		model.PhotoRight: &req.PhotoRight,
	}

	uploads := make([]model.PhotoUpload, 0, len(model.PhotoTypes))
	for _, photoType := range model.PhotoTypes {
		file := files[photoType]
		path, err := savePhoto(dir, photoType, file)
		if err != nil {
			log.Error("Failed to store photo",
				zap.String("photo_type", photoType),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store photos"})
		}
		*photoDest[photoType] = path
		uploads = append(uploads, model.PhotoUpload{
			PhotoType:   photoType,
			Path:        path,
			Size:        file.Size,
			ContentType: file.Header.Get("Content-Type"),
		})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		for i := range uploads {
			uploads[i].AnalysisRequestID = req.ID
			if err := tx.Create(&uploads[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create analysis request"})
	}

	log.Info("Analysis request created",
		zap.String("request_id", req.RequestID),
		zap.Uint("user_id", userID))

	return c.JSON(http.StatusCreated, echo.Map{"analysis_request": req})
}

// ListAnalysisRequests returns the caller's requests, newest first.
func ListAnalysisRequests(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var requests []model.AnalysisRequest
	result := database.GetDB().
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests)
	if result.Error != nil {
		log.Error("Failed to list analysis requests", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list analysis requests"})
	}

	return c.JSON(http.StatusOK, echo.Map{"analysis_requests": requests})
}

// GetAnalysisRequest returns one request by its external UUID.
func GetAnalysisRequest(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	req, err := findRequest(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis request not found"})
		}
		log.Error("Failed to load analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load analysis request"})
	}

	if !canAccessRequest(c, req) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	return c.JSON(http.StatusOK, echo.Map{"analysis_request": req})
}

// GetAnalysisResult returns the generated report. The composites are
// recomputed from the stored scoring percentages on every render.
func GetAnalysisResult(c echo.Context) error {
	log := logger.FromContext(c)

	req, err := findRequest(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis request not found"})
		}
		log.Error("Failed to load analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load analysis request"})
	}

	if !canAccessRequest(c, req) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	if !req.HasResult {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "result not available yet"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var result model.AnalysisResult
	if err := database.GetDB().Where("analysis_request_id = ?", req.ID).First(&result).Error; err != nil {
		log.Error("Result row missing for completed request",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "result not available yet"})
	}

	var table model.BodyScoringTable
	if err := database.GetDB().Where("analysis_request_id = ?", req.ID).First(&table).Error; err == nil {
		percentages := table.Percentages()
		result.Ambition = scoring.Ambition(percentages)
		result.Dependency = scoring.Dependency(percentages)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"analysis_request": req,
		"result":           result,
	})
}
