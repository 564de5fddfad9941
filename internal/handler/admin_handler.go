package handler

import (
	"errors"
	"fmt"
	"net/http"
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

// AdminListAnalysisRequests returns every request, optionally filtered
// by lifecycle status, oldest first so the queue reads top-down.
func AdminListAnalysisRequests(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Order("created_at ASC")
	if status := c.QueryParam("status"); status != "" {
		if !model.Status(status).Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var requests []model.AnalysisRequest
	if result := query.Find(&requests); result.Error != nil {
		log.Error("Failed to list analysis requests", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list analysis requests"})
	}

	return c.JSON(http.StatusOK, echo.Map{"analysis_requests": requests})
}

// ClaimAnalysisRequest moves a paid request into analysis and records
// which analyst took it.
func ClaimAnalysisRequest(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRequestOperation("claim")

	analystID, _ := currentUserID(c)

	req, err := findRequest(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis request not found"})
		}
		log.Error("Failed to load analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load analysis request"})
	}

	if err := req.Transition(model.StatusInAnalysis); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	req.AnalystID = &analystID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(req).Error; err != nil {
		log.Error("Failed to claim analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to claim analysis request"})
	}

	log.Info("Analysis request claimed",
		zap.String("request_id", req.RequestID),
		zap.Uint("analyst_id", analystID))

	return c.JSON(http.StatusOK, echo.Map{"analysis_request": req})
}

// ScoringRequest is the analyst's scoring submission: points per pattern
// per region, plus the optional legacy free-text fields.
type ScoringRequest struct {
	Points          map[string]map[string]int `json:"points"`
	Summary         string                    `json:"summary"`
	Recommendations string                    `json:"recommendations"`
}

// toPoints validates the submission and converts it to a scoring table.
func (r *ScoringRequest) toPoints() (scoring.Points, error) {
	points := scoring.NewPoints()
	for patternName, regions := range r.Points {
		pattern := scoring.Pattern(patternName)
		if _, ok := points[pattern]; !ok {
			return nil, fmt.Errorf("unknown pattern %q", patternName)
		}
		for regionName, value := range regions {
			region := scoring.Region(regionName)
			if _, ok := points[pattern][region]; !ok {
				return nil, fmt.Errorf("unknown region %q", regionName)
			}
			if value < 0 {
				return nil, fmt.Errorf("points for %s/%s must not be negative", patternName, regionName)
			}
			points[pattern][region] = value
		}
	}
	return points, nil
}

// buildNarratives assembles the report blocks for the considered
// patterns from the static lookup table.
func buildNarratives(tx *gorm.DB, res scoring.Result) ([]model.PatternNarrative, error) {
	narratives := make([]model.PatternNarrative, 0, len(res.Considered))
	for _, pattern := range res.Considered {
		var rows []model.EmotionalPattern
		if err := tx.Where("pattern = ?", string(pattern)).Find(&rows).Error; err != nil {
			return nil, err
		}

		byArea := make(map[string]*model.AreaNarrative, len(model.LifeAreas))
		for _, row := range rows {
			area, ok := byArea[row.Area]
			if !ok {
				area = &model.AreaNarrative{Area: row.Area}
				byArea[row.Area] = area
			}
			switch row.Polarity {
			case model.PolarityPain:
				area.Pain = row.Description
			case model.PolarityResource:
				area.Resource = row.Description
			}
		}

		areas := make([]model.AreaNarrative, 0, len(model.LifeAreas))
		for _, name := range model.LifeAreas {
			if area, ok := byArea[name]; ok {
				areas = append(areas, *area)
			}
		}

		narratives = append(narratives, model.PatternNarrative{
			Pattern: string(pattern),
			Label:   pattern.Label(),
			Percent: res.Percentages[pattern],
			Areas:   areas,
		})
	}
	return narratives, nil
}

// SubmitScoring stores the analyst's 25 points, recomputes every derived
// value, generates the report and completes the request.
func SubmitScoring(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRequestOperation("score")

	var submission ScoringRequest
	if err := c.Bind(&submission); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	points, err := submission.toPoints()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	req, err := findRequest(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis request not found"})
		}
		log.Error("Failed to load analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load analysis request"})
	}

	if err := req.Transition(model.StatusCompleted); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}

	var table model.BodyScoringTable
	var result model.AnalysisResult

	defer prometheus.TrackDBOperation("update")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		// One scoring row per request; resubmission overwrites it.
		if err := tx.Where("analysis_request_id = ?", req.ID).First(&table).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			table = model.BodyScoringTable{AnalysisRequestID: req.ID}
		}
		table.SetPoints(points)
		res := table.Recompute()
		if err := tx.Save(&table).Error; err != nil {
			return err
		}

		narratives, err := buildNarratives(tx, res)
		if err != nil {
			return err
		}

		if err := tx.Where("analysis_request_id = ?", req.ID).First(&result).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			result = model.AnalysisResult{AnalysisRequestID: req.ID}
		}
		result.PrimaryPattern = string(res.Primary)
		result.SecondaryPattern = string(res.Secondary)
		result.TertiaryPattern = string(res.Tertiary)
		result.PrimaryPercent = res.Percentages[res.Primary]
		result.SecondaryPercent = res.Percentages[res.Secondary]
		result.TertiaryPercent = res.Percentages[res.Tertiary]
		result.Ambition = scoring.Ambition(res.Percentages)
		result.Dependency = scoring.Dependency(res.Percentages)
		result.Narratives = narratives
		result.Summary = submission.Summary
		result.Recommendations = submission.Recommendations
		if err := tx.Save(&result).Error; err != nil {
			return err
		}

		// has_result only flips after the result row exists.
		req.HasResult = true
		return tx.Save(req).Error
	})
	if err != nil {
		log.Error("Failed to store scoring", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store scoring"})
	}

	log.Info("Scoring submitted",
		zap.String("request_id", req.RequestID),
		zap.String("primary", result.PrimaryPattern),
		zap.String("secondary", result.SecondaryPattern),
		zap.String("tertiary", result.TertiaryPattern))

	return c.JSON(http.StatusOK, echo.Map{
		"analysis_request": req,
		"scoring":          table,
		"result":           result,
	})
}

// CancelAnalysisRequest cancels a request that has not finished yet.
func CancelAnalysisRequest(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRequestOperation("cancel")

	req, err := findRequest(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis request not found"})
		}
		log.Error("Failed to load analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load analysis request"})
	}

	if err := req.Transition(model.StatusCancelled); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(req).Error; err != nil {
		log.Error("Failed to cancel analysis request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel analysis request"})
	}

	log.Info("Analysis request cancelled", zap.String("request_id", req.RequestID))
	return c.JSON(http.StatusOK, echo.Map{"analysis_request": req})
}
