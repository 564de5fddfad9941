package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"analysis-service/internal/handler"
	"analysis-service/internal/middleware"
	"analysis-service/internal/model"
	"analysis-service/internal/payment"
	"analysis-service/pkg/config"
	"analysis-service/pkg/database"
	"analysis-service/pkg/jwtutil"
	"analysis-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeProvider stands in for the hosted checkout. Webhook payloads are
// plain JSON events, no signature.
type fakeProvider struct {
	lastCheckout payment.CheckoutRequest
}

func (f *fakeProvider) CreateCheckout(req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	f.lastCheckout = req
	return &payment.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.test/cs_test_123"}, nil
}

func (f *fakeProvider) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	var event payment.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func newRouter() *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestIDMiddleware)

	e.GET("/health", handler.HealthCheck)
	e.POST("/webhooks/payment", handler.PaymentWebhook)

	e.POST("/api/register", handler.Register)
	e.POST("/api/login", handler.Login)
	e.POST("/api/logout", handler.Logout)
	e.GET("/api/me", handler.Me, middleware.AuthMiddleware)

	debug := e.Group("/api/debug")
	debug.GET("/ping", handler.Ping)
	debug.GET("/cookies", handler.Cookies)
	debug.GET("/session", handler.SessionInfo, middleware.AuthMiddleware)
	debug.GET("/auth-test", handler.AuthTest, middleware.AuthMiddleware)
	debug.POST("/refresh-session", handler.RefreshSession, middleware.AuthMiddleware)

	users := e.Group("/api/users", middleware.AuthMiddleware)
	users.GET("/profile", handler.GetProfile)
	users.PATCH("/profile", handler.UpdateProfile)
	users.POST("/change-password", handler.ChangePassword)

	requests := e.Group("/api/analysis-requests", middleware.AuthMiddleware)
	requests.POST("", handler.CreateAnalysisRequest)
	requests.GET("", handler.ListAnalysisRequests)
	requests.GET("/:id", handler.GetAnalysisRequest)
	requests.GET("/:id/result", handler.GetAnalysisResult)
	requests.POST("/:id/checkout", handler.CreateCheckout)

	admin := e.Group("/api/admin", middleware.AdminMiddleware)
	admin.GET("/analysis-requests", handler.AdminListAnalysisRequests)
	admin.POST("/analysis-requests/:id/claim", handler.ClaimAnalysisRequest)
	admin.PUT("/analysis-requests/:id/scoring", handler.SubmitScoring)
	admin.POST("/analysis-requests/:id/cancel", handler.CancelAnalysisRequest)

	return e
}

func setupTest(t *testing.T) (*echo.Echo, *fakeProvider) {
	t.Helper()

	require.NoError(t, logger.InitLogger(&logger.LogConfig{
		Level:       "error",
		Environment: "production",
		ServiceName: "analysis-service-test",
	}))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.AnalysisRequest{},
		&model.PhotoUpload{},
		&model.BodyScoringTable{},
		&model.AnalysisResult{},
		&model.EmotionalPattern{},
	))
	require.NoError(t, model.SeedEmotionalPatterns(db))
	database.SetDB(db)

	cfg := &config.Config{
		JWT:    config.JWTConfig{SigningKey: "handler-test-key", ExpirationHours: 1},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxPhotoSize: 5 << 20},
	}
	jwtutil.Initialize(&cfg.JWT)

	provider := &fakeProvider{}
	handler.Init(cfg, provider)

	return newRouter(), provider
}

func createUser(t *testing.T, email, role string) (model.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := model.User{Email: email, Password: string(hash), Role: role, Status: "active"}
	require.NoError(t, database.GetDB().Create(&user).Error)

	token, err := jwtutil.GenerateToken(email, user.ID, role)
	require.NoError(t, err)
	return user, token
}

func doRequest(e *echo.Echo, method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doJSON(e *echo.Echo, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	return doRequest(e, method, path, token, echo.MIMEApplicationJSON, bytes.NewReader(body))
}

// intakeForm builds a complete multipart intake submission.
func intakeForm(t *testing.T, omitPhoto string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	require.NoError(t, w.WriteField("main_complaint", "dores nas costas"))
	require.NoError(t, w.WriteField("complaint_duration", "6 meses"))
	require.NoError(t, w.WriteField("emotional_state", "ansioso"))
	require.NoError(t, w.WriteField("physical_pain", "costas e ombros"))
	require.NoError(t, w.WriteField("expectations", "entender o padrao"))

	for _, photoType := range model.PhotoTypes {
		if photoType == omitPhoto {
			continue
		}
		fw, err := w.CreateFormFile("photo_"+photoType, photoType+".jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// submitIntake creates a request through the API and returns its row.
func submitIntake(t *testing.T, e *echo.Echo, token string) model.AnalysisRequest {
	t.Helper()
	body, contentType := intakeForm(t, "")
	rec := doRequest(e, http.MethodPost, "/api/analysis-requests", token, contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		AnalysisRequest model.AnalysisRequest `json:"analysis_request"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AnalysisRequest
}

// payRequest drives the webhook that marks a request as paid.
func payRequest(t *testing.T, e *echo.Echo, requestID string) {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/webhooks/payment", "", map[string]interface{}{
		"Completed": true,
		"RequestID": requestID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRegisterLoginAndMe(t *testing.T) {
	e, _ := setupTest(t)

	rec := doJSON(e, http.MethodPost, "/api/register", "", map[string]string{
		"email":    "maria@example.com",
		"password": "secret123",
		"name":     "Maria",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Duplicate registration conflicts.
	rec = doJSON(e, http.MethodPost, "/api/register", "", map[string]string{
		"email":    "maria@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password is rejected.
	rec = doJSON(e, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "maria@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "maria@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Login sets the session cookie and every fresh registration is a
	// plain user, never an analyst.
	cookies := rec.Result().Cookies()
	var token string
	for _, cookie := range cookies {
		if cookie.Name == middleware.SessionCookieName {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, claims.Role)

	rec = doRequest(e, http.MethodGet, "/api/me", token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No session, no /api/me.
	rec = doRequest(e, http.MethodGet, "/api/me", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAnalysisRequestInvariants(t *testing.T) {
	e, _ := setupTest(t)
	user, token := createUser(t, "joao@example.com", model.RoleUser)

	created := submitIntake(t, e, token)

	assert.Equal(t, model.StatusAwaitingPayment, created.Status)
	assert.False(t, created.HasResult)
	assert.Equal(t, user.ID, created.UserID)
	assert.Len(t, created.RequestID, 36)
	assert.NotEmpty(t, created.PhotoFront)
	assert.NotEmpty(t, created.PhotoRight)

	var uploads []model.PhotoUpload
	require.NoError(t, database.GetDB().Where("analysis_request_id = ?", created.ID).Find(&uploads).Error)
	assert.Len(t, uploads, 4)

	// The owner sees it in the list and by UUID.
	rec := doRequest(e, http.MethodGet, "/api/analysis-requests", token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(e, http.MethodGet, "/api/analysis-requests/"+created.RequestID, token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another user cannot read it.
	_, otherToken := createUser(t, "intruso@example.com", model.RoleUser)
	rec = doRequest(e, http.MethodGet, "/api/analysis-requests/"+created.RequestID, otherToken, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// No result yet.
	rec = doRequest(e, http.MethodGet, "/api/analysis-requests/"+created.RequestID+"/result", token, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAnalysisRequestValidation(t *testing.T) {
	e, _ := setupTest(t)
	_, token := createUser(t, "joao@example.com", model.RoleUser)

	// A missing photo fails before anything is stored.
	body, contentType := intakeForm(t, model.PhotoBack)
	rec := doRequest(e, http.MethodPost, "/api/analysis-requests", token, contentType, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	database.GetDB().Model(&model.AnalysisRequest{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAdminRouteRedirects(t *testing.T) {
	e, _ := setupTest(t)

	// Unauthenticated: to the login page.
	rec := doRequest(e, http.MethodGet, "/api/admin/analysis-requests", "", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get(echo.HeaderLocation))

	// Authenticated non-analyst: home.
	_, token := createUser(t, "comum@example.com", model.RoleUser)
	rec = doRequest(e, http.MethodGet, "/api/admin/analysis-requests", token, "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	// The analyst gets through.
	_, adminToken := createUser(t, "analista@example.com", model.RoleAdmin)
	rec = doRequest(e, http.MethodGet, "/api/admin/analysis-requests", adminToken, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutAndWebhook(t *testing.T) {
	e, provider := setupTest(t)
	_, token := createUser(t, "joao@example.com", model.RoleUser)
	created := submitIntake(t, e, token)

	rec := doJSON(e, http.MethodPost, "/api/analysis-requests/"+created.RequestID+"/checkout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, created.RequestID, provider.lastCheckout.RequestID)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.test/cs_test_123", resp["checkout_url"])

	// Only the owner can start checkout.
	_, otherToken := createUser(t, "intruso@example.com", model.RoleUser)
	rec = doJSON(e, http.MethodPost, "/api/analysis-requests/"+created.RequestID+"/checkout", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Non-capture events are acknowledged and ignored.
	rec = doJSON(e, http.MethodPost, "/webhooks/payment", "", map[string]interface{}{
		"Completed": false,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	payRequest(t, e, created.RequestID)

	var stored model.AnalysisRequest
	require.NoError(t, database.GetDB().Where("request_id = ?", created.RequestID).First(&stored).Error)
	assert.Equal(t, model.StatusAwaitingAnalysis, stored.Status)
	require.NotNil(t, stored.PaidAt)

	// A replayed capture is acknowledged without another transition.
	payRequest(t, e, created.RequestID)
	var replayed model.AnalysisRequest
	require.NoError(t, database.GetDB().Where("request_id = ?", created.RequestID).First(&replayed).Error)
	assert.Equal(t, stored.PaidAt.Unix(), replayed.PaidAt.Unix())

	// Checkout is closed once paid.
	rec = doJSON(e, http.MethodPost, "/api/analysis-requests/"+created.RequestID+"/checkout", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScoringWorkflow(t *testing.T) {
	e, _ := setupTest(t)
	_, token := createUser(t, "joao@example.com", model.RoleUser)
	admin, adminToken := createUser(t, "analista@example.com", model.RoleAdmin)

	created := submitIntake(t, e, token)

	// Scoring a request that is not in analysis conflicts.
	scoringPayload := map[string]interface{}{
		"points": map[string]map[string]int{
			"criativo":    {"cabeca": 10},
			"conectivo":   {"cabeca": 20},
			"forte":       {"cabeca": 5},
			"lider":       {"cabeca": 40},
			"competitivo": {"cabeca": 25},
		},
		"summary": "leitura corporal concluida",
	}
	rec := doJSON(e, http.MethodPut, "/api/admin/analysis-requests/"+created.RequestID+"/scoring", adminToken, scoringPayload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Claiming before payment conflicts too.
	rec = doJSON(e, http.MethodPost, "/api/admin/analysis-requests/"+created.RequestID+"/claim", adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	payRequest(t, e, created.RequestID)

	rec = doJSON(e, http.MethodPost, "/api/admin/analysis-requests/"+created.RequestID+"/claim", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var claimed model.AnalysisRequest
	require.NoError(t, database.GetDB().Where("request_id = ?", created.RequestID).First(&claimed).Error)
	assert.Equal(t, model.StatusInAnalysis, claimed.Status)
	require.NotNil(t, claimed.AnalystID)
	assert.Equal(t, admin.ID, *claimed.AnalystID)

	rec = doJSON(e, http.MethodPut, "/api/admin/analysis-requests/"+created.RequestID+"/scoring", adminToken, scoringPayload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored model.AnalysisRequest
	require.NoError(t, database.GetDB().Where("request_id = ?", created.RequestID).First(&stored).Error)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.True(t, stored.HasResult)

	var table model.BodyScoringTable
	require.NoError(t, database.GetDB().Where("analysis_request_id = ?", stored.ID).First(&table).Error)
	assert.Equal(t, 40, table.PercentLider)
	assert.Equal(t, 25, table.PercentCompetitivo)
	assert.Equal(t, "lider", table.PatternPrimary)
	assert.Equal(t, "competitivo", table.PatternSecondary)
	assert.Equal(t, "conectivo", table.PatternTertiary)

	var result model.AnalysisResult
	require.NoError(t, database.GetDB().Where("analysis_request_id = ?", stored.ID).First(&result).Error)
	assert.Equal(t, "lider", result.PrimaryPattern)
	assert.Equal(t, 40, result.PrimaryPercent)
	assert.Equal(t, 32.5, result.Ambition)
	assert.Equal(t, 12.5, result.Dependency)
	assert.Equal(t, "leitura corporal concluida", result.Summary)

	// 40 < 50, competitivo comes in, cumulative 65 passes 50 and
	// conectivo holds 20 >= 15: three narrative blocks.
	require.Len(t, result.Narratives, 3)
	assert.Equal(t, "lider", result.Narratives[0].Pattern)
	assert.Equal(t, "competitivo", result.Narratives[1].Pattern)
	assert.Equal(t, "conectivo", result.Narratives[2].Pattern)
	for _, narrative := range result.Narratives {
		assert.Len(t, narrative.Areas, 3)
		for _, area := range narrative.Areas {
			assert.NotEmpty(t, area.Pain)
			assert.NotEmpty(t, area.Resource)
		}
	}

	// The owner reads the report.
	rec = doRequest(e, http.MethodGet, "/api/analysis-requests/"+created.RequestID+"/result", token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Result model.AnalysisResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 32.5, resp.Result.Ambition)
	assert.Equal(t, "lider", resp.Result.PrimaryPattern)
}

func TestScoringRejectsBadInput(t *testing.T) {
	e, _ := setupTest(t)
	_, token := createUser(t, "joao@example.com", model.RoleUser)
	_, adminToken := createUser(t, "analista@example.com", model.RoleAdmin)

	created := submitIntake(t, e, token)
	payRequest(t, e, created.RequestID)
	rec := doJSON(e, http.MethodPost, "/api/admin/analysis-requests/"+created.RequestID+"/claim", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Unknown pattern name.
	rec = doJSON(e, http.MethodPut, "/api/admin/analysis-requests/"+created.RequestID+"/scoring", adminToken, map[string]interface{}{
		"points": map[string]map[string]int{"teimoso": {"cabeca": 5}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Negative points.
	rec = doJSON(e, http.MethodPut, "/api/admin/analysis-requests/"+created.RequestID+"/scoring", adminToken, map[string]interface{}{
		"points": map[string]map[string]int{"lider": {"cabeca": -1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelAnalysisRequest(t *testing.T) {
	e, _ := setupTest(t)
	_, token := createUser(t, "joao@example.com", model.RoleUser)
	_, adminToken := createUser(t, "analista@example.com", model.RoleAdmin)

	created := submitIntake(t, e, token)

	rec := doJSON(e, http.MethodPost, "/api/admin/analysis-requests/"+created.RequestID+"/cancel", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stored model.AnalysisRequest
	require.NoError(t, database.GetDB().Where("request_id = ?", created.RequestID).First(&stored).Error)
	assert.Equal(t, model.StatusCancelled, stored.Status)

	// Cancelled is terminal.
	rec = doJSON(e, http.MethodPost, "/api/admin/analysis-requests/"+created.RequestID+"/cancel", adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	payRequestExpect(t, e, created.RequestID, http.StatusOK)

	require.NoError(t, database.GetDB().Where("request_id = ?", created.RequestID).First(&stored).Error)
	assert.Equal(t, model.StatusCancelled, stored.Status)
}

// payRequestExpect drives the payment webhook expecting a specific status.
func payRequestExpect(t *testing.T, e *echo.Echo, requestID string, want int) {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/webhooks/payment", "", map[string]interface{}{
		"Completed": true,
		"RequestID": requestID,
	})
	require.Equal(t, want, rec.Code, rec.Body.String())
}

func TestDebugEndpoints(t *testing.T) {
	e, _ := setupTest(t)
	_, token := createUser(t, "joao@example.com", model.RoleUser)

	rec := doRequest(e, http.MethodGet, "/api/debug/ping", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/debug/session", token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var session map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "user", session["role"])

	rec = doRequest(e, http.MethodGet, "/api/debug/auth-test", token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(e, http.MethodGet, "/api/debug/auth-test", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/debug/refresh-session", token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	_, err := jwtutil.ValidateToken(refreshed["token"])
	assert.NoError(t, err)
}
