package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticshandler "tapcard/internal/analytics/handler"
	analyticsmetrics "tapcard/internal/analytics/metrics"
	analyticsservice "tapcard/internal/analytics/service"
	visitstore "tapcard/internal/analytics/store/visit"
	authhandler "tapcard/internal/auth/handler"
	authmetrics "tapcard/internal/auth/metrics"
	authmodels "tapcard/internal/auth/models"
	authservice "tapcard/internal/auth/service"
	userstore "tapcard/internal/auth/store/user"
	"tapcard/internal/auth/token"
	cardhandler "tapcard/internal/card/handler"
	cardmodels "tapcard/internal/card/models"
	cardservice "tapcard/internal/card/service"
	cardstore "tapcard/internal/card/store/card"
	"tapcard/internal/identity"
	dErrors "tapcard/pkg/domain-errors"
	"tapcard/pkg/platform/audit"
)

// promauto registers against the global registry; construct once per test binary.
var (
	testAuthMetrics      = authmetrics.New()
	testAnalyticsMetrics = analyticsmetrics.New()
)

// stubVerifier accepts any assertion of the form "ok:<subject>".
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, assertion string) (*identity.Claim, error) {
	if subject, ok := strings.CutPrefix(assertion, "ok:"); ok {
		return &identity.Claim{Subject: subject, Email: subject + "@example.com"}, nil
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid identity token")
}

type fixture struct {
	router http.Handler
	users  *userstore.InMemoryStore
	cards  *cardstore.InMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := userstore.NewMemory()
	cards := cardstore.NewMemory()
	visits := visitstore.NewMemory()

	tokens := token.NewService(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "tapcard-test",
	})

	auth := authservice.New(stubVerifier{}, users, tokens, logger, audit.NopPublisher{}, testAuthMetrics)
	cardSvc := cardservice.New(cards, logger)
	analyticsSvc := analyticsservice.New(visits, logger, testAnalyticsMetrics)

	router := NewRouter(Deps{
		Logger:        logger,
		Auth:          authhandler.New(auth, logger),
		Cards:         cardhandler.New(cardSvc, logger),
		Analytics:     analyticshandler.New(analyticsSvc, logger),
		Authenticator: auth,
		Audits:        audit.NopPublisher{},
	})

	return &fixture{router: router, users: users, cards: cards}
}

func (f *fixture) seedUser(t *testing.T, id string, roleName authmodels.Role) {
	t.Helper()
	require.NoError(t, f.users.Save(context.Background(), &authmodels.User{
		ID:    id,
		Email: id + "@example.com",
		Role:  roleName,
	}))
}

func (f *fixture) login(t *testing.T, subject string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/login", `{"idToken":"ok:`+subject+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body authhandler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.AccessToken
}

func (f *fixture) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestOperationalEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "admin-1", authmodels.RoleAdmin)

	t.Run("login then verify", func(t *testing.T) {
		accessToken := f.login(t, "admin-1")

		rec := f.do(t, http.MethodGet, "/api/admin/verify", "", accessToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var body authhandler.VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Valid)
		assert.Equal(t, "admin-1", body.User.ID)
	})

	t.Run("unknown subject cannot log in", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/login", `{"idToken":"ok:stranger"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("responses carry a request ID", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/health", "", "")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestAdminSurfaceAuthorization(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "admin-1", authmodels.RoleAdmin)
	f.seedUser(t, "editor-1", authmodels.RoleEditor)
	f.seedUser(t, "viewer-1", authmodels.RoleViewer)
	require.NoError(t, f.cards.Save(context.Background(), &cardmodels.Card{
		ID:    "card-1",
		Name:  "Jane Doe",
		Email: "jane@example.com",
	}))

	adminToken := f.login(t, "admin-1")
	editorToken := f.login(t, "editor-1")
	viewerToken := f.login(t, "viewer-1")

	updateBody := `{"name":"Jane Doe","email":"jane@example.com"}`

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		want   int
	}{
		{"admin lists cards", http.MethodGet, "/api/admin/cards", "", adminToken, http.StatusOK},
		{"editor cannot list cards", http.MethodGet, "/api/admin/cards", "", editorToken, http.StatusForbidden},
		{"viewer cannot list cards", http.MethodGet, "/api/admin/cards", "", viewerToken, http.StatusForbidden},
		{"admin updates a card", http.MethodPut, "/api/admin/cards/card-1", updateBody, adminToken, http.StatusOK},
		{"editor updates a card", http.MethodPut, "/api/admin/cards/card-1", updateBody, editorToken, http.StatusOK},
		{"viewer cannot update a card", http.MethodPut, "/api/admin/cards/card-1", updateBody, viewerToken, http.StatusForbidden},
		{"admin reads analytics", http.MethodGet, "/api/admin/analytics/card-1", "", adminToken, http.StatusOK},
		{"editor reads analytics", http.MethodGet, "/api/admin/analytics/card-1", "", editorToken, http.StatusOK},
		{"viewer reads analytics", http.MethodGet, "/api/admin/analytics/card-1", "", viewerToken, http.StatusOK},
		{"no token is unauthorized", http.MethodGet, "/api/admin/cards", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestPublicTracking(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "viewer-1", authmodels.RoleViewer)

	rec := f.do(t, http.MethodPost, "/api/analytics", `{"cardId":"card-1","device":"mobile"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	viewerToken := f.login(t, "viewer-1")
	rec = f.do(t, http.MethodGet, "/api/admin/analytics/card-1", "", viewerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalVisits":1`)
	assert.Contains(t, rec.Body.String(), `"mobileVisits":1`)
}

func TestRoleChangeTakesEffectNextRequest(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", authmodels.RoleAdmin)

	accessToken := f.login(t, "user-1")
	rec := f.do(t, http.MethodGet, "/api/admin/cards", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	// Demote out of band; the same unexpired token must lose access.
	f.seedUser(t, "user-1", authmodels.RoleViewer)
	rec = f.do(t, http.MethodGet, "/api/admin/cards", "", accessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
