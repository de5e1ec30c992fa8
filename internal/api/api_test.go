package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aarambhveda/counselor/internal/catalog"
	"github.com/aarambhveda/counselor/internal/config"
	"github.com/aarambhveda/counselor/internal/storage/sqlite"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	url   string
	err   error
	calls int
}

func (p *fakeProvider) IssueSignedURL(ctx context.Context) (string, error) {
	p.calls++
	return p.url, p.err
}

type memoryIssuances struct {
	mu      sync.Mutex
	records []sqlite.TokenIssuance
}

func (m *memoryIssuances) Record(ctx context.Context, clientAddr string, issueErr error) (*sqlite.TokenIssuance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := sqlite.TokenIssuance{
		ID:         string(rune('a' + len(m.records))),
		CreatedAt:  time.Now(),
		ClientAddr: clientAddr,
		Success:    issueErr == nil,
	}
	if issueErr != nil {
		rec.ErrorMessage = issueErr.Error()
	}
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *memoryIssuances) List(ctx context.Context, limit, offset int) ([]sqlite.TokenIssuance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sqlite.TokenIssuance, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func newTestRouter(t *testing.T, provider *fakeProvider, issuances IssuanceStore, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.CORSAllowedOrigins = []string{"https://aarambhveda.example"}
	if mutate != nil {
		mutate(cfg)
	}
	svc := catalog.NewService(catalog.DefaultColleges(), catalog.DefaultCourseCategories(), catalog.DefaultExams(), 4, logger.NewNop())
	return NewRouter(svc, provider, issuances, cfg, logger.NewNop()).Routes()
}

func doRequest(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doAdminRequest(h http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type collegeList struct {
	Count    int           `json:"count"`
	Colleges []CollegeView `json:"colleges"`
}

func ids(views []CollegeView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, &fakeProvider{}, nil, nil)
	rec := doRequest(h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 14, body["colleges"])
}

func TestListColleges(t *testing.T) {
	h := newTestRouter(t, &fakeProvider{}, nil, nil)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"by state", "/api/v1/colleges?state=Karnataka", []string{"11", "5", "12"}},
		{"by state sorted by name", "/api/v1/colleges?state=Karnataka&sort=name", []string{"12", "11", "5"}},
		{"comma separated types", "/api/v1/colleges?type=Autonomous,Private&state=Delhi", []string{"9"}},
		{"search city", "/api/v1/colleges?search=bengaluru&sort=fees-low", []string{"11", "12", "5"}},
		{"no match", "/api/v1/colleges?search=atlantis", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			body := decode[collegeList](t, rec)
			assert.Equal(t, len(tt.want), body.Count)
			assert.Equal(t, tt.want, ids(body.Colleges))
		})
	}
}

func TestCollegeViewFormatsMoney(t *testing.T) {
	h := newTestRouter(t, &fakeProvider{}, nil, nil)
	rec := doRequest(h, http.MethodGet, "/api/v1/colleges/3")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[CollegeView](t, rec)
	assert.Equal(t, "Indian Institute of Management Ahmedabad", view.Name)
	assert.Equal(t, catalog.FormatCurrency(1250000), view.AvgFeesText)
	assert.Equal(t, catalog.FormatCurrency(11500000), view.HighestPackageText)

	rec = doRequest(h, http.MethodGet, "/api/v1/colleges/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTopColleges(t *testing.T) {
	h := newTestRouter(t, &fakeProvider{}, nil, nil)

	rec := doRequest(h, http.MethodGet, "/api/v1/colleges/top?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"3", "4"}, ids(decode[[]CollegeView](t, rec)))

	rec = doRequest(h, http.MethodGet, "/api/v1/colleges/top?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareColleges(t *testing.T) {
	h := newTestRouter(t, &fakeProvider{}, nil, nil)

	type compareBody struct {
		Limit    int           `json:"limit"`
		Colleges []CollegeView `json:"colleges"`
	}

	rec := doRequest(h, http.MethodGet, "/api/v1/compare?ids=5,11,5")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[compareBody](t, rec)
	assert.Equal(t, 4, body.Limit)
	assert.Equal(t, []string{"5", "11"}, ids(body.Colleges))

	rec = doRequest(h, http.MethodGet, "/api/v1/compare")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1", "2"}, ids(decode[compareBody](t, rec).Colleges))

	rec = doRequest(h, http.MethodGet, "/api/v1/compare?ids=1,2,3,4,5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h, http.MethodGet, "/api/v1/compare?ids=1,404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCoursesExamsFilters(t *testing.T) {
	h := newTestRouter(t, &fakeProvider{}, nil, nil)

	rec := doRequest(h, http.MethodGet, "/api/v1/courses")
	require.Equal(t, http.StatusOK, rec.Code)
	courses := decode[[]catalog.CourseCategory](t, rec)
	require.Len(t, courses, 10)
	assert.Equal(t, "engineering", courses[0].Slug)

	rec = doRequest(h, http.MethodGet, "/api/v1/exams")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]catalog.Exam](t, rec), 6)

	rec = doRequest(h, http.MethodGet, "/api/v1/filters")
	require.Equal(t, http.StatusOK, rec.Code)
	filters := decode[catalog.Filters](t, rec)
	assert.Contains(t, filters.States, "Karnataka")
	assert.Contains(t, filters.Sorts, catalog.SortFeesLow)
}

func TestTokenEndpoint(t *testing.T) {
	t.Run("issues signed url and records it", func(t *testing.T) {
		provider := &fakeProvider{url: "wss://api.elevenlabs.io/v1/convai/conversation?token=abc"}
		audit := &memoryIssuances{}
		h := newTestRouter(t, provider, audit, nil)

		rec := doRequest(h, http.MethodPost, "/functions/v1/elevenlabs-conversation-token")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, provider.url, decode[TokenResponse](t, rec).SignedURL)

		require.Len(t, audit.records, 1)
		assert.True(t, audit.records[0].Success)
		assert.Equal(t, "203.0.113.7", audit.records[0].ClientAddr)
	})

	t.Run("provider failure returns error body", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("signed url request failed: status 401")}
		audit := &memoryIssuances{}
		h := newTestRouter(t, provider, audit, nil)

		rec := doRequest(h, http.MethodGet, "/functions/v1/elevenlabs-conversation-token")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode[TokenResponse](t, rec)
		assert.Empty(t, body.SignedURL)
		assert.Contains(t, body.Error, "401")

		require.Len(t, audit.records, 1)
		assert.False(t, audit.records[0].Success)
		assert.NotContains(t, audit.records[0].ErrorMessage, "wss://")
	})

	t.Run("rate limited per client", func(t *testing.T) {
		provider := &fakeProvider{url: "wss://example/convai"}
		h := newTestRouter(t, provider, nil, func(c *config.Config) {
			c.RateLimit.TokenRequestsPerMinute = 1
			c.RateLimit.TokenBurst = 2
		})

		for i := 0; i < 2; i++ {
			rec := doRequest(h, http.MethodPost, "/functions/v1/elevenlabs-conversation-token")
			require.Equal(t, http.StatusOK, rec.Code)
		}
		rec := doRequest(h, http.MethodPost, "/functions/v1/elevenlabs-conversation-token")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "Too many requests", decode[TokenResponse](t, rec).Error)
		assert.Equal(t, 2, provider.calls)
	})
}

func TestTokenIssuanceAudit(t *testing.T) {
	const adminToken = "s3cret-admin"
	audit := &memoryIssuances{}
	h := newTestRouter(t, &fakeProvider{url: "wss://x"}, audit, func(c *config.Config) {
		c.Server.AdminToken = adminToken
	})
	for i := 0; i < 3; i++ {
		doRequest(h, http.MethodPost, "/functions/v1/elevenlabs-conversation-token")
	}

	type auditBody struct {
		Limit     int                    `json:"limit"`
		Offset    int                    `json:"offset"`
		Issuances []sqlite.TokenIssuance `json:"issuances"`
	}

	rec := doAdminRequest(h, "/api/v1/admin/token-issuances?limit=2&offset=1", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[auditBody](t, rec)
	assert.Equal(t, 2, body.Limit)
	require.Len(t, body.Issuances, 2)
	assert.Equal(t, "b", body.Issuances[0].ID)

	rec = doAdminRequest(h, "/api/v1/admin/token-issuances?limit=-1", adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = newTestRouter(t, &fakeProvider{}, nil, func(c *config.Config) {
		c.Server.AdminToken = adminToken
	})
	rec = doAdminRequest(h, "/api/v1/admin/token-issuances", adminToken)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	audit := &memoryIssuances{}
	_, err := audit.Record(context.Background(), "198.51.100.4", nil)
	require.NoError(t, err)

	h := newTestRouter(t, &fakeProvider{}, audit, func(c *config.Config) {
		c.Server.AdminToken = "s3cret-admin"
	})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "guess", http.StatusUnauthorized},
		{"valid token", "s3cret-admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAdminRequest(h, "/api/v1/admin/token-issuances", tt.token)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotContains(t, rec.Body.String(), "198.51.100.4")
				assert.Equal(t, `Bearer realm="admin"`, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}

	t.Run("disabled without a configured token", func(t *testing.T) {
		h := newTestRouter(t, &fakeProvider{}, audit, nil)
		rec := doAdminRequest(h, "/api/v1/admin/token-issuances", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, &fakeProvider{}, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/elevenlabs-conversation-token", nil)
	req.Header.Set("Origin", "https://aarambhveda.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://aarambhveda.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFiles(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("hunter2"), 0o644))
	dir := filepath.Join(parent, "site")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Aarambh Veda</h1>"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	h := newTestRouter(t, &fakeProvider{}, nil, func(c *config.Config) {
		c.Server.StaticFilesDir = dir
	})

	rec := doRequest(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Aarambh Veda"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))

	rec = doRequest(h, http.MethodGet, "/assets/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(h, http.MethodGet, "/missing.css")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h, http.MethodGet, "/colleges/3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Aarambh Veda")

	rec = doRequest(h, http.MethodGet, "/assets/missing.js")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h, http.MethodGet, "/api/v1/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h, http.MethodGet, "/../secret.txt")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestClientLimiterEvictsIdleClients(t *testing.T) {
	l := newClientLimiter(60, 1, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.Equal(t, 2, l.size())

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow("a"))
	assert.Equal(t, 1, l.size(), "b was idle past the ttl")

	disabled := newClientLimiter(0, 0, 0)
	assert.Nil(t, disabled)
	assert.True(t, disabled.Allow("anyone"))
}
