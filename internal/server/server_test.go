package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/james2654817/sales-dashboard-backend/internal/auth"
	"github.com/james2654817/sales-dashboard-backend/internal/model"
	"github.com/james2654817/sales-dashboard-backend/internal/report"
)

var testNow = time.Date(2024, 6, 2, 18, 30, 0, 0, time.UTC)

// mockNotionClient implements notion.Client for testing.
type mockNotionClient struct {
	mock.Mock
}

func (m *mockNotionClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func testUsers() map[string]auth.Credential {
	return map[string]auth.Credential{
		"boss":   {Password: "secret", Permission: auth.PermissionAll},
		"hr-mgr": {Password: "hunter2", Permission: auth.PermissionHR},
	}
}

// testHandler builds a handler over empty store databases.
func testHandler(t *testing.T) (http.Handler, *auth.Gate) {
	t.Helper()

	mc := new(mockNotionClient)
	mc.On("QueryDatabase", mock.Anything, mock.Anything, mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{HasMore: false}, nil).Maybe()

	gate := auth.NewGate(testUsers(), "test-secret", 24*time.Hour)
	assembler := report.NewAssembler(mc, model.DefaultGroups("hr-db", "mhp-db"))
	srv := New(gate, assembler, WithClock(func() time.Time { return testNow }))
	return srv.Handler([]string{"*"}), gate
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h, _ := testHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestLogin_Success(t *testing.T) {
	h, _ := testHandler(t)

	rr := doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"username": "boss", "password": "secret"}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "boss", resp.Username)
	assert.Equal(t, auth.PermissionAll, resp.Permission)
}

func TestLogin_MissingFields(t *testing.T) {
	h, _ := testHandler(t)

	for _, body := range []map[string]string{
		{},
		{"username": "boss"},
		{"password": "secret"},
	} {
		rr := doJSON(t, h, http.MethodPost, "/api/login", body, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "請提供帳號和密碼")
	}
}

func TestLogin_InvalidJSON(t *testing.T) {
	h, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	h, _ := testHandler(t)

	rr := doJSON(t, h, http.MethodPost, "/api/login",
		map[string]string{"username": "nobody", "password": "secret"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "帳號或密碼錯誤", resp.Error)
}

func TestSales_MissingToken(t *testing.T) {
	h, _ := testHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/api/sales", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "未提供認證令牌")
}

func TestSales_MalformedAuthorizationHeader(t *testing.T) {
	h, _ := testHandler(t)

	for _, header := range []string{"Basic abc", "Bearer", "Bearer "} {
		rr := doJSON(t, h, http.MethodGet, "/api/sales", nil,
			map[string]string{"Authorization": header})
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "header %q", header)
		assert.Contains(t, rr.Body.String(), "未提供認證令牌")
	}
}

func TestSales_InvalidToken(t *testing.T) {
	h, _ := testHandler(t)

	rr := doJSON(t, h, http.MethodGet, "/api/sales", nil,
		map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	// Distinct message from the missing-token case.
	assert.Contains(t, rr.Body.String(), "認證令牌無效或已過期")
}

func TestSales_ExpiredToken(t *testing.T) {
	h, _ := testHandler(t)

	// A gate with a negative TTL issues already-expired tokens signed
	// with the same secret.
	expiredGate := auth.NewGate(testUsers(), "test-secret", -time.Hour)
	token, _, err := expiredGate.Login("boss", "secret")
	require.NoError(t, err)

	rr := doJSON(t, h, http.MethodGet, "/api/sales", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "認證令牌無效或已過期")
}

func TestSales_Success(t *testing.T) {
	h, gate := testHandler(t)

	token, _, err := gate.Login("boss", "secret")
	require.NoError(t, err)

	rr := doJSON(t, h, http.MethodGet, "/api/sales", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp salesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 3)
	assert.Equal(t, "2024-06-02", resp.TodayDate)
	assert.Zero(t, resp.TodayTotal)
}

func TestSales_ScopedByPermission(t *testing.T) {
	h, gate := testHandler(t)

	token, _, err := gate.Login("hr-mgr", "hunter2")
	require.NoError(t, err)

	rr := doJSON(t, h, http.MethodGet, "/api/sales", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp salesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, model.StoreDatong, resp.Data[0].Name)
	assert.Equal(t, model.StoreAnping, resp.Data[1].Name)
}

func TestSales_UpstreamFailure(t *testing.T) {
	mc := new(mockNotionClient)
	mc.On("QueryDatabase", mock.Anything, mock.Anything, mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(nil, assert.AnError)

	gate := auth.NewGate(testUsers(), "test-secret", 24*time.Hour)
	assembler := report.NewAssembler(mc, model.DefaultGroups("hr-db", "mhp-db"))
	h := New(gate, assembler, WithClock(func() time.Time { return testNow })).Handler([]string{"*"})

	token, _, err := gate.Login("boss", "secret")
	require.NoError(t, err)

	rr := doJSON(t, h, http.MethodGet, "/api/sales", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestRequestIDHeader(t *testing.T) {
	h, _ := testHandler(t)

	first := doJSON(t, h, http.MethodGet, "/api/health", nil, nil)
	id := first.Header().Get("X-Request-Id")
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	// Each request gets its own id.
	second := doJSON(t, h, http.MethodGet, "/api/health", nil, nil)
	assert.NotEqual(t, id, second.Header().Get("X-Request-Id"))
}

func TestRequestIDInContext(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r.Context())
	})

	rr := httptest.NewRecorder()
	requestLogger(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	// The handler observes the same id the client receives.
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-Id"))
}

func TestCORSPreflight(t *testing.T) {
	h, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/sales", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
