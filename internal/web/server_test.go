package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosley/fridgechef/internal/chef"
	"github.com/amosley/fridgechef/internal/db"
	"github.com/amosley/fridgechef/internal/detect"
	"github.com/amosley/fridgechef/internal/domain"
	"github.com/amosley/fridgechef/internal/inventory"
	"github.com/amosley/fridgechef/internal/store"
)

type stubDetector struct {
	result  *detect.Result
	err     error
	healthy bool
}

func (s *stubDetector) Detect(_ context.Context, _ []byte) (*detect.Result, error) {
	return s.result, s.err
}

func (s *stubDetector) Health(_ context.Context) bool { return s.healthy }

type stubGenerator struct {
	reply   string
	err     error
	healthy bool

	lastPrompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, _ []byte) (string, error) {
	s.lastPrompt = prompt
	return s.reply, s.err
}

func (s *stubGenerator) Health(_ context.Context) bool { return s.healthy }

type memPersister struct {
	items []domain.Ingredient
}

func (p *memPersister) Save(_ context.Context, items []domain.Ingredient) error {
	p.items = append([]domain.Ingredient(nil), items...)
	return nil
}

func (p *memPersister) Load(_ context.Context) ([]domain.Ingredient, error) {
	return p.items, nil
}

func newTestServer(t *testing.T, detector detect.Detector, generator *stubGenerator) *Server {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	inv := inventory.NewStore(&memPersister{}, slog.Default())
	o := chef.New(detector, generator, inv, store.NewRecipeStore(d), 8, 20, slog.Default())
	return NewServer(o, slog.Default())
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestHealthReflectsBothServices(t *testing.T) {
	s := newTestServer(t,
		&stubDetector{healthy: true},
		&stubGenerator{healthy: true},
	)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"detection":true,"generation":true}`, rec.Body.String())

	degraded := newTestServer(t,
		&stubDetector{healthy: false},
		&stubGenerator{healthy: true},
	)
	rec = doJSON(t, degraded, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScanMergesIntoInventory(t *testing.T) {
	detector := &stubDetector{result: &detect.Result{
		Labels:      []string{"Eggs", "egg", "Milk "},
		Confidences: []float64{0.9, 0.8, 0.7},
	}}
	s := newTestServer(t, detector, &stubGenerator{reply: "ok"})
	id := createSession(t, s)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/scan",
		bytes.NewReader([]byte{0xFF, 0xD8, 0xFF}))
	req.Header.Set("Content-Type", "image/jpeg")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var scan struct {
		Added    []string `json:"added"`
		Degraded bool     `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scan))
	assert.False(t, scan.Degraded)
	assert.Equal(t, []string{"egg", "milk"}, scan.Added)

	rec = doJSON(t, s, http.MethodGet, "/inventory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"egg"`)
	assert.Contains(t, rec.Body.String(), `"milk"`)
}

func TestScanRejectsEmptyImage(t *testing.T) {
	s := newTestServer(t, &stubDetector{}, &stubGenerator{})
	id := createSession(t, s)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/scan", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanUnknownSessionIs404(t *testing.T) {
	s := newTestServer(t, &stubDetector{result: &detect.Result{}}, &stubGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/sessions/nope/scan",
		bytes.NewReader([]byte{0xFF, 0xD8}))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatRoundTrip(t *testing.T) {
	s := newTestServer(t, &stubDetector{}, &stubGenerator{reply: "Try a frittata."})
	id := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/sessions/"+id+"/chat",
		map[string]string{"message": "what can I cook?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "frittata")

	rec = doJSON(t, s, http.MethodGet, "/sessions/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Turns []domain.ConversationTurn `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist.Turns, 2)
	assert.Equal(t, domain.RoleUser, hist.Turns[0].Role)
	assert.Equal(t, domain.RoleAssistant, hist.Turns[1].Role)

	rec = doJSON(t, s, http.MethodDelete, "/sessions/"+id+"/history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/sessions/"+id+"/history", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Empty(t, hist.Turns)
}

func TestChatForwardsPreferences(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	s := newTestServer(t, &stubDetector{}, gen)
	id := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/sessions/"+id+"/chat", map[string]any{
		"message":              "dinner ideas",
		"dietary_restrictions": []string{"vegetarian", "no nuts"},
		"cuisine_type":         "thai",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, gen.lastPrompt, "vegetarian, no nuts")
	assert.Contains(t, gen.lastPrompt, "thai")
}

func TestChatRequiresMessage(t *testing.T) {
	s := newTestServer(t, &stubDetector{}, &stubGenerator{})
	id := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/sessions/"+id+"/chat",
		map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatDegradedWhenGeneratorDown(t *testing.T) {
	s := newTestServer(t, &stubDetector{},
		&stubGenerator{err: fmt.Errorf("connection refused")})
	id := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/sessions/"+id+"/chat",
		map[string]string{"message": "dinner ideas"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reply    string `json:"reply"`
		Degraded bool   `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.Reply, "unavailable")
}

func TestManualInventoryLifecycle(t *testing.T) {
	s := newTestServer(t, &stubDetector{}, &stubGenerator{})

	rec := doJSON(t, s, http.MethodPost, "/inventory/items",
		map[string]string{"name": "Tomatoes"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"name":"tomato"}`, rec.Body.String())

	rec = doJSON(t, s, http.MethodDelete, "/inventory/items/tomato", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/inventory", nil)
	assert.NotContains(t, rec.Body.String(), "tomato")

	rec = doJSON(t, s, http.MethodPost, "/inventory/items", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetClearsInventory(t *testing.T) {
	s := newTestServer(t, &stubDetector{}, &stubGenerator{})

	rec := doJSON(t, s, http.MethodPost, "/inventory/items", map[string]string{"name": "milk"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/inventory/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/inventory", nil)
	assert.NotContains(t, rec.Body.String(), "milk")
}

func TestShoppingListEndpoint(t *testing.T) {
	list := `{"dish":"omelette","missing_items":[{"name":"butter","priority":"must"}],` +
		`"optional_items":[],"already_have":[],"notes":[]}`
	s := newTestServer(t, &stubDetector{}, &stubGenerator{reply: list})
	id := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/sessions/"+id+"/shopping-list",
		map[string]string{"request": "omelette"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"omelette"`)
	assert.Contains(t, rec.Body.String(), `"butter"`)
}

func TestRecipeEndpoints(t *testing.T) {
	s := newTestServer(t, &stubDetector{}, &stubGenerator{})

	rec := doJSON(t, s, http.MethodPost, "/recipes",
		map[string]string{"title": "Shakshuka", "body": "Simmer tomatoes, crack eggs."})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Shakshuka", created.Title)

	rec = doJSON(t, s, http.MethodGet, "/recipes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Shakshuka")

	rec = doJSON(t, s, http.MethodGet, "/recipes?q=shak", nil)
	assert.Contains(t, rec.Body.String(), "Shakshuka")

	rec = doJSON(t, s, http.MethodGet, "/recipes?q=nomatch", nil)
	assert.NotContains(t, rec.Body.String(), "Shakshuka")

	rec = doJSON(t, s, http.MethodDelete,
		fmt.Sprintf("/recipes/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/recipes/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/recipes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/recipes", map[string]string{"body": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, &stubDetector{healthy: true}, &stubGenerator{healthy: true})
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestScanAcceptsBase64JSON(t *testing.T) {
	detector := &stubDetector{result: &detect.Result{Labels: []string{"cheese"}}}
	s := newTestServer(t, detector, &stubGenerator{reply: "ok"})
	id := createSession(t, s)

	// "aGVsbG8=" is base64 for "hello"; the stub ignores the bytes.
	body := strings.NewReader(`{"image_base64":"aGVsbG8="}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/scan", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cheese")
}
