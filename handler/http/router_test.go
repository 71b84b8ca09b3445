package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/brainvault"
	"github.com/w-h-a/brainvault/answerer"
	"github.com/w-h-a/brainvault/embedder/hashing"
	"github.com/w-h-a/brainvault/generator"
	"github.com/w-h-a/brainvault/storer/memory"
	memorystore "github.com/w-h-a/brainvault/user_store/memory"
	"github.com/w-h-a/brainvault/util/telemetry"
)

// echoAnswerer answers with the passage it was given.
type echoAnswerer struct {
	err error
}

func (a *echoAnswerer) Answer(ctx context.Context, question string, passage string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if len(strings.TrimSpace(passage)) == 0 {
		return answerer.NoContextAnswer, nil
	}
	return passage, nil
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	ans     *echoAnswerer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	ans := &echoAnswerer{}

	vault := brainvault.New(
		memorystore.NewStore(),
		hashing.NewEmbedder(),
		memory.NewStorer(),
		ans,
		brainvault.Config{Secret: "test-secret"},
	)
	t.Cleanup(func() { vault.Close() })

	return &testAPI{
		t:       t,
		handler: CORS(NewRouter(vault, telemetry.NewMetrics("brainvault"))),
		ans:     ans,
	}
}

func (a *testAPI) do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	body := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}

	return rec, body
}

func (a *testAPI) json(method string, path string, token string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(a.t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return a.do(req)
}

func (a *testAPI) login(email string, password string) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()

	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return a.do(req)
}

func (a *testAPI) token(email string) string {
	a.t.Helper()

	rec, _ := a.json(http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": "pw"})
	require.Equal(a.t, http.StatusCreated, rec.Code)

	rec, body := a.login(email, "pw")
	require.Equal(a.t, http.StatusOK, rec.Code)

	return body["access_token"].(string)
}

func TestStatus(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BrainVault API is running!", body["message"])

	rec, body = api.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.json(http.MethodPost, "/auth/register", "", map[string]string{"email": "alice@example.com", "password": "pw"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotZero(t, body["id"])
	assert.NotEmpty(t, body["created_at"])
	assert.NotContains(t, body, "hashed_password")
	assert.NotContains(t, body, "PasswordHash")

	rec, body = api.json(http.MethodPost, "/auth/register", "", map[string]string{"email": "alice@example.com", "password": "pw2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", body["detail"])

	rec, _ = api.json(http.MethodPost, "/auth/register", "", map[string]string{"email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	api.token("alice@example.com")

	rec, body := api.login("alice@example.com", "pw")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])

	for _, creds := range [][2]string{{"alice@example.com", "wrong"}, {"bob@example.com", "pw"}} {
		rec, body := api.login(creds[0], creds[1])
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Equal(t, "Incorrect email or password", body["detail"])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	for _, token := range []string{"", "garbage"} {
		rec, body := api.json(http.MethodPost, "/api/notes", token, map[string]string{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Equal(t, "Could not validate credentials", body["detail"])

		rec, _ = api.json(http.MethodPost, "/api/chat", token, map[string]string{"message": "hi"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestSaveNoteAndChat(t *testing.T) {
	api := newTestAPI(t)
	alice := api.token("alice@example.com")
	bob := api.token("bob@example.com")

	rec, body := api.json(http.MethodPost, "/api/chat", alice, map[string]string{"message": "When do I go to the gym?"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No relevant notes found.", body["reply"])

	rec, body = api.json(http.MethodPost, "/api/notes", alice, map[string]string{"title": "Gym", "content": "I go to the gym on Monday"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note saved successfully!", body["message"])
	assert.Equal(t, "alice@example.com", body["user"])
	assert.Len(t, body["note_id"], 36)

	rec, body = api.json(http.MethodPost, "/api/chat", alice, map[string]string{"message": "When do I go to the gym?"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Gym. I go to the gym on Monday", body["reply"])

	rec, body = api.json(http.MethodPost, "/api/chat", bob, map[string]string{"message": "When do I go to the gym?"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No relevant notes found.", body["reply"])
}

func TestSaveNote_MissingFields(t *testing.T) {
	api := newTestAPI(t)
	token := api.token("alice@example.com")

	for _, payload := range []map[string]string{{"title": "Gym"}, {"content": "Monday"}, {}} {
		rec, body := api.json(http.MethodPost, "/api/notes", token, payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Both 'title' and 'content' fields are required", body["detail"])
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	api := newTestAPI(t)
	token := api.token("alice@example.com")

	rec, _ := api.json(http.MethodPost, "/api/chat", token, map[string]string{"message": " "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_GenerationFailureIsGeneric(t *testing.T) {
	api := newTestAPI(t)
	token := api.token("alice@example.com")

	rec, _ := api.json(http.MethodPost, "/api/notes", token, map[string]string{"title": "Gym", "content": "Monday"})
	require.Equal(t, http.StatusOK, rec.Code)

	api.ans.err = fmt.Errorf("%w: upstream said api key sk-123 is invalid", generator.ErrGeneration)

	rec, body := api.json(http.MethodPost, "/api/chat", token, map[string]string{"message": "gym"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["detail"])
	assert.NotContains(t, rec.Body.String(), "sk-123")
}

func TestListNotes(t *testing.T) {
	api := newTestAPI(t)
	token := api.token("alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, body := api.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notes for user alice@example.com", body["message"])
	assert.Equal(t, float64(1), body["user_id"])
	assert.Equal(t, "Use /api/chat to search your notes", body["note"])
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization,content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	api.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `brainvault_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
