package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Daskott/folio/server/models"
	"github.com/Daskott/folio/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	err   error
	calls int
}

func (fs *failingStore) SaveMessage(ctx context.Context, msg *models.ContactMessage) error {
	fs.calls++
	return fs.err
}

func (fs *failingStore) Ping(ctx context.Context) error {
	return fs.err
}

func testConfig() *shared.ServerConfig {
	return &shared.ServerConfig{
		Site:     shared.SiteConfig{Name: "folio", Owner: "Jane Doe"},
		Listener: shared.ListenerConfig{Host: "127.0.0.1", Port: 5000},
		Store:    shared.StoreConfig{Driver: shared.SQLITE_DRIVER},
	}
}

func newTestRouter(t *testing.T, store MessageStore, config *shared.ServerConfig) http.Handler {
	t.Helper()

	router, err := NewRouter(Deps{Store: store, Config: config, DevMode: true})
	require.NoError(t, err)
	return router
}

func newSqliteRouter(t *testing.T) (http.Handler, *models.Store) {
	t.Helper()

	store, err := models.NewTestStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return newTestRouter(t, store, testConfig()), store
}

func postContact(router http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func countMessages(t *testing.T, store *models.Store) int64 {
	t.Helper()

	count, err := store.CountMessages(context.Background())
	require.NoError(t, err)
	return count
}

func TestPages(t *testing.T) {
	router, store := newSqliteRouter(t)

	tests := []struct {
		path  string
		title string
	}{
		{"/", "folio | Home"},
		{"/index", "folio | Home"},
		{"/resume", "folio | Resume"},
		{"/projects", "folio | Projects"},
		{"/contact", "folio | Contact"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := get(router, tt.path)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), "<title>"+tt.title+"</title>")
			assert.NotContains(t, rr.Body.String(), `class="alert`)
		})
	}

	assert.Zero(t, countMessages(t, store), "page views must never write to the store")
}

func TestContact_ValidSubmission(t *testing.T) {
	router, store := newSqliteRouter(t)

	rr := postContact(router, url.Values{
		"fullname":    {"Jane Doe"},
		"email":       {"jane@example.com"},
		"phonenumber": {"555-1234"},
		"message":     {"Hello"},
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Form submission successful!")
	assert.NotContains(t, rr.Body.String(), "An error occurred")

	messages, err := store.FindMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Jane Doe", messages[0].FullName)
	assert.Equal(t, "jane@example.com", messages[0].EmailAddress)
	assert.Equal(t, "555-1234", messages[0].PhoneNumber)
	assert.Equal(t, "Hello", messages[0].Message)
}

func TestContact_StoreUnreachable(t *testing.T) {
	store := &failingStore{err: errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")}
	router := newTestRouter(t, store, testConfig())

	form := url.Values{
		"fullname": {"Sam"},
		"email":    {"sam@example.com"},
		"message":  {"Hi"},
	}

	for i := 0; i < 2; i++ {
		rr := postContact(router, form)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "An error occurred: dial tcp 127.0.0.1:3306: connect: connection refused")
		assert.NotContains(t, rr.Body.String(), "Form submission successful!")
		assert.Contains(t, rr.Body.String(), `value="Sam"`, "the form is filled in again")
	}

	assert.Equal(t, 2, store.calls)
}

func TestContact_MissingField(t *testing.T) {
	router, store := newSqliteRouter(t)

	rr := postContact(router, url.Values{"fullname": {"Sam"}, "message": {"Hi"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "An error occurred: missing required field: email")
	assert.Zero(t, countMessages(t, store))
}

func TestContact_GetDoesNotTouchStore(t *testing.T) {
	store := &failingStore{err: errors.New("should not be called")}
	router := newTestRouter(t, store, testConfig())

	rr := get(router, "/contact")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<form method="POST" action="/contact">`)
	assert.Zero(t, store.calls)
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := newSqliteRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/projects", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/contact", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestNotFound(t *testing.T) {
	router, _ := newSqliteRouter(t)

	assert.Equal(t, http.StatusNotFound, get(router, "/admin").Code)
}

func TestSecurityHeaders(t *testing.T) {
	router, _ := newSqliteRouter(t)

	rr := get(router, "/")

	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestStatic(t *testing.T) {
	router, _ := newSqliteRouter(t)

	rr := get(router, "/static/css/style.css")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")
}

func TestHealth(t *testing.T) {
	router, _ := newSqliteRouter(t)

	rr := get(router, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)

	payload := ResponsePayload{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&payload))
	assert.True(t, payload.Success)

	router = newTestRouter(t, &failingStore{err: errors.New("connection refused")}, testConfig())

	rr = get(router, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	payload = ResponsePayload{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&payload))
	assert.False(t, payload.Success)
	assert.Equal(t, []string{"connection refused"}, payload.Errors)
}

func TestMetrics(t *testing.T) {
	router, _ := newSqliteRouter(t)

	postContact(router, url.Values{})
	rr := get(router, "/metrics")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `folio_contact_submissions_total{outcome="invalid"}`)
}

func TestContact_CSRF(t *testing.T) {
	store, err := models.NewTestStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	config := testConfig()
	config.Security.CSRFKey = strings.Repeat("k", 32)
	router := newTestRouter(t, store, config)

	rr := get(router, "/contact")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="_csrf"`)

	rr = postContact(router, url.Values{"fullname": {"Sam"}, "email": {"sam@example.com"}, "message": {"Hi"}})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "An error occurred: ")
	assert.Zero(t, countMessages(t, store))
}

func TestUnmatchedRequestsAreLoggedAndCounted(t *testing.T) {
	router, _ := newSqliteRouter(t)

	rr := get(router, "/admin")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/resume", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	body := get(router, "/metrics").Body.String()
	assert.Contains(t, body, `folio_http_requests_total{method="GET",route="unmatched",status_code="404"}`)
	assert.Contains(t, body, `folio_http_requests_total{method="PUT",route="unmatched",status_code="405"}`)
}

func TestContact_BodyTooLarge(t *testing.T) {
	router, store := newSqliteRouter(t)

	rr := postContact(router, url.Values{
		"fullname": {"Sam"},
		"email":    {"sam@example.com"},
		"message":  {strings.Repeat("a", MAX_FORM_SIZE+1)},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "request body too large")
	assert.Zero(t, countMessages(t, store))
}

type countingReader struct {
	r    io.Reader
	read int
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.read += n
	return n, err
}

func TestContact_BodyLimitAppliesBeforeCSRFCheck(t *testing.T) {
	store, err := models.NewTestStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	config := testConfig()
	config.Security.CSRFKey = strings.Repeat("k", 32)
	router := newTestRouter(t, store, config)

	form := url.Values{
		"fullname": {"Sam"},
		"email":    {"sam@example.com"},
		"message":  {strings.Repeat("a", 4*MAX_FORM_SIZE)},
	}
	body := &countingReader{r: strings.NewReader(form.Encode())}

	req := httptest.NewRequest(http.MethodPost, "/contact", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.LessOrEqual(t, body.read, MAX_FORM_SIZE+1, "csrf must read the form through the size limit")
	assert.Zero(t, countMessages(t, store))
}

func TestNewRouter_RequiresStore(t *testing.T) {
	_, err := NewRouter(Deps{Config: testConfig()})
	assert.Error(t, err)

	_, err = NewRouter(Deps{Store: &failingStore{}})
	assert.Error(t, err)
}
