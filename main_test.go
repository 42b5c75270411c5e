package main

import (
	"bytes"
	"chequeai/config"
	"chequeai/db"
	"chequeai/handlers"
	"chequeai/metrics"
	"chequeai/models"
	"chequeai/processing"
	"chequeai/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	return f.text, f.err
}

type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func (cl *client) do(method, path string, body any) *httptest.ResponseRecorder {
	cl.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(cl.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return cl.send(req)
}

func (cl *client) send(req *http.Request) *httptest.ResponseRecorder {
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			cl.cookie = c
		}
	}
	return w
}

func (cl *client) upload(filename string, data []byte) *httptest.ResponseRecorder {
	cl.t.Helper()
	body := bytes.Buffer{}
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(cl.t, err)
	_, err = part.Write(data)
	require.NoError(cl.t, err)
	require.NoError(cl.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/checks/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return cl.send(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	result := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), w.Body.String())
	return result
}

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	var err error
	db.Instance, err = db.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	config.S3_BUCKET = ""
	config.UPLOAD_DIR = filepath.Join(t.TempDir(), "uploads")
	config.DEBUG_MODE = true
	config.MAX_FILE_SIZE = 1 << 20
	config.TLS_DOMAINS = ""
	storage.Init()
	models.Init()
	processing.Init()
	metrics.Init()
	handlers.Extractor = &fakeExtractor{text: `{"payee_name": "JOHN DOE", "amount_number": "250.00", "micr_code": "123456"}`}
	gin.SetMode(gin.TestMode)
	return setupRouter(cookie.NewStore([]byte("test-key")))
}

func loggedIn(t *testing.T, router *gin.Engine, username string) *client {
	t.Helper()
	cl := &client{t: t, router: router}
	w := cl.do(http.MethodPost, "/api/auth/register", gin.H{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = cl.do(http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, cl.cookie)
	return cl
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 30, 20))))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	router := setupServer(t)
	cl := &client{t: t, router: router}

	w := cl.do(http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "storage")

	w = cl.do(http.MethodGet, "/api/test-db", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = cl.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = cl.do(http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode(t, w)["message"])
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	router := setupServer(t)
	cl := &client{t: t, router: router}
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/checks"},
		{http.MethodGet, "/api/checks/1"},
		{http.MethodPost, "/api/checks/insert-sample"},
		{http.MethodDelete, "/api/checks/1"},
		{http.MethodGet, "/api/auth/profile"},
		{http.MethodGet, "/api/user/stats"},
	} {
		w := cl.do(route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.JSONEq(t, `{"message":"Access token required"}`, w.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	router := setupServer(t)
	cl := &client{t: t, router: router}

	w := cl.do(http.MethodPost, "/api/auth/register", gin.H{"username": "bob", "email": "bob@example.com", "password": "123", "confirm_password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = cl.do(http.MethodPost, "/api/auth/register", gin.H{"username": "bob", "email": "bob@example.com", "password": "secret123", "confirm_password": "other"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Passwords do not match", decode(t, w)["message"])
	w = cl.do(http.MethodPost, "/api/auth/register", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	loggedIn(t, router, "bob")
	w = cl.do(http.MethodPost, "/api/auth/register", gin.H{"username": "bob", "email": "other@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = cl.do(http.MethodPost, "/api/auth/login", gin.H{"username": "bob", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserProfileFlow(t *testing.T) {
	router := setupServer(t)
	cl := loggedIn(t, router, "alice")

	w := cl.do(http.MethodGet, "/api/auth/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password_hash")

	w = cl.do(http.MethodPut, "/api/user/profile", gin.H{"username": "alice2"})
	require.Equal(t, http.StatusOK, w.Code)
	w = cl.do(http.MethodPut, "/api/user/password", gin.H{"current_password": "wrong-one", "new_password": "another1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = cl.do(http.MethodPut, "/api/user/password", gin.H{"current_password": "secret123", "new_password": "another1"})
	assert.Equal(t, http.StatusOK, w.Code)

	cl.do(http.MethodPost, "/api/checks/insert-sample", nil)
	w = cl.do(http.MethodGet, "/api/user/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.Equal(t, float64(1), stats["totalChecks"])
	assert.Equal(t, map[string]any{"USD": "8.01"}, stats["totals"])

	w = cl.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = cl.do(http.MethodGet, "/api/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSampleCheckFlow(t *testing.T) {
	router := setupServer(t)
	cl := loggedIn(t, router, "alice")

	w := cl.do(http.MethodPost, "/api/checks/insert-sample", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Sample check data inserted successfully!", body["message"])
	check := body["check"].(map[string]any)
	id := int(check["id"].(float64))

	w = cl.do(http.MethodGet, fmt.Sprintf("/api/checks/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	display := body["display"].(map[string]any)
	basic := display["basicDetails"].(map[string]any)
	assert.Equal(t, "JULIUS EVENTS COLLEGE PTY LTD", basic["payee_name"])
	assert.Equal(t, "8.01 USD", basic["amount"])
	bank := display["bankDetails"].(map[string]any)
	assert.Equal(t, "Not available", bank["account_number"])
	assert.Contains(t, display, "securityFeatures")

	w = cl.do(http.MethodGet, "/api/checks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	checks := decode(t, w)["checks"].([]any)
	require.Len(t, checks, 1)
	first := checks[0].(map[string]any)
	assert.Equal(t, float64(id), first["id"])
	assert.Contains(t, first, "extractedInfo")
	assert.Contains(t, first, "display")

	w = cl.do(http.MethodGet, fmt.Sprintf("/api/checks/%d/image", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = cl.do(http.MethodDelete, fmt.Sprintf("/api/checks/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Check deleted successfully", decode(t, w)["message"])
	w = cl.do(http.MethodGet, fmt.Sprintf("/api/checks/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChecksAreOwnerScoped(t *testing.T) {
	router := setupServer(t)
	alice := loggedIn(t, router, "alice")
	bob := loggedIn(t, router, "bob")

	w := alice.do(http.MethodPost, "/api/checks/insert-sample", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int(decode(t, w)["check"].(map[string]any)["id"].(float64))

	for _, path := range []string{
		fmt.Sprintf("/api/checks/%d", id),
		fmt.Sprintf("/api/checks/%d/export-csv", id),
		fmt.Sprintf("/api/checks/%d/export-pdf", id),
		fmt.Sprintf("/api/checks/%d/image", id),
		"/api/checks/999",
		"/api/checks/abc",
	} {
		w = bob.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Check not found", decode(t, w)["message"], path)
	}
	w = bob.do(http.MethodPut, fmt.Sprintf("/api/checks/%d/update-extracted-data", id), gin.H{"extractedData": gin.H{"payee_name": "BOB"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = bob.do(http.MethodDelete, fmt.Sprintf("/api/checks/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = bob.do(http.MethodGet, "/api/checks", nil)
	assert.JSONEq(t, `{"checks":[]}`, w.Body.String())

	w = alice.do(http.MethodGet, fmt.Sprintf("/api/checks/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "JULIUS EVENTS COLLEGE PTY LTD", decode(t, w)["extractedInfo"].(map[string]any)["payee_name"])
}

func TestUpdateExtractedData(t *testing.T) {
	router := setupServer(t)
	cl := loggedIn(t, router, "alice")
	w := cl.do(http.MethodPost, "/api/checks/insert-sample", nil)
	id := int(decode(t, w)["check"].(map[string]any)["id"].(float64))
	path := fmt.Sprintf("/api/checks/%d/update-extracted-data", id)

	w = cl.do(http.MethodPut, path, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Extracted data is required", decode(t, w)["message"])

	w = cl.do(http.MethodPut, path, gin.H{"extractedData": gin.H{"payee_name": "NEW PAYEE", "amount_number": 99.5}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Extracted data updated successfully!", body["message"])
	check := body["check"].(map[string]any)
	assert.Equal(t, "NEW PAYEE", check["payee_name"])
	assert.Equal(t, "99.5", check["amount_number"])
	assert.Equal(t, "", check["micr_code"])
	assert.Equal(t, "99.5 USD", check["display"].(map[string]any)["basicDetails"].(map[string]any)["amount"])

	w = cl.do(http.MethodPost, fmt.Sprintf("/api/checks/%d/insert-extracted-data", id), gin.H{"extractedData": gin.H{"micr_code": "777"}})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Extracted data inserted successfully!", body["message"])
	assert.Equal(t, "777", body["check"].(map[string]any)["micr_code"])
	assert.Equal(t, "", body["check"].(map[string]any)["payee_name"])
}

func TestExtractUpload(t *testing.T) {
	router := setupServer(t)
	cl := loggedIn(t, router, "alice")

	w := cl.upload("cheque.png", pngBytes(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Check information extracted successfully using Gemini AI!", body["message"])
	check := body["check"].(map[string]any)
	assert.Equal(t, "JOHN DOE", check["payee_name"])
	assert.Equal(t, "USD", check["currency_name"])
	id := int(check["id"].(float64))

	w = cl.do(http.MethodGet, fmt.Sprintf("/api/checks/%d/image", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes(t), w.Body.Bytes())
	assert.Equal(t, "private, max-age=86400", w.Header().Get("Cache-Control"))

	w = cl.do(http.MethodGet, fmt.Sprintf("/api/checks/%d/export-csv", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bank_check_JOHN_DOE_")
	assert.Contains(t, w.Body.String(), "Payee Name,JOHN DOE")
	assert.Contains(t, w.Body.String(), "Account Number,Not available")

	w = cl.do(http.MethodGet, fmt.Sprintf("/api/checks/%d/export-pdf", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestExtractUploadErrors(t *testing.T) {
	router := setupServer(t)
	cl := loggedIn(t, router, "alice")

	w := cl.upload("notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only image files are allowed!", decode(t, w)["message"])

	req := httptest.NewRequest(http.MethodPost, "/api/checks/extract", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w = cl.send(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decode(t, w)["message"])

	handlers.Extractor = &fakeExtractor{err: errors.New("boom")}
	w = cl.upload("cheque.png", pngBytes(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error processing image with AI: boom", decode(t, w)["message"])

	w = cl.do(http.MethodGet, "/api/checks", nil)
	assert.JSONEq(t, `{"checks":[]}`, w.Body.String())
}
