package photos_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housy-backend/internal/photos"
	"housy-backend/internal/shared/auth"
	"housy-backend/internal/shared/server/middleware"
	"housy-backend/internal/shared/storage/object"
	"housy-backend/internal/shared/storage/object/local"
)

const testPropertyID = "6f1c1c86-5d8f-4f43-9a32-6a5c1e1b2c3d"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type countingBackend struct {
	object.Backend
	uploads atomic.Int32
}

func (b *countingBackend) Upload(ctx context.Context, data []byte, name, mimeType string) (object.UploadResult, error) {
	b.uploads.Add(1)
	return b.Backend.Upload(ctx, data, name, mimeType)
}

type harness struct {
	router  *gin.Engine
	tokens  *auth.TokenManager
	backend *countingBackend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, local.New(t.TempDir(), "http://localhost:8080/files"), photos.NewMemoryRepo())
}

func newHarnessWith(t *testing.T, store object.Backend, repo photos.Repo) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &countingBackend{Backend: store}
	svc := photos.NewService(backend, repo, nil)
	tm := auth.NewTokenManager("s3cret", time.Hour)

	router := gin.New()
	api := router.Group("/api/v1", middleware.Auth(tm))
	photos.NewHandler(svc).RegisterRoutes(api)

	return &harness{router: router, tokens: tm, backend: backend}
}

func (h *harness) do(t *testing.T, req *http.Request, role auth.Role) *httptest.ResponseRecorder {
	t.Helper()
	if role != "" {
		token, err := h.tokens.Sign("user-1", role, "")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)
	return resp
}

func uploadRequest(t *testing.T, propertyID, section, fileName string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if section != "" {
		require.NoError(t, writer.WriteField("section", section))
	}
	if content != nil {
		fw, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/"+propertyID+"/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodePhoto(t *testing.T, resp *httptest.ResponseRecorder) photos.Photo {
	t.Helper()
	var p photos.Photo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &p))
	return p
}

func TestUploadListUpdateDelete(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, uploadRequest(t, testPropertyID, "kitchen", "front.png", pngBytes), auth.RoleAgent)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decodePhoto(t, resp)
	assert.NotZero(t, created.ID)
	assert.Equal(t, photos.SectionKitchen, created.Section)
	assert.True(t, strings.HasPrefix(created.URL, "http://localhost:8080/files/properties/"+testPropertyID+"/"))
	assert.NotEmpty(t, created.PublicID)

	resp = h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/photos?propertyId="+testPropertyID, nil), auth.RoleClient)
	require.Equal(t, http.StatusOK, resp.Code)
	var list struct {
		Items []photos.Photo `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)

	path := "/api/v1/photos/" + strconv.FormatInt(created.ID, 10)
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"section":"exterior"}`))
	req.Header.Set("Content-Type", "application/json")
	resp = h.do(t, req, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, photos.SectionExterior, decodePhoto(t, resp).Section)

	resp = h.do(t, httptest.NewRequest(http.MethodDelete, path, nil), auth.RoleAgent)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = h.do(t, httptest.NewRequest(http.MethodDelete, path, nil), auth.RoleAgent)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestClientCannotUpload(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, uploadRequest(t, testPropertyID, "kitchen", "front.png", pngBytes), auth.RoleClient)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Zero(t, h.backend.uploads.Load())
}

func TestUploadWithoutTokenIsUnauthorized(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, uploadRequest(t, testPropertyID, "kitchen", "front.png", pngBytes), "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Zero(t, h.backend.uploads.Load())
}

func TestUploadValidation(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{name: "non uuid property", req: uploadRequest(t, "P1", "kitchen", "a.png", pngBytes)},
		{name: "missing file", req: uploadRequest(t, testPropertyID, "kitchen", "", nil)},
		{name: "unknown section", req: uploadRequest(t, testPropertyID, "garage", "a.png", pngBytes)},
		{name: "not an image", req: uploadRequest(t, testPropertyID, "kitchen", "a.png", []byte("plain text pretending"))},
		{name: "too large", req: uploadRequest(t, testPropertyID, "kitchen", "a.png", append(append([]byte{}, pngBytes...), make([]byte, 5<<20)...))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.do(t, tt.req, auth.RoleAdmin)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		})
	}
	assert.Zero(t, h.backend.uploads.Load())
}

func TestDeleteMissingPhoto(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/photos/999", nil), auth.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = h.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/photos/abc", nil), auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListRequiresPropertyID(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil), auth.RoleClient)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListRejectsMalformedPropertyID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	h := newHarnessWith(t, local.New(t.TempDir(), "http://localhost:8080/files"), &photos.PGRepo{DB: db})

	resp := h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/photos?propertyId=abc", nil), auth.RoleClient)
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "validation_error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

type scriptedBackend struct {
	uploadErr error
	deletes   []string
}

func (b *scriptedBackend) Upload(_ context.Context, _ []byte, name, _ string) (object.UploadResult, error) {
	if b.uploadErr != nil {
		return object.UploadResult{}, b.uploadErr
	}
	return object.UploadResult{URL: "https://cdn.example/" + name, PublicID: name}, nil
}

func (b *scriptedBackend) Delete(_ context.Context, publicID string) (object.DeleteResult, error) {
	b.deletes = append(b.deletes, publicID)
	return object.DeleteResult{Success: true}, nil
}

type failingCreateRepo struct {
	photos.Repo
}

func (failingCreateRepo) Create(context.Context, photos.Photo) (photos.Photo, error) {
	return photos.Photo{}, errors.New("connection reset by peer")
}

func assertErrorEnvelope(t *testing.T, resp *httptest.ResponseRecorder, code string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), resp.Body.String())
	assert.Equal(t, code, body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
	assert.NotContains(t, resp.Body.String(), "goroutine")
	assert.NotContains(t, resp.Body.String(), "connection reset")
}

func TestUploadProviderFailureReturnsStorageError(t *testing.T) {
	backend := &scriptedBackend{uploadErr: errors.New("provider unavailable")}
	repo := photos.NewMemoryRepo()
	h := newHarnessWith(t, backend, repo)

	resp := h.do(t, uploadRequest(t, testPropertyID, "kitchen", "front.png", pngBytes), auth.RoleAgent)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assertErrorEnvelope(t, resp, "storage_error")

	stored, err := repo.ListByProperty(context.Background(), testPropertyID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, backend.deletes)
}

func TestUploadPersistFailureCompensatesOnce(t *testing.T) {
	backend := &scriptedBackend{}
	h := newHarnessWith(t, backend, failingCreateRepo{Repo: photos.NewMemoryRepo()})

	resp := h.do(t, uploadRequest(t, testPropertyID, "bedroom", "front.png", pngBytes), auth.RoleAdmin)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header().Get("Content-Type"))
	assertErrorEnvelope(t, resp, "internal_error")

	require.Len(t, backend.deletes, 1)
	assert.True(t, strings.HasPrefix(backend.deletes[0], "properties/"+testPropertyID+"/"))
	assert.True(t, strings.HasSuffix(backend.deletes[0], "_front.png"))
}
