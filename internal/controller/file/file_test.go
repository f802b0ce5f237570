package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Jogatev/chebeneleven-sub000/internal/middleware"
	"github.com/Jogatev/chebeneleven-sub000/internal/upload"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func newRouter(t *testing.T, store upload.ResumeStore, maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	fc := NewFileController(store, zaptest.NewLogger(t))
	r := gin.New()
	r.POST("/upload-resume", middleware.SizeLimit(maxBytes), fc.UploadResume)
	r.GET("/uploads/*filepath", fc.ServeUpload)
	return r
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-resume", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadResume_storesAndServes(t *testing.T) {
	store, err := upload.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	r := newRouter(t, store, 1<<20)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, "resume", "my-cv.pdf", samplePDF))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp FilePathResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^/uploads/resumes/[0-9a-f-]{36}\.pdf$`, resp.FilePath)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.FilePath, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, samplePDF, rec.Body.Bytes())
}

func TestUploadResume_rejectsWrongType(t *testing.T) {
	store, err := upload.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	r := newRouter(t, store, 1<<20)

	cases := map[string]struct {
		filename string
		content  []byte
	}{
		"extension":   {"cv.exe", samplePDF},
		"disguised":   {"cv.pdf", []byte("#!/bin/sh\necho hi\n")},
		"docx is pdf": {"cv.docx", samplePDF},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, multipartRequest(t, "resume", tc.filename, tc.content))
			assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		})
	}
}

func TestUploadResume_missingField(t *testing.T) {
	store, err := upload.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	r := newRouter(t, store, 1<<20)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, "document", "cv.pdf", samplePDF))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadResume_tooLarge(t *testing.T) {
	store, err := upload.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	r := newRouter(t, store, 1024)

	big := append(append([]byte{}, samplePDF...), bytes.Repeat([]byte("A"), 64*1024)...)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, "resume", "cv.pdf", big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// failingStore refuses every write.
type failingStore struct{}

func (failingStore) Save(context.Context, string, string, io.Reader) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingStore) Open(context.Context, string) (io.ReadCloser, int64, error) {
	return nil, 0, errors.New("bucket unavailable")
}

func TestUploadResume_storageError(t *testing.T) {
	r := newRouter(t, failingStore{}, 1<<20)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, "resume", "cv.pdf", samplePDF))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+upload.NewResumeObjectName(".pdf"), nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServeUpload_notFound(t *testing.T) {
	store, err := upload.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	r := newRouter(t, store, 1<<20)

	for _, p := range []string{
		"/uploads/" + upload.NewResumeObjectName(".pdf"),
		"/uploads/resumes/..%2F..%2Fetc%2Fpasswd",
		"/uploads/notes.txt",
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, p)
		assert.True(t, strings.Contains(rec.Body.String(), "error"), p)
	}
}
