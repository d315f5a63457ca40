package handlers

import (
	"bytes"
	"encoding/json"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmitchellscott/halftone/internal/bitmap"
	"github.com/rmitchellscott/halftone/internal/database"
	"github.com/rmitchellscott/halftone/internal/middleware"
	"github.com/rmitchellscott/halftone/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupHandler(t *testing.T) (*Handler, *gin.Engine) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(&database.Config{Type: "sqlite", DataDir: dir})
	if err != nil {
		t.Fatalf("database.Open failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	h := New(db, storage.NewOutputStore(storage.NewFilesystemBackend(dir)), nil, 2)
	r := gin.New()
	h.Register(r)
	return h, r
}

func grayBitmap(t *testing.T, width, height int, level uint8) []byte {
	t.Helper()
	g := bitmap.NewGrid(width, height)
	g.Fill(bitmap.Pixel{R: level, G: level, B: level})
	var buf bytes.Buffer
	if err := bitmap.Write(&buf, bitmap.NewImage(g)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return buf.Bytes()
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCatalogRoutes(t *testing.T) {
	_, r := setupHandler(t)

	tests := []struct {
		path     string
		contains string
	}{
		{"/health", `"ok"`},
		{"/api/version", `"version"`},
		{"/api/modes", `"x-bayer16"`},
		{"/api/modes", `"sierra_lite"`},
		{"/api/palettes", `"#ff00ff"`},
		{"/api/presets", `"eink"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(r, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if !bytes.Contains(w.Body.Bytes(), []byte(tt.contains)) {
				t.Errorf("Expected body to contain %s, got %s", tt.contains, w.Body.String())
			}
		})
	}
}

func TestDitherAndFetchJob(t *testing.T) {
	_, r := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/dither?mode=floyd&palette=bw", bytes.NewReader(grayBitmap(t, 3, 2, 100)))
	req.Header.Set("Content-Type", "image/bmp")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/bmp" {
		t.Errorf("Expected image/bmp, got %q", ct)
	}
	jobID := w.Header().Get("X-Job-ID")
	if jobID == "" {
		t.Fatal("Expected X-Job-ID header")
	}
	result := w.Body.Bytes()

	img, err := bitmap.Read(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("Response is not a bitmap: %v", err)
	}
	B, W := bitmap.Black, bitmap.White
	want := [][]bitmap.Pixel{{B, W, B}, {B, B, W}}
	for y, row := range want {
		for x, p := range row {
			if got := img.Grid.At(x, y); got != p {
				t.Errorf("(%d,%d): expected %v, got %v", x, y, p, got)
			}
		}
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for job, got %d", w.Code)
	}
	var job database.DitherJob
	if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
		t.Fatalf("Failed to decode job: %v", err)
	}
	if job.Status != database.JobSucceeded || job.Width != 3 || job.Height != 2 || job.Mode != "floyd" {
		t.Errorf("Unexpected job: %+v", job)
	}
	if hex := job.PaletteHex(); len(hex) != 2 {
		t.Errorf("Expected two palette colors, got %v", hex)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID+"/image", nil))
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), result) {
		t.Errorf("Expected stored image to match response, got %d", w.Code)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID+"/image?format=png", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for png, got %d", w.Code)
	}
	if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("Expected valid PNG: %v", err)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/jobs?status=succeeded", nil))
	if !bytes.Contains(w.Body.Bytes(), []byte(`"total":1`)) {
		t.Errorf("Expected one succeeded job, got %s", w.Body.String())
	}
}

func TestDitherMultipart(t *testing.T) {
	_, r := setupHandler(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "in.bmp")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write(grayBitmap(t, 8, 8, 200))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/dither?preset=newspaper", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := bitmap.Read(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("Response is not a bitmap: %v", err)
	}
}

func TestDitherErrors(t *testing.T) {
	h, r := setupHandler(t)
	h.MaxUploadBytes = 1024

	valid := grayBitmap(t, 2, 2, 50)
	tests := []struct {
		name      string
		query     string
		body      []byte
		wantCode  int
		wantJobID bool
	}{
		{"missing mode", "", valid, http.StatusBadRequest, false},
		{"unknown mode", "?mode=wobble", valid, http.StatusBadRequest, false},
		{"unknown preset", "?preset=nope", valid, http.StatusBadRequest, false},
		{"reducer with color palette", "?mode=floyd&palette=rgb&reducer=luma", valid, http.StatusBadRequest, false},
		{"reducer with extended mode", "?mode=x-sierra3&reducer=luma", valid, http.StatusBadRequest, false},
		{"not a bitmap", "?mode=floyd", []byte("GIF89a"), http.StatusUnprocessableEntity, true},
		{"too large", "?mode=floyd", grayBitmap(t, 32, 32, 50), http.StatusRequestEntityTooLarge, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/api/dither"+tt.query, bytes.NewReader(tt.body)))
			if w.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if got := w.Header().Get("X-Job-ID") != ""; got != tt.wantJobID {
				t.Errorf("Expected X-Job-ID present=%v", tt.wantJobID)
			}
		})
	}

	_, total, err := h.Jobs.List(database.ListOptions{Status: database.JobFailed})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected exactly one failed job recorded, got %d", total)
	}
}

func TestJobLookupErrors(t *testing.T) {
	_, r := setupHandler(t)

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/api/jobs/not-a-uuid", http.StatusBadRequest},
		{"/api/jobs/00000000-0000-0000-0000-000000000001", http.StatusNotFound},
		{"/api/jobs/00000000-0000-0000-0000-000000000001/image", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if w := serve(r, httptest.NewRequest(http.MethodGet, tt.path, nil)); w.Code != tt.wantCode {
				t.Errorf("Expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestProtectedRoutes(t *testing.T) {
	h, _ := setupHandler(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword failed: %v", err)
	}
	r := gin.New()
	h.Register(r, middleware.NewAPIKeyAuth(string(hash)).Required())

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/api/modes", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected catalog to stay open, got %d", w.Code)
	}
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/api/jobs", nil)); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("X-API-Key", "key")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with key, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"total_jobs":0`)) {
		t.Errorf("Unexpected stats body: %s", w.Body.String())
	}
}
