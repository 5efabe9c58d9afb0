package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/emtools/mrcio/pkg/mrc"
	"github.com/emtools/mrcio/pkg/volume"
)

func newTestEcho(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	dir := t.TempDir()
	server := NewServer(dir, nil)
	e := echo.New()
	server.Register(e)
	return e, dir
}

func writeTestVolume(t *testing.T, dir, name string, nx, ny, nz int) {
	t.Helper()
	arr, err := volume.New(volume.DTypeF32, nx, ny, nz)
	if err != nil {
		t.Fatalf("new array: %v", err)
	}
	for i, raw := 0, arr.Bytes(); i < len(raw); i++ {
		raw[i] = byte(i)
	}
	if err := mrc.WriteKind(arr, filepath.Join(dir, name), mrc.KindVolume); err != nil {
		t.Fatalf("write volume: %v", err)
	}
}

func doRequest(t *testing.T, e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListVolumes(t *testing.T) {
	t.Parallel()

	e, dir := newTestEcho(t)
	writeTestVolume(t, dir, "a.mrc", 2, 2, 2)
	writeTestVolume(t, dir, "b.mrc", 2, 2, 2)

	rec := doRequest(t, e, http.MethodGet, "/v1/volumes")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Volumes []string `json:"volumes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(out.Volumes) != 2 {
		t.Fatalf("expected 2 volumes, got %v", out.Volumes)
	}
}

func TestGetHeader(t *testing.T) {
	t.Parallel()

	e, dir := newTestEcho(t)
	writeTestVolume(t, dir, "vol.mrc", 3, 4, 2)

	rec := doRequest(t, e, http.MethodGet, "/v1/volumes/vol.mrc")
	if rec.Code != http.StatusOK {
		t.Fatalf("header status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var dto HeaderDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if dto.Nx != 3 || dto.Ny != 4 || dto.Nz != 2 {
		t.Fatalf("dims: %+v", dto)
	}
	if dto.Mode != 2 {
		t.Fatalf("mode: got %d want 2", dto.Mode)
	}
	if dto.Dim != "volume" {
		t.Fatalf("dim: got %q", dto.Dim)
	}
}

func TestGetHeaderMissingFile(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doRequest(t, e, http.MethodGet, "/v1/volumes/missing.mrc")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetHeaderRejectsTraversal(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	rec := doRequest(t, e, http.MethodGet, "/v1/volumes/..%2Fetc%2Fpasswd")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetSlicePNG(t *testing.T) {
	t.Parallel()

	e, dir := newTestEcho(t)
	writeTestVolume(t, dir, "vol.mrc", 4, 4, 3)

	rec := doRequest(t, e, http.MethodGet, "/v1/volumes/vol.mrc/slices/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("slice status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Fatalf("content type: got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("body is not a PNG")
	}

	rec = doRequest(t, e, http.MethodGet, "/v1/volumes/vol.mrc/slices/9")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range slice: got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, e, http.MethodGet, "/v1/volumes/vol.mrc/slices/zero")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric slice: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUploadLifecycle(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t)
	srcDir := t.TempDir()
	writeTestVolume(t, srcDir, "up.mrc", 2, 2, 2)

	rec := uploadFile(t, e, filepath.Join(srcDir, "up.mrc"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if out.ID == "" || !strings.HasSuffix(out.Name, "_up.mrc") {
		t.Fatalf("unexpected upload response: %+v", out)
	}

	rec = doRequest(t, e, http.MethodGet, "/v1/volumes/"+out.Name)
	if rec.Code != http.StatusOK {
		t.Fatalf("header after upload: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUploadRejectsJunk(t *testing.T) {
	t.Parallel()

	e, dir := newTestEcho(t)
	junk := filepath.Join(t.TempDir(), "junk.mrc")
	if err := os.WriteFile(junk, []byte("not an mrc file"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	rec := uploadFile(t, e, junk)
	if rec.Code == http.StatusCreated {
		t.Fatalf("junk upload should fail, got %d", rec.Code)
	}
	// The rejected file must not linger in the data directory.
	after := doRequest(t, e, http.MethodGet, "/v1/volumes")
	if strings.Contains(after.Body.String(), "junk.mrc") {
		t.Fatalf("rejected upload left behind in %s: %s", dir, after.Body.String())
	}
}

func uploadFile(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/volumes", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
