package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/langtools/langcodes/internal/config"
	"github.com/langtools/langcodes/internal/detect"
	"github.com/langtools/langcodes/internal/langdata"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Detect.TablePath = filepath.Join(t.TempDir(), "cld_codes.json")

	table := langdata.New(map[string]string{
		"en": "English",
		"fr": "French",
		"ru": "Russian",
	})

	return NewServer(table, detect.New(), nil, cfg)
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleUsage(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "language-detector") {
		t.Errorf("usage body missing service id: %s", rec.Body.String())
	}
}

func TestHandleDetect(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/", `{"request":[{"text":"the cat and the dog were in the house and it was not empty"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Response []struct {
			Code string `json:"iso6391code"`
			Name string `json:"name"`
		} `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Response) != 1 {
		t.Fatalf("response entries = %d, want 1", len(resp.Response))
	}
	if resp.Response[0].Code != "en" || resp.Response[0].Name != "English" {
		t.Errorf("detect = %+v, want en/English", resp.Response[0])
	}
}

func TestHandleDetect_UnknownCode(t *testing.T) {
	s := newTestServer(t)

	// German is detectable but absent from the test table.
	rec := postJSON(t, s, "/", `{"request":[{"text":"der hund ist nicht mit der katze und sie werden zu den anderen gehen"}]}`)
	if rec.Code != http.StatusNonAuthoritativeInfo {
		t.Fatalf("status = %d, want 203; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Unknown") {
		t.Errorf("body missing Unknown name: %s", rec.Body.String())
	}
}

func TestHandleDetect_MissingText(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/", `{"request":[{"not_text":"x"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Missing text key") {
		t.Errorf("body missing error entry: %s", rec.Body.String())
	}
}

func TestHandleDetect_BadContentType(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"request":[]}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDetect_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/", `{"request": not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleGetLanguage(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/languages/fr", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "French") {
		t.Errorf("body = %s, want French", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/languages/xx", nil)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleListLanguages(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Total     int               `json:"total"`
		Languages map[string]string `json:"languages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Total != 3 || resp.Languages["en"] != "English" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleRebuildTable(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/table/rebuild", "Spanish, es, extra\nItalian, it, extra\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	// The served table is swapped...
	if name, ok := s.Table().Lookup("es"); !ok || name != "Spanish" {
		t.Errorf("Lookup(es) = %q, %v after rebuild", name, ok)
	}
	if _, ok := s.Table().Lookup("en"); ok {
		t.Error("old table still served after rebuild")
	}

	// ...and the new table is persisted.
	data, err := os.ReadFile(s.cfg.Detect.TablePath)
	if err != nil {
		t.Fatalf("rebuilt table not persisted: %v", err)
	}
	want := "{\n    \"es\": \"Spanish\",\n    \"it\": \"Italian\"\n}"
	if string(data) != want {
		t.Errorf("persisted table = %q, want %q", data, want)
	}
}

func TestHandleRebuildTable_Conflict(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/table/rebuild", "English, en, x\nEnglisch, en, x\n")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Overlaps []struct {
			Code  string   `json:"code"`
			Names []string `json:"names"`
		} `json:"overlaps"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp.Overlaps) != 1 || resp.Overlaps[0].Code != "en" {
		t.Errorf("overlaps = %+v", resp.Overlaps)
	}

	// Nothing persisted, table untouched.
	if _, err := os.Stat(s.cfg.Detect.TablePath); !os.IsNotExist(err) {
		t.Error("table file written despite conflicts")
	}
	if name, _ := s.Table().Lookup("en"); name != "English" {
		t.Errorf("served table changed on conflict: en = %q", name)
	}
}

func TestHandleRebuildTable_TooLarge(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Detect.RebuildLimit = 16

	rec := postJSON(t, s, "/api/table/rebuild", "Spanish, es, extra\nItalian, it, extra\n")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413; body: %s", rec.Code, rec.Body.String())
	}

	// An oversized listing must not commit a truncated table.
	if _, err := os.Stat(s.cfg.Detect.TablePath); !os.IsNotExist(err) {
		t.Error("table file written despite oversized listing")
	}
	if name, _ := s.Table().Lookup("en"); name != "English" {
		t.Errorf("served table changed on oversized listing: en = %q", name)
	}
	if _, ok := s.Table().Lookup("es"); ok {
		t.Error("partial table served after oversized listing")
	}
}

func TestHandleAuditLog_Disabled(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/audit-log", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"languages":3`) {
		t.Errorf("body = %s, want languages count", rec.Body.String())
	}
}

func TestHandleNotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not found") {
		t.Errorf("body = %s, want Not found", rec.Body.String())
	}
}
