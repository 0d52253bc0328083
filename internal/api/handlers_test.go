package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/karlhorky/outliner/internal/config"
	"github.com/karlhorky/outliner/internal/outline"
	"github.com/karlhorky/outliner/internal/pipeline"
)

const testAPIKey = "test-key"

func newTestServer() *Server {
	cfg := config.Config{
		Port:                 "0",
		APIKey:               testAPIKey,
		WorkerCount:          1,
		MaxQueueSize:         10,
		MaxConcurrentExtract: 2,
		MaxUploadBytes:       1 << 20,
		DefaultTopLevel:      2,
		DefaultPolicy:        outline.PolicyNearestAncestor,
		DefaultMaxLevel:      6,
		DefaultNormalize:     true,
		JobTTL:               time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, log)
	return NewServer(orch, log, cfg)
}

// uploadRequest builds an authenticated multipart request with one file
// under the given field name plus optional form fields.
func uploadRequest(t *testing.T, path, field, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func TestHealth_Public(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_Required(t *testing.T) {
	s := newTestServer()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/outline/jobs", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/outline/jobs", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestOutline_JSON(t *testing.T) {
	s := newTestServer()
	req := uploadRequest(t, "/api/outline", "file", "guide.md", "## Install\n\n### Deps\n", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		DocID    string          `json:"doc_id"`
		Filename string          `json:"filename"`
		Headings int             `json:"headings"`
		Outline  []*outline.Node `json:"outline"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Filename != "guide.md" {
		t.Errorf("expected filename guide.md, got %q", body.Filename)
	}
	if body.Headings != 2 {
		t.Errorf("expected 2 headings, got %d", body.Headings)
	}
	if len(body.Outline) != 1 || body.Outline[0].ID != "install" {
		t.Fatalf("expected install root, got %+v", body.Outline)
	}
	if len(body.Outline[0].Children) != 1 || body.Outline[0].Children[0].ID != "deps" {
		t.Errorf("expected deps nested under install, got %+v", body.Outline[0].Children)
	}
}

func TestOutline_MarkdownFormat(t *testing.T) {
	s := newTestServer()
	req := uploadRequest(t, "/api/outline", "file", "guide.md", "## A\n\n### B\n",
		map[string]string{"format": "markdown"})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("expected markdown content type, got %q", ct)
	}
	want := "- [A](#a)\n  - [B](#b)\n"
	if rec.Body.String() != want {
		t.Errorf("expected body %q, got %q", want, rec.Body.String())
	}
}

func TestOutline_UnsupportedType(t *testing.T) {
	s := newTestServer()
	req := uploadRequest(t, "/api/outline", "file", "data.csv", "a,b\n", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestOutline_StrictPolicyError(t *testing.T) {
	s := newTestServer()
	req := uploadRequest(t, "/api/outline", "file", "doc.md", "## A\n\n#### Deep\n",
		map[string]string{"policy": "strict"})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "no parent heading") {
		t.Errorf("expected parent error, got %v", body["error"])
	}
}

func TestOutline_InvalidOptions(t *testing.T) {
	s := newTestServer()
	for field, value := range map[string]string{
		"top_level": "9",
		"policy":    "sideways",
		"normalize": "maybe",
		"max_level": "0",
		"format":    "yaml",
	} {
		req := uploadRequest(t, "/api/outline", "file", "doc.md", "## A\n",
			map[string]string{field: value})
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s=%s: expected 400, got %d", field, value, rec.Code)
		}
	}
}

func TestBatchAndJobs(t *testing.T) {
	s := newTestServer()

	req := uploadRequest(t, "/api/outline/batch", "files", "a.md", "## One\n", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if accepted.JobID == "" {
		t.Fatal("expected a job id")
	}

	// Workers are not started in this test; the job stays queued.
	statusReq := httptest.NewRequest(http.MethodGet, accepted.PollURL, nil)
	statusReq.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, statusReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from poll url, got %d", rec.Code)
	}
	var snap pipeline.JobSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != pipeline.StatusQueued {
		t.Errorf("expected queued job, got %s", snap.Status)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/outline/jobs", nil)
	listReq.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, listReq)
	var list struct {
		Jobs []pipeline.JobSnapshot `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].ID != accepted.JobID {
		t.Errorf("expected the submitted job listed, got %+v", list.Jobs)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/api/outline/jobs/"+accepted.JobID, nil)
	delReq.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, delReq)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from delete, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, statusReq)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestJobStatus_NotFound(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/outline/jobs/nope", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	s := newTestServer()

	// One sync extraction feeds the stats.
	req := uploadRequest(t, "/api/outline", "file", "doc.md", "## A\n", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	statsReq := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	statsReq.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, statsReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Extraction pipeline.StatsSnapshot `json:"extraction"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if body.Extraction.TotalDocs != 1 {
		t.Errorf("expected 1 doc recorded, got %d", body.Extraction.TotalDocs)
	}
}
