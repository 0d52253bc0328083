package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/karlhorky/outliner/internal/discover"
	"github.com/karlhorky/outliner/internal/outline"
	"github.com/karlhorky/outliner/internal/pipeline"
	"github.com/karlhorky/outliner/internal/render"
)

// handleOutline extracts an outline from a single uploaded file
// synchronously.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !discover.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	opts, err := s.optionsFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := r.FormValue("format")
	switch format {
	case "", "json", "flat", "markdown", "html":
	default:
		jsonError(w, fmt.Sprintf("unknown format: %s", format), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res := pipeline.ExtractOutline(opts, filename, data)
	s.orchestrator.Stats().Record(time.Since(start), res.Headings)

	if res.Error != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"doc_id":   res.DocID,
			"filename": res.Filename,
			"error":    res.Error,
		})
		return
	}

	if res.Skipped {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"doc_id":   res.DocID,
			"filename": res.Filename,
			"title":    res.Title,
			"skipped":  true,
		})
		return
	}

	switch format {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, render.Markdown(res.Outline))
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, render.HTML(res.Outline))
	case "flat":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"doc_id":   res.DocID,
			"filename": res.Filename,
			"title":    res.Title,
			"headings": res.Headings,
			"entries":  res.Entries,
		})
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"doc_id":   res.DocID,
			"filename": res.Filename,
			"title":    res.Title,
			"headings": res.Headings,
			"outline":  res.Outline,
		})
	}
}

// handleBatchOutline queues a multi-file extraction job.
func (s *Server) handleBatchOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	opts, err := s.optionsFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Read everything up front; unsupported extensions are left in so the
	// job reports them per file.
	inputs := make([]pipeline.FileInput, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)

		f, err := fh.Open()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to open %s", filename), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to read %s", filename), http.StatusBadRequest)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		inputs = append(inputs, pipeline.FileInput{Filename: filename, Data: data})
	}

	job := pipeline.NewJob(opts)
	job.SetInputs(inputs)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"files":    len(inputs),
		"poll_url": fmt.Sprintf("/api/outline/jobs/%s", job.ID),
	})
}

// optionsFromForm merges form overrides onto the configured defaults.
func (s *Server) optionsFromForm(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		TopLevel:  s.cfg.DefaultTopLevel,
		Policy:    s.cfg.DefaultPolicy,
		Normalize: s.cfg.DefaultNormalize,
		MaxLevel:  s.cfg.DefaultMaxLevel,
	}

	if v := r.FormValue("top_level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 6 {
			return opts, fmt.Errorf("top_level must be an integer between 1 and 6")
		}
		opts.TopLevel = n
	}
	if v := r.FormValue("policy"); v != "" {
		p := outline.Policy(v)
		if !p.Valid() {
			return opts, fmt.Errorf("policy must be %q or %q",
				outline.PolicyNearestAncestor, outline.PolicyStrictParent)
		}
		opts.Policy = p
	}
	if v := r.FormValue("normalize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("normalize must be a boolean")
		}
		opts.Normalize = b
	}
	if v := r.FormValue("max_level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 6 {
			return opts, fmt.Errorf("max_level must be an integer between 1 and 6")
		}
		opts.MaxLevel = n
	}
	return opts, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
