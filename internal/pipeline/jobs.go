package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karlhorky/outliner/internal/outline"
)

// JobStatus represents the state of an extraction job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Options control how outlines are built for every file in a job.
type Options struct {
	TopLevel  int            `json:"top_level"`
	Policy    outline.Policy `json:"policy"`
	Normalize bool           `json:"normalize"`
	MaxLevel  int            `json:"max_level"`
}

// FileInput is one uploaded file awaiting extraction.
type FileInput struct {
	Filename string
	Data     []byte
}

// DocResult is the outcome of extracting one file.
type DocResult struct {
	DocID    string          `json:"doc_id"`
	Filename string          `json:"filename"`
	Title    string          `json:"title,omitempty"`
	Headings int             `json:"headings"`
	Outline  []*outline.Node `json:"outline,omitempty"`
	Entries  []outline.Entry `json:"entries,omitempty"`
	Skipped  bool            `json:"skipped,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Job tracks the state of a batch extraction.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Options  Options  `json:"options"`
	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	inputs  []FileInput
	results []DocResult
	errors  []string
}

// Progress tracks per-file processing progress.
type Progress struct {
	TotalFiles     int      `json:"total_files"`
	FilesProcessed int      `json:"files_processed"`
	HeadingsFound  int      `json:"headings_found"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued job with a fresh id.
func NewJob(opts Options) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Options:   opts,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrFilesProcessed atomically increments the processed-file count.
func (j *Job) IncrFilesProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesProcessed++
	j.UpdatedAt = time.Now()
}

// AddHeadings adds to the running heading count.
func (j *Job) AddHeadings(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.HeadingsFound += n
	j.UpdatedAt = time.Now()
}

// SetTotalFiles records the file count for progress reporting.
func (j *Job) SetTotalFiles(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalFiles = n
	j.UpdatedAt = time.Now()
}

// SetInputs attaches the uploaded files awaiting extraction.
func (j *Job) SetInputs(inputs []FileInput) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inputs = inputs
}

// Inputs returns the uploaded files.
func (j *Job) Inputs() []FileInput {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputs
}

// AddResult records a finished per-file result.
func (j *Job) AddResult(res DocResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, res)
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string      `json:"job_id"`
	Status    JobStatus   `json:"status"`
	Phase     string      `json:"phase"`
	Options   Options     `json:"options"`
	Progress  Progress    `json:"progress"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Results   []DocResult `json:"results,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state. Results are included
// once extraction has finished.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}

	snap := JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Options:   j.Options,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Progress: Progress{
			TotalFiles:     j.Progress.TotalFiles,
			FilesProcessed: j.Progress.FilesProcessed,
			HeadingsFound:  j.Progress.HeadingsFound,
			Errors:         errs,
		},
	}

	switch j.Status {
	case StatusCompleted, StatusFailed, StatusPartial:
		snap.Results = append([]DocResult(nil), j.results...)
	}
	return snap
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// List returns all live jobs, newest first.
func (s *JobStore) List() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// Delete evicts a job. It reports whether the job existed.
func (s *JobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	return true
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// DocIDFor derives a stable document id from file content.
func DocIDFor(data []byte) string {
	return ContentHashHex(data)[:16]
}
