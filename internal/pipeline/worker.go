package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/karlhorky/outliner/internal/discover"
	"github.com/karlhorky/outliner/internal/outline"
)

// Worker processes a single extraction job.
type Worker struct {
	log   *slog.Logger
	stats *ExtractStats

	maxConcurrent int
}

func NewWorker(log *slog.Logger, stats *ExtractStats, maxConcurrent int) *Worker {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Worker{
		log:           log,
		stats:         stats,
		maxConcurrent: maxConcurrent,
	}
}

// Process extracts outlines for every file in the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	inputs := job.Inputs()
	job.SetTotalFiles(len(inputs))
	job.SetStatus(StatusExtracting, "extracting")

	if len(inputs) == 0 {
		job.AddError("no files to process")
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Extract files with bounded concurrency; results keep input order.
	type fileResult struct {
		res DocResult
		idx int
	}
	results := make(chan fileResult, len(inputs))
	sem := make(chan struct{}, w.maxConcurrent)

	for i, input := range inputs {
		sem <- struct{}{}
		go func(i int, input FileInput) {
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results <- fileResult{
					res: DocResult{
						DocID:    DocIDFor(input.Data),
						Filename: input.Filename,
						Error:    err.Error(),
					},
					idx: i,
				}
				return
			}

			start := time.Now()
			res := ExtractOutline(job.Options, input.Filename, input.Data)
			w.stats.Record(time.Since(start), res.Headings)
			results <- fileResult{res: res, idx: i}
		}(i, input)
	}

	ordered := make([]DocResult, len(inputs))
	succeeded := 0
	failed := 0
	for range inputs {
		r := <-results
		ordered[r.idx] = r.res
		job.IncrFilesProcessed()
		if r.res.Error != "" {
			failed++
			log.Error("extraction failed", "filename", r.res.Filename, "error", r.res.Error)
			job.AddError(fmt.Sprintf("%s: %s", r.res.Filename, r.res.Error))
			continue
		}
		succeeded++
		job.AddHeadings(r.res.Headings)
	}

	for _, res := range ordered {
		job.AddResult(res)
	}

	log.Info("extraction complete", "files", len(inputs), "succeeded", succeeded, "failed", failed)

	switch {
	case succeeded == 0:
		job.SetStatus(StatusFailed, "done")
	case failed > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

// ExtractOutline runs the full per-file extraction: discover headings, apply
// frontmatter and job options, then build the outline tree. Errors are
// reported in the result rather than returned; a batch keeps going when one
// file is bad.
func ExtractOutline(opts Options, filename string, data []byte) DocResult {
	res := DocResult{
		DocID:    DocIDFor(data),
		Filename: filename,
	}

	src, err := discover.ForFile(filename)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	doc, err := src.Extract(bytes.NewReader(data), filename)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Title = doc.Title

	if !doc.Meta.Enabled() {
		res.Skipped = true
		return res
	}

	events := doc.Events
	if opts.Normalize {
		events = discover.Normalize(events, opts.TopLevel)
	}

	// The per-document cap can only tighten the job-wide one.
	maxLevel := opts.MaxLevel
	if doc.Meta.TOCMaxLevel > 0 && (maxLevel <= 0 || doc.Meta.TOCMaxLevel < maxLevel) {
		maxLevel = doc.Meta.TOCMaxLevel
	}
	events = discover.FilterMaxLevel(events, maxLevel)

	b := outline.NewBuilder(outline.Config{
		TopLevel: opts.TopLevel,
		Policy:   opts.Policy,
	})
	for _, ev := range events {
		if err := b.Insert(ev); err != nil {
			res.Error = err.Error()
			return res
		}
	}

	res.Outline = b.Outline()
	res.Entries = outline.Flatten(res.Outline)
	res.Headings = b.Len()
	return res
}
