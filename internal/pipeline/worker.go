package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hwachang/gonggo/internal/backend"
	"github.com/hwachang/gonggo/internal/docmodel"
	"github.com/hwachang/gonggo/internal/reconstruct"
)

// Worker processes a single reconstruction job.
type Worker struct {
	extractor *backend.Extractor
	opts      reconstruct.Options
	log       *slog.Logger
}

func NewWorker(extractor *backend.Extractor, opts reconstruct.Options, log *slog.Logger) *Worker {
	return &Worker{
		extractor: extractor,
		opts:      opts,
		log:       log,
	}
}

// Process runs extraction and reconstruction for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	// Phase 1: extract page primitives. The PDF reader wants a path, so
	// the upload is staged to a temp file for the duration.
	job.SetStatus(StatusExtracting, "extracting")
	path, cleanup, err := stageFile(job)
	if err != nil {
		log.Error("stage upload failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	defer cleanup()

	pages, err := w.extractor.Extract(path)
	if err != nil {
		log.Error("extract failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetTotalPages(len(pages))
	log.Info("extracted pages", "pages", len(pages))

	// Phase 2: reconstruct the section tree.
	job.SetStatus(StatusReconstructing, "reconstructing")
	doc, diags, err := reconstruct.Reconstruct(job.Filename, pages, w.opts)
	if err != nil {
		var sErr *docmodel.StructuralError
		switch {
		case errors.Is(err, docmodel.ErrEmptyPageSet):
			log.Error("document has no pages")
		case errors.As(err, &sErr):
			log.Error("structural violation", "page", sErr.Page, "detail", sErr.Detail)
		default:
			log.Error("reconstruct failed", "error", err)
		}
		job.AddError(fmt.Sprintf("reconstruct: %s", err))
		job.SetStatus(StatusFailed, "reconstructing")
		return
	}

	for _, d := range diags {
		log.Warn("reconstruction diagnostic", "kind", d.Kind, "page", d.Page, "detail", d.Detail)
	}

	job.SetResult(doc, diags)
	if len(diags) > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("reconstruction complete",
		"sections", doc.Metadata["total_sections"],
		"tables", doc.Metadata["total_tables"],
		"diagnostics", len(diags))
}

// stageFile writes the uploaded bytes to a temp file and returns its
// path with a cleanup func.
func stageFile(job *Job) (string, func(), error) {
	f, err := os.CreateTemp("", "gonggo-*"+filepath.Ext(job.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(job.FileData()); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}
