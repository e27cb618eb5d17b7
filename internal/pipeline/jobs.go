package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/hwachang/gonggo/internal/docmodel"
)

// JobStatus represents the state of a reconstruction job.
type JobStatus string

const (
	StatusQueued         JobStatus = "queued"
	StatusExtracting     JobStatus = "extracting"
	StatusReconstructing JobStatus = "reconstructing"
	StatusCompleted      JobStatus = "completed"
	StatusPartial        JobStatus = "partial"
	StatusFailed         JobStatus = "failed"
)

// Job tracks the state of a single document reconstruction.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData    []byte
	result      *docmodel.Document
	diagnostics []docmodel.Diagnostic
	errors      []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalPages  int      `json:"total_pages"`
	Sections    int      `json:"sections"`
	Tables      int      `json:"tables"`
	Diagnostics int      `json:"diagnostics"`
	Errors      []string `json:"errors"`
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

// SetTotalPages records the page count of the source document.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// SetResult stores the reconstructed document and its diagnostics.
func (j *Job) SetResult(doc *docmodel.Document, diags []docmodel.Diagnostic) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = doc
	j.diagnostics = diags
	j.Progress.Sections = doc.Metadata["total_sections"]
	j.Progress.Tables = doc.Metadata["total_tables"]
	j.Progress.Diagnostics = len(diags)
	j.UpdatedAt = time.Now()
}

// Result returns the reconstructed document, or nil while incomplete.
func (j *Job) Result() (*docmodel.Document, []docmodel.Diagnostic) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.diagnostics
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			TotalPages:  j.Progress.TotalPages,
			Sections:    j.Progress.Sections,
			Tables:      j.Progress.Tables,
			Diagnostics: j.Progress.Diagnostics,
			Errors:      errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
