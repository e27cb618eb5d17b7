package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hwachang/gonggo/internal/backend"
	"github.com/hwachang/gonggo/internal/classify"
	"github.com/hwachang/gonggo/internal/config"
	"github.com/hwachang/gonggo/internal/reconstruct"
	"github.com/hwachang/gonggo/internal/tables"
)

// Orchestrator manages the document reconstruction pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	extractor *backend.Extractor
	opts      reconstruct.Options
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline; Start launches its workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	classifyCfg := classify.DefaultConfig()
	classifyCfg.KoreanOrdinalLevel = cfg.KoreanOrdinalLevel

	tableCfg := tables.DefaultConfig()
	tableCfg.MinConfidence = cfg.MinTableConfidence
	tableCfg.OverlapRatio = cfg.TableOverlapRatio
	tableCfg.MarginTolerance = cfg.PageMarginPts

	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		extractor: backend.New(log),
		opts: reconstruct.Options{
			Classifier:  classifyCfg,
			Reconciler:  tableCfg,
			PageWorkers: cfg.PageWorkers,
		},
		log: log,
		cfg: cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.extractor, o.opts, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// NewJob registers a queued job for an uploaded file.
func (o *Orchestrator) NewJob(filename string, data []byte) *Job {
	now := time.Now()
	job := &Job{
		ID:          newJobID(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	job.SetFileData(data)
	return job
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
