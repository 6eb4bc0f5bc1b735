package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"segmark/internal/config"
	"segmark/internal/kb"
	"segmark/internal/ocr"
	"segmark/internal/splitter"
)

// Orchestrator manages the document ingestion pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	kbc   *kb.Client
	ocrc  *ocr.Client
	split *splitter.Pipeline
	log   *slog.Logger
	cfg   config.Config

	datasetID string

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewOrchestrator creates the pipeline. Start must be called before
// submitting jobs.
func NewOrchestrator(cfg config.Config, kbc *kb.Client, ocrc *ocr.Client, split *splitter.Pipeline, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		kbc:   kbc,
		ocrc:  ocrc,
		split: split,
		log:   log,
		cfg:   cfg,
	}
}

// Start resolves the target dataset and launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) error {
	datasetID, err := o.kbc.ResolveDataset(ctx, o.cfg.KBDatasetName)
	if err != nil {
		return fmt.Errorf("resolve dataset: %w", err)
	}
	o.datasetID = datasetID
	o.log.Info("resolved dataset", "name", o.cfg.KBDatasetName, "id", datasetID)

	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	rule := kb.ProcessRule{
		Separator: o.split.Config().SplitMarker,
		MaxTokens: o.cfg.KBMaxTokens,
	}

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.kbc, o.ocrc, o.split, o.log, datasetID, rule,
				o.cfg.KBPollEvery, o.cfg.OCRPollEvery, o.cfg.PDFFallbackPdftotext)
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

	return nil
}

// Stop gracefully shuts down the pipeline. Safe to call more than once.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit queues a new job for processing. The mutex keeps the send ordered
// against Stop closing the queue.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		job.SetStatus(StatusFailed, "shutdown")
		return fmt.Errorf("pipeline is shutting down")
	}
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

// DatasetID returns the resolved knowledge base dataset.
func (o *Orchestrator) DatasetID() string {
	return o.datasetID
}

// KBClient returns the knowledge base client for direct use by API handlers.
func (o *Orchestrator) KBClient() *kb.Client {
	return o.kbc
}

// Splitter returns the shared split pipeline for synchronous previews.
func (o *Orchestrator) Splitter() *splitter.Pipeline {
	return o.split
}
