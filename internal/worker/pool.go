// Package worker measures the energy of track previews in the background.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ewilliams-labs/moodweather/internal/core/ports"
)

// DefaultJobTimeout bounds a single preview download and decode.
const DefaultJobTimeout = 20 * time.Second

// Job asks for the preview of a stored report to be analyzed.
type Job struct {
	ReportID   string
	PreviewURL string
}

// Pool manages background workers for preview analysis.
type Pool struct {
	repo       ports.MoodRepository
	jobs       chan Job
	workers    int
	jobTimeout time.Duration
	wg         sync.WaitGroup

	// mu guards stopped so Submit never sends on a closed queue.
	mu      sync.RWMutex
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

var _ ports.AnalysisQueue = (*Pool)(nil)

// NewPool creates a worker pool with the given worker count and queue size.
func NewPool(repo ports.MoodRepository, workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		repo:       repo,
		jobs:       make(chan Job, queueSize),
		workers:    workers,
		jobTimeout: DefaultJobTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight jobs. Jobs still running
// when ctx expires are cancelled.
func (p *Pool) Stop(ctx context.Context) {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.cancel()
		<-done
	}
	p.cancel()
}

// Submit queues a job without blocking. Full queues drop the job.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		log.Warn().Str("report_id", job.ReportID).Msg("worker: pool stopped, dropping job")
		return false
	}

	select {
	case p.jobs <- job:
		return true
	default:
		log.Warn().Str("report_id", job.ReportID).Msg("worker: queue full, dropping job")
		return false
	}
}

// Enqueue implements ports.AnalysisQueue.
func (p *Pool) Enqueue(reportID string, previewURL string) {
	p.Submit(Job{ReportID: reportID, PreviewURL: previewURL})
}

func (p *Pool) processJob(job Job) {
	if job.PreviewURL == "" {
		log.Debug().Str("report_id", job.ReportID).Msg("worker: no preview URL, skipping analysis")
		return
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.jobTimeout)
	defer cancel()

	energy, err := AnalyzePreviewFunc(ctx, job.PreviewURL)
	if err != nil {
		log.Warn().Err(err).Str("report_id", job.ReportID).Msg("worker: preview analysis failed")
		return
	}
	if err := p.repo.UpdateEnergy(ctx, job.ReportID, energy); err != nil {
		log.Warn().Err(err).Str("report_id", job.ReportID).Msg("worker: failed to store energy")
		return
	}
	log.Info().Str("report_id", job.ReportID).Float64("energy", energy).Msg("worker: preview analyzed")
}
