package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/primarycell/assessment/internal/telemetry"
)

// FollowUpRunner processes due waiting-list follow-ups
type FollowUpRunner interface {
	ProcessDue(ctx context.Context) (int, error)
}

// FollowUpProcessorConfig holds configuration for the follow-up processor
type FollowUpProcessorConfig struct {
	Runner   FollowUpRunner
	Interval time.Duration
	// StartDelay is the pause before the first run (default 5s)
	StartDelay time.Duration
	// RunTimeout bounds a single run (default 5m)
	RunTimeout time.Duration
	Metrics    *telemetry.Metrics
	Logger     *slog.Logger
}

// FollowUpProcessor runs scheduled waiting-list follow-ups
type FollowUpProcessor struct {
	runner     FollowUpRunner
	interval   time.Duration
	startDelay time.Duration
	runTimeout time.Duration
	metrics    *telemetry.Metrics
	logger     *slog.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	running    bool
	mu         sync.Mutex
}

// NewFollowUpProcessor creates a new follow-up processor job
func NewFollowUpProcessor(cfg FollowUpProcessorConfig) *FollowUpProcessor {
	p := &FollowUpProcessor{
		runner:     cfg.Runner,
		interval:   cfg.Interval,
		startDelay: cfg.StartDelay,
		runTimeout: cfg.RunTimeout,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		stopCh:     make(chan struct{}),
	}
	if p.interval <= 0 {
		p.interval = time.Hour
	}
	if p.startDelay <= 0 {
		p.startDelay = 5 * time.Second
	}
	if p.runTimeout <= 0 {
		p.runTimeout = 5 * time.Minute
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Start begins the follow-up processor job
func (p *FollowUpProcessor) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	p.logger.Info("follow-up processor started", slog.Duration("interval", p.interval))
}

// Stop gracefully stops the follow-up processor job. A stopped processor
// cannot be restarted.
func (p *FollowUpProcessor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	p.logger.Info("follow-up processor stopped")
}

// run is the main loop
func (p *FollowUpProcessor) run() {
	defer p.wg.Done()

	// Short delay so the store finishes migrating before the first run
	select {
	case <-time.After(p.startDelay):
	case <-p.stopCh:
		return
	}
	p.process()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.process()
		case <-p.stopCh:
			return
		}
	}
}

// process runs one batch, cancelling it if the processor is stopped
func (p *FollowUpProcessor) process() {
	ctx, cancel := context.WithTimeout(context.Background(), p.runTimeout)
	defer cancel()
	go func() {
		select {
		case <-p.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := p.RunOnce(ctx); err != nil {
		p.logger.Error("follow-up processing failed", slog.String("error", err.Error()))
	}
}

// RunOnce processes due follow-ups once (for testing or manual trigger)
func (p *FollowUpProcessor) RunOnce(ctx context.Context) (int, error) {
	sent, err := p.runner.ProcessDue(ctx)
	p.metrics.FollowUpSent("sent", sent)
	if err != nil {
		p.metrics.FollowUpSent("failed", 1)
		return sent, err
	}
	if sent > 0 {
		p.logger.Info("follow-ups sent", slog.Int("count", sent))
	}
	return sent, nil
}

// IsRunning returns whether the processor is running
func (p *FollowUpProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
