package service

import (
	"context"
	"log/slog"
	"time"
)

// DefaultFollowUpBatchSize bounds how many entries one ProcessDue call handles
const DefaultFollowUpBatchSize = 100

// Retry delays after a failed delivery double from the base up to the cap
const (
	DefaultFollowUpRetryDelay = time.Hour
	MaxFollowUpRetryDelay     = 24 * time.Hour
)

// FollowUpService contacts waiting-list leads once their follow-up date passes
type FollowUpService struct {
	repo       LeadRepository
	notifier   Notifier
	now        func() time.Time
	batchSize  int
	retryDelay time.Duration
	logger     *slog.Logger
}

// FollowUpServiceConfig holds configuration for the follow-up service
type FollowUpServiceConfig struct {
	Repo      LeadRepository
	Notifier  Notifier
	Clock     func() time.Time
	BatchSize int
	// RetryDelay is the wait after a first failed delivery (default 1h)
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// NewFollowUpService creates a new follow-up service
func NewFollowUpService(cfg FollowUpServiceConfig) *FollowUpService {
	s := &FollowUpService{
		repo:       cfg.Repo,
		notifier:   cfg.Notifier,
		now:        cfg.Clock,
		batchSize:  cfg.BatchSize,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultFollowUpBatchSize
	}
	if s.retryDelay <= 0 {
		s.retryDelay = DefaultFollowUpRetryDelay
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.logger)
	}
	return s
}

// ProcessDue sends follow-ups for entries whose date has passed and marks them
// notified. An entry whose delivery fails stays pending and is skipped until
// its retry time, which doubles with each failure. It returns the number of follow-ups sent.
func (s *FollowUpService) ProcessDue(ctx context.Context) (int, error) {
	now := s.now().UTC()
	entries, err := s.repo.ListDueWaitingList(ctx, now, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := s.notifier.SendFollowUp(ctx, entry); err != nil {
			retryAt := now.Add(s.backoff(entry.FollowUpAttempts + 1))
			s.logger.WarnContext(ctx, "follow-up delivery failed",
				slog.String("entry_id", entry.ID),
				slog.Int("attempts", entry.FollowUpAttempts+1),
				slog.Time("retry_at", retryAt),
				slog.String("error", err.Error()),
			)
			if err := s.repo.RecordFollowUpFailure(ctx, entry.ID, retryAt); err != nil {
				return sent, err
			}
			continue
		}
		if err := s.repo.MarkWaitingListNotified(ctx, entry.ID, now); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// backoff returns the delay before the next attempt after the given number of failures
func (s *FollowUpService) backoff(attempts int) time.Duration {
	d := s.retryDelay
	for i := 1; i < attempts && d < MaxFollowUpRetryDelay; i++ {
		d *= 2
	}
	return min(d, MaxFollowUpRetryDelay)
}
