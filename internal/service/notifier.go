package service

import (
	"context"
	"log/slog"

	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/pkg/logging"
)

// Notifier delivers outbound messages to leads
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, req model.WelcomeEmailRequest) error
	SendWelcomeSMS(ctx context.Context, req model.WelcomeSMSRequest) error
	SendFollowUp(ctx context.Context, entry *model.WaitingListEntry) error
}

// LogNotifier records messages in the log instead of sending them.
// Email addresses and phone numbers are hashed before logging.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs through logger (slog default when nil)
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "notifier"))}
}

// SendWelcomeEmail logs a welcome email
func (n *LogNotifier) SendWelcomeEmail(ctx context.Context, req model.WelcomeEmailRequest) error {
	n.logger.InfoContext(ctx, "welcome email queued",
		logging.PII("email", req.Email),
		slog.Bool("has_video_link", req.VideoLink != ""),
	)
	return nil
}

// SendWelcomeSMS logs a welcome SMS
func (n *LogNotifier) SendWelcomeSMS(ctx context.Context, req model.WelcomeSMSRequest) error {
	n.logger.InfoContext(ctx, "welcome sms queued", logging.PII("phone", req.Phone))
	return nil
}

// SendFollowUp logs a waiting-list follow-up
func (n *LogNotifier) SendFollowUp(ctx context.Context, entry *model.WaitingListEntry) error {
	n.logger.InfoContext(ctx, "follow-up queued",
		slog.String("quiz_id", entry.QuizID),
		logging.PII("email", entry.Contact.Email),
		logging.PII("phone", entry.Contact.Phone),
		slog.Time("follow_up_at", entry.FollowUpAt),
	)
	return nil
}
