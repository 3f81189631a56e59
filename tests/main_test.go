// Package tests contains end-to-end acceptance tests for the assessment API.
//
// Each test wires the real services, middleware and router over an isolated
// SQLite store and drives it over HTTP, either with pkg/client or with raw
// requests built by the helpers package.
//
// Store tests also run against SurrealDB when TEST_DB_HOST is set:
//
//	TEST_DB_HOST     - SurrealDB host
//	TEST_DB_PORT     - SurrealDB port (default: 8000)
//	TEST_DB_USER     - SurrealDB username (default: root)
//	TEST_DB_PASSWORD - SurrealDB password (default: root)
package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/primarycell/assessment/internal/model"
)

// recordingNotifier captures outbound messages
type recordingNotifier struct {
	mu        sync.Mutex
	emails    []model.WelcomeEmailRequest
	sms       []model.WelcomeSMSRequest
	followUps []string
	fail      bool
	// bounce fails follow-ups to these addresses
	bounce map[string]bool
}

func (n *recordingNotifier) SendWelcomeEmail(_ context.Context, req model.WelcomeEmailRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errNotifier
	}
	n.emails = append(n.emails, req)
	return nil
}

func (n *recordingNotifier) SendWelcomeSMS(_ context.Context, req model.WelcomeSMSRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errNotifier
	}
	n.sms = append(n.sms, req)
	return nil
}

func (n *recordingNotifier) SendFollowUp(_ context.Context, entry *model.WaitingListEntry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail || n.bounce[entry.Contact.Email] {
		return errNotifier
	}
	n.followUps = append(n.followUps, entry.QuizID)
	return nil
}

type notifierError string

func (e notifierError) Error() string { return string(e) }

const errNotifier = notifierError("provider down")

// fakeClock is a settable clock shared by services and the CSRF issuer
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
