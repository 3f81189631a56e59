// Package jobs implements background job processing for the assessment API.
//
// Jobs run on a ticker independently of HTTP request handling and follow
// the same lifecycle: Start launches the loop after a short delay, Stop
// closes the stop channel and waits for the in-flight run, and RunOnce
// performs a single pass for tests or manual triggers.
//
// # Job Types
//
//   - FollowUpProcessor: contacts waiting-list leads whose follow-up date
//     has passed (FOLLOWUP_INTERVAL, default hourly)
package jobs
