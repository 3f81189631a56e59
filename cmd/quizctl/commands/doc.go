// Package commands defines the quizctl CLI, a thin shell over pkg/client for
// exercising a running assessment API.
//
// Commands
//
//   - health     Check liveness and store reachability
//   - token      Fetch a CSRF token
//   - steps      Print the step order and option catalogs
//   - analyze    Classify a set of conditions
//   - next       Ask for the step after a given one
//   - submit     Store a quiz response read from a JSON file
//   - get        Fetch a stored quiz response
//   - contact    Attach contact details to a quiz
//   - waitlist   Join the waiting list after a too-soon result
//   - notify     Ask to be notified about non-treatable conditions
//
// Settings come from QUIZCTL_* environment variables; flags override them.
// Every command prints the API response as indented JSON.
package commands
