package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/primarycell/assessment/pkg/client"
	"github.com/primarycell/assessment/pkg/logging"
)

// settings are read from the environment before flags are parsed
type settings struct {
	BaseURL     string        `env:"QUIZCTL_BASE_URL"     envDefault:"http://localhost:8080"`
	Timeout     time.Duration `env:"QUIZCTL_TIMEOUT"      envDefault:"10s"`
	MaxAttempts int           `env:"QUIZCTL_MAX_ATTEMPTS" envDefault:"3"`
	Verbose     bool          `env:"QUIZCTL_VERBOSE"`
}

// app is shared by subcommands once the root pre-run has built it
type app struct {
	settings settings
	client   *client.Client
	out      io.Writer
}

// Execute runs the CLI with os.Args
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).Execute()
}

// NewRootCommand builds the command tree writing results to out and logs to errOut
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out}
	if err := env.Parse(&a.settings); err != nil {
		fmt.Fprintf(errOut, "parse env: %v\n", err)
	}

	root := &cobra.Command{
		Use:          "quizctl",
		Short:        "Command-line client for the assessment API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if a.settings.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(logging.NewHandler(errOut, "development", level))

			c, err := client.New(client.Config{
				BaseURL:     a.settings.BaseURL,
				Timeout:     a.settings.Timeout,
				MaxAttempts: a.settings.MaxAttempts,
				UserAgent:   "quizctl",
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			a.client = c
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.settings.BaseURL, "base-url", a.settings.BaseURL, "API base URL (QUIZCTL_BASE_URL)")
	root.PersistentFlags().DurationVar(&a.settings.Timeout, "timeout", a.settings.Timeout, "per-attempt timeout (QUIZCTL_TIMEOUT)")
	root.PersistentFlags().IntVar(&a.settings.MaxAttempts, "max-attempts", a.settings.MaxAttempts, "attempts per call (QUIZCTL_MAX_ATTEMPTS)")
	root.PersistentFlags().BoolVarP(&a.settings.Verbose, "verbose", "v", a.settings.Verbose, "log retries to stderr (QUIZCTL_VERBOSE)")

	root.AddCommand(
		healthCmd(a),
		tokenCmd(a),
		stepsCmd(a),
		analyzeCmd(a),
		nextCmd(a),
		submitCmd(a),
		getCmd(a),
		contactCmd(a),
		waitlistCmd(a),
		notifyCmd(a),
	)
	return root
}

// print writes v as indented JSON
func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
