package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/primarycell/assessment/internal/model"
)

func healthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API liveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
}

func tokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Fetch a CSRF token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.client.FetchCSRFToken(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
}

func stepsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "Print the step order and option catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Steps(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
}

func analyzeCmd(a *app) *cobra.Command {
	var req model.AnalyzeConditionsRequest
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify a set of conditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.AnalyzeConditions(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringSliceVarP(&req.Conditions, "condition", "c", nil, "condition value (repeatable)")
	cmd.Flags().StringVar(&req.ConditionOther, "other", "", "free-text other condition")
	return cmd
}

func nextCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "next <step>",
		Short: "Ask for the step after <step> given the answers in --file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp model.QuizResponse
			if file != "" {
				if err := readJSON(cmd.InOrStdin(), file, &resp); err != nil {
					return err
				}
			}
			res, err := a.client.NextStep(cmd.Context(), model.NextStepRequest{
				Current:  model.Step(args[0]),
				Response: resp,
			})
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "quiz answers as JSON (- for stdin)")
	return cmd
}

func submitCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Store a quiz response read from --file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var quiz model.QuizResponse
			if err := readJSON(cmd.InOrStdin(), file, &quiz); err != nil {
				return err
			}
			if quiz.QuizID == "" {
				quiz.QuizID = uuid.NewString()
			}
			res, err := a.client.SubmitQuiz(cmd.Context(), &quiz)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "quiz response as JSON (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <quiz-id>",
		Short: "Fetch a stored quiz response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.GetQuiz(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
}

// contactFlags registers the name, email and phone flags shared by lead commands
func contactFlags(cmd *cobra.Command, name, email, phone *string) {
	cmd.Flags().StringVar(name, "name", "", "full name")
	cmd.Flags().StringVar(email, "email", "", "email address")
	cmd.Flags().StringVar(phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
}

func contactCmd(a *app) *cobra.Command {
	var (
		sub    model.ContactSubmission
		noText bool
	)
	cmd := &cobra.Command{
		Use:   "contact <quiz-id>",
		Short: "Attach contact details to a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub.QuizID = args[0]
			if noText {
				consent := false
				sub.ConsentToText = &consent
			}
			res, err := a.client.SubmitContact(cmd.Context(), sub)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	contactFlags(cmd, &sub.Name, &sub.Email, &sub.Phone)
	cmd.Flags().BoolVar(&noText, "no-text", false, "decline SMS contact")
	return cmd
}

func waitlistCmd(a *app) *cobra.Command {
	var req model.WaitingListRequest
	cmd := &cobra.Command{
		Use:   "waitlist <quiz-id>",
		Short: "Join the waiting list after a too-soon result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.QuizID = args[0]
			res, err := a.client.JoinWaitingList(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	contactFlags(cmd, &req.Name, &req.Email, &req.Phone)
	cmd.Flags().StringVar(&req.ApproximatePainStartDate, "pain-start", "", "approximate pain start (YYYY-MM or YYYY-MM-DD)")
	return cmd
}

func notifyCmd(a *app) *cobra.Command {
	var req model.NotifyMeRequest
	cmd := &cobra.Command{
		Use:   "notify <quiz-id>",
		Short: "Ask to be notified about non-treatable conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.QuizID = args[0]
			res, err := a.client.NotifyMe(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	contactFlags(cmd, &req.Name, &req.Email, &req.Phone)
	cmd.Flags().StringSliceVarP(&req.NonTreatableConditions, "condition", "c", nil, "non-treatable condition (repeatable)")
	return cmd
}

// readJSON decodes path, or stdin when path is "-", into v
func readJSON(stdin io.Reader, path string, v any) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
