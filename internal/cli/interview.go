package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"entervio-client/internal/console"
	"entervio-client/internal/feedback"
	"entervio-client/internal/router"
)

func NewInterviewCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interview <session-id>",
		Short: "Join an interview session",
		Long:  "Join an interview by session id. The recruiter speaks through ffplay and you answer through the microphone:\npress Enter to start recording and Enter again to send.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return route(cmd, deps, router.RouteInterview, "interviewId", args[0])
		},
	}

	cmd.Flags().Bool("stats", false, "Print session counters when leaving")

	return cmd
}

func interviewPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	f := formatter(cmd)
	c := console.New(deps.App.InterviewStore(), deps.input(cmd), f, deps.App.Catalog, deps.App.Router)

	err := c.Run(cmd.Context(), m.Var("interviewId"))
	if flagBool(cmd, "stats") {
		f.Metrics(deps.App.Metrics.GetSnapshot())
	}
	return err
}

func NewFeedbackCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <interview-id>",
		Short: "Show the graded feedback of a finished interview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return route(cmd, deps, router.RouteFeedback, "interviewId", args[0])
		},
	}

	cmd.Flags().Bool("save", false, "Also save the feedback as JSON in the results directory")

	return cmd
}

func feedbackPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	return showFeedback(cmd, deps, m.Var("interviewId"))
}

func showFeedback(cmd *cobra.Command, deps *Dependencies, interviewID string) error {
	f := formatter(cmd)
	s := deps.App.FeedbackStore()
	if !s.Fetch(cmd.Context(), interviewID) {
		return errors.New(s.Snapshot().Error)
	}

	summary := s.Snapshot().Summary
	f.Feedback(summary)

	if flagBool(cmd, "save") {
		path, err := feedback.Export(deps.Config.Storage.ResultsDir, interviewID, summary, time.Now())
		if err != nil {
			return err
		}
		f.Success("Feedback enregistré : " + path)
	}
	return nil
}
