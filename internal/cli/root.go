// Package cli maps the client's pages onto cobra commands. Every page is
// reached through the router, so the sign-in gate applies to commands and to
// "entervio open <path>" alike.
package cli

import (
	"bufio"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"entervio-client/internal/app"
	"entervio-client/internal/config"
	"entervio-client/internal/output"
	"entervio-client/internal/router"
	"entervio-client/internal/version"
)

var errSignInRequired = errors.New("connexion requise")

type Dependencies struct {
	App    *app.App
	Config *config.AppConfig

	in *bufio.Reader
}

// input is shared by prompts and the interview console so buffered lines are
// never lost between them.
func (d *Dependencies) input(cmd *cobra.Command) *bufio.Reader {
	if d.in == nil {
		d.in = bufio.NewReader(cmd.InOrStdin())
	}
	return d.in
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "entervio",
		Short:         "Mock job interviews with a voice AI recruiter",
		Long:          "Entervio runs spoken mock interviews against an AI recruiter, then shows graded feedback per question.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return visit(cmd, deps, "/")
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewOpenCmd(deps))
	rootCmd.AddCommand(NewLoginCmd(deps))
	rootCmd.AddCommand(NewSignupCmd(deps))
	rootCmd.AddCommand(NewLogoutCmd(deps))
	rootCmd.AddCommand(NewResumeCmd(deps))
	rootCmd.AddCommand(NewSetupCmd(deps))
	rootCmd.AddCommand(NewInterviewCmd(deps))
	rootCmd.AddCommand(NewFeedbackCmd(deps))
	rootCmd.AddCommand(NewInterviewsCmd(deps))
	rootCmd.AddCommand(NewAccountCmd(deps))
	rootCmd.AddCommand(NewJobsCmd(deps))
	rootCmd.AddCommand(NewSandboxCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			io.WriteString(cmd.OutOrStdout(), version.Full()+"\n")
		},
	}
}

func formatter(cmd *cobra.Command) *output.Formatter {
	return output.NewFormatter(cmd.OutOrStdout())
}

// page renders one route.
type page func(cmd *cobra.Command, deps *Dependencies, m router.Match) error

func pages() map[string]page {
	return map[string]page{
		router.RouteLogin:             loginPage,
		router.RouteSignup:            signupPage,
		router.RouteResume:            resumePage,
		router.RouteDashboard:         dashboardPage,
		router.RouteSetup:             setupPage,
		router.RouteAccount:           accountPage,
		router.RouteInterviews:        interviewsPage,
		router.RouteInterviewFeedback: interviewDetailPage,
		router.RouteInterview:         interviewPage,
		router.RouteFeedback:          feedbackPage,
		router.RouteJobs:              jobsPage,
	}
}

// visit resolves location and renders its page. Signed-out users asking for
// a protected page are told where to sign in and get errSignInRequired.
func visit(cmd *cobra.Command, deps *Dependencies, location string) error {
	m, redirect, err := deps.App.Router.Resolve(location, deps.App.Auth.Authenticated())
	if err != nil {
		return err
	}
	if redirect != nil {
		formatter(cmd).Redirect(loginHint(redirect.From), redirect.From)
		return errSignInRequired
	}

	render, ok := pages()[m.Name]
	if !ok {
		return router.ErrNotFound
	}
	return render(cmd, deps, m)
}

// route builds the path of a named route and visits it.
func route(cmd *cobra.Command, deps *Dependencies, name string, pairs ...string) error {
	path, err := deps.App.Router.URL(name, pairs...)
	if err != nil {
		return err
	}
	return visit(cmd, deps, path)
}

func loginHint(from string) string {
	return "entervio login --from " + from
}
