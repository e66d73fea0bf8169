package cli

import (
	"github.com/spf13/cobra"

	"entervio-client/internal/api"
	"entervio-client/internal/router"
)

func NewAccountCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show your account and resume status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return route(cmd, deps, router.RouteAccount)
		},
	}
}

func accountPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	f := formatter(cmd)
	user := deps.App.Auth.User()

	var candidate *api.Candidate
	if me, err := deps.App.API.GetMe(cmd.Context()); err != nil {
		deps.App.Logger.Warn("failed to load candidate", "error", err)
		f.Warning("Statut du CV indisponible")
	} else {
		candidate = me
	}

	f.Account(user.Email, user.Name(), candidate)
	return nil
}

func dashboardPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	name := ""
	if u := deps.App.Auth.User(); u != nil {
		name = u.Name()
	}
	formatter(cmd).Dashboard(name)
	return nil
}
