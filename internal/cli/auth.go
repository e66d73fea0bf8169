package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"entervio-client/internal/api"
	"entervio-client/internal/router"
)

func NewLoginCmd(deps *Dependencies) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long:  "Sign in with email and password. Missing values are prompted for.\nWith --from, the given page opens once signed in.",
		RunE: func(cmd *cobra.Command, args []string) error {
			location := router.LoginPath
			if from != "" {
				location += "?" + url.Values{"from": {from}}.Encode()
			}
			return visit(cmd, deps, location)
		},
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().StringVar(&from, "from", "", "Page to open after signing in")

	return cmd
}

func loginPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	target := router.LoginRedirectTarget(m.Query.Get("from"))
	if deps.App.Auth.Authenticated() {
		return visit(cmd, deps, target)
	}

	f := formatter(cmd)
	w, in := cmd.OutOrStdout(), deps.input(cmd)
	email, password := flagString(cmd, "email"), flagString(cmd, "password")
	if err := promptIfEmpty(w, in, &email, "Email"); err != nil {
		return err
	}
	if err := promptIfEmpty(w, in, &password, "Mot de passe"); err != nil {
		return err
	}

	if err := deps.App.Auth.Login(cmd.Context(), email, password); err != nil {
		return err
	}

	name := email
	if u := deps.App.Auth.User(); u != nil && u.Name() != "" {
		name = u.Name()
	}
	f.Success("Connecté en tant que " + name)
	return visit(cmd, deps, target)
}

func NewSignupCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return route(cmd, deps, router.RouteSignup)
		},
	}

	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().String("phone", "", "Phone number (optional)")

	return cmd
}

func signupPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	f := formatter(cmd)
	w, in := cmd.OutOrStdout(), deps.input(cmd)

	req := api.SignupRequest{
		Name:     flagString(cmd, "name"),
		Email:    flagString(cmd, "email"),
		Password: flagString(cmd, "password"),
		Phone:    flagString(cmd, "phone"),
	}
	for _, field := range []struct {
		value *string
		label string
	}{
		{&req.Name, "Nom complet"},
		{&req.Email, "Email"},
		{&req.Password, "Mot de passe"},
	} {
		if err := promptIfEmpty(w, in, field.value, field.label); err != nil {
			return err
		}
	}

	if _, err := deps.App.API.Signup(cmd.Context(), req); err != nil {
		return err
	}
	f.Success("Compte créé")

	if err := deps.App.Auth.Login(cmd.Context(), req.Email, req.Password); err != nil {
		f.Warning("Connectez-vous avec : entervio login")
		return err
	}
	return route(cmd, deps, router.RouteResume)
}

func NewLogoutCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(cmd)
			if !deps.App.Auth.Authenticated() {
				f.Info("Aucune session active")
				return nil
			}
			if err := deps.App.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			f.Success("Déconnecté")
			return nil
		},
	}
}

// flagString reads a flag the running command may not define.
func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}
