package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"entervio-client/internal/sandbox"
)

func NewSandboxCmd(deps *Dependencies) *cobra.Command {
	var addr string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run an in-memory stand-in for the backend and Supabase",
		Long: "Serve the backend API and the Supabase password login from memory, with a scripted recruiter.\n" +
			"Point the client at it with ENTERVIO_SANDBOX=1 (or ENTERVIO_API_URL and SUPABASE_URL).",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(cmd)
			opts := sandbox.Options{Logger: deps.App.Logger}
			if !quiet {
				opts.AccessLog = cmd.ErrOrStderr()
			}
			srv := sandbox.New(opts)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen(addr) }()

			f.Success(fmt.Sprintf("Sandbox sur http://%s", addr))
			f.Info(fmt.Sprintf("  ENTERVIO_API_URL=http://%s SUPABASE_URL=http://%s SUPABASE_ANON_KEY=sandbox", addr, addr))

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				f.Info("Arrêt du sandbox...")
				return srv.Shutdown()
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", deps.Config.Sandbox.Addr, "Listen address")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not log requests")

	return cmd
}
