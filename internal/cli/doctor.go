package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(cmd)
			cfg := deps.Config
			ok := true

			for _, bin := range []struct{ name, path, hint string }{
				{"ffmpeg", cfg.Audio.FFmpegPath, "microphone capture"},
				{"ffplay", cfg.Audio.FFplayPath, "recruiter voice playback"},
			} {
				if _, err := exec.LookPath(bin.path); err != nil {
					f.SetupCheck(bin.name, false, fmt.Sprintf("not found, needed for %s", bin.hint))
					ok = false
				} else {
					f.SetupCheck(bin.name, true, "installed")
				}
			}
			f.SetupCheck("Audio input", true, fmt.Sprintf("%s (%s)", cfg.Audio.InputDevice, cfg.Audio.InputFormat))

			if cfg.Supabase.Configured() {
				f.SetupCheck("Supabase", true, cfg.Supabase.URL)
			} else {
				f.SetupCheck("Supabase", false, "not set. Set SUPABASE_URL and SUPABASE_ANON_KEY or add to config")
				ok = false
			}

			if user := deps.App.Auth.User(); user != nil {
				f.SetupCheck("Session", true, "signed in as "+user.Email)
				if _, err := deps.App.API.GetMe(cmd.Context()); err != nil {
					f.SetupCheck("Backend", false, fmt.Sprintf("%s: %v", cfg.Backend.URL, err))
					ok = false
				} else {
					f.SetupCheck("Backend", true, cfg.Backend.URL)
				}
			} else {
				f.SetupCheck("Session", false, "not signed in. Run: entervio login")
				f.SetupCheck("Backend", true, cfg.Backend.URL+" (not checked)")
			}

			f.SetupCheck("Recruiters", true, fmt.Sprintf("%d personas", len(deps.App.Catalog.Personas)))
			f.SetupCheck("Data directory", true, cfg.Storage.DataDir)
			f.Metrics(deps.App.Metrics.GetSnapshot())

			if ok {
				f.Success("\nAll prerequisites met. Ready to interview!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
