package cli

import (
	"github.com/spf13/cobra"
)

func NewOpenCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:     "open <path>",
		Short:   "Open a client page by its path",
		Long:    "Open any page by path, e.g. /interviews, /interview/<id> or /interview/<id>/feedback.\nProtected pages require a signed-in user.",
		Example: "  entervio open /interview/3f2a.../feedback\n  entervio open '/jobs?keywords=go&location=paris'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return visit(cmd, deps, args[0])
		},
	}
}
