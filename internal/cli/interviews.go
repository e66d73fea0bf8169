package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"entervio-client/internal/router"
	"entervio-client/internal/storage"
)

func NewInterviewsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interviews [interview-id]",
		Short: "List past interviews, or show one in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Saved feedback lives on disk and needs no session.
			if flagBool(cmd, "saved") {
				return savedResults(cmd, deps)
			}
			if len(args) == 1 {
				return route(cmd, deps, router.RouteInterviewFeedback, "interviewId", args[0])
			}
			return route(cmd, deps, router.RouteInterviews)
		},
	}

	cmd.Flags().Bool("save", false, "With an id, also save the feedback as JSON")
	cmd.Flags().Bool("saved", false, "List feedback saved with --save instead")

	return cmd
}

func interviewsPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	f := formatter(cmd)
	s := deps.App.InterviewsStore()
	if !s.Fetch(cmd.Context()) {
		return errors.New(s.Snapshot().Error)
	}

	list := s.Snapshot().Interviews
	if len(list) == 0 {
		f.NoInterviews()
		return nil
	}
	f.InterviewListHeader()
	for _, iv := range list {
		f.InterviewListItem(iv, deps.App.Catalog.DisplayName(iv.InterviewerStyle))
	}
	return nil
}

// interviewDetailPage shows the list row of one interview, when the list can
// be loaded, followed by its feedback.
func interviewDetailPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	id := m.Var("interviewId")

	if n, err := strconv.Atoi(id); err == nil {
		s := deps.App.InterviewsStore()
		if s.Fetch(cmd.Context()) {
			if iv, ok := s.Snapshot().Find(n); ok {
				formatter(cmd).InterviewListItem(iv, deps.App.Catalog.DisplayName(iv.InterviewerStyle))
			}
		}
	}
	return showFeedback(cmd, deps, id)
}

func savedResults(cmd *cobra.Command, deps *Dependencies) error {
	dir := deps.Config.Storage.ResultsDir
	ids, err := storage.ListResults(dir)
	if err != nil {
		return err
	}

	f := formatter(cmd)
	if len(ids) == 0 {
		f.NoSavedResults()
		return nil
	}
	f.SavedResultsHeader(dir)
	for _, id := range ids {
		r, err := storage.LoadResult(dir, id)
		if err != nil {
			f.Warning(fmt.Sprintf("%s illisible : %v", id, err))
			continue
		}
		f.SavedResult(r)
	}
	return nil
}
