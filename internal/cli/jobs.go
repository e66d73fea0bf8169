package cli

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"entervio-client/internal/router"
)

func NewJobsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Search France Travail job offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return route(cmd, deps, router.RouteJobs)
		},
	}

	var location string
	search := &cobra.Command{
		Use:   "search [keywords...]",
		Short: "Search offers by keywords and location",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"view": {"search"}}
			setIf(q, "keywords", strings.Join(args, " "))
			setIf(q, "location", location)
			return visit(cmd, deps, "/jobs?"+q.Encode())
		},
	}
	search.Flags().StringVarP(&location, "location", "l", "", "City or department")

	smart := &cobra.Command{
		Use:   "smart",
		Short: "Search offers matching your uploaded resume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return visit(cmd, deps, "/jobs?view=smart")
		},
	}

	cmd.AddCommand(search, smart, statsCmd(deps, "stats", "Market statistics for a ROME code"), statsCmd(deps, "access", "Access-to-employment statistics"))

	return cmd
}

func statsCmd(deps *Dependencies, view, short string) *cobra.Command {
	var rome, geo string
	cmd := &cobra.Command{
		Use:   view,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"view": {view}}
			setIf(q, "code_rome", rome)
			setIf(q, "code_geographique", geo)
			return visit(cmd, deps, "/jobs?"+q.Encode())
		},
	}
	cmd.Flags().StringVar(&rome, "rome", "", "ROME job code, e.g. M1805")
	cmd.Flags().StringVar(&geo, "geo", "", "Geographic code, e.g. 75")
	return cmd
}

func jobsPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	f := formatter(cmd)
	s := deps.App.JobsStore()
	q := m.Query
	ctx := cmd.Context()

	view := q.Get("view")
	if view == "" && (q.Has("keywords") || q.Has("location")) {
		view = "search"
	}

	switch view {
	case "smart":
		if !s.SmartSearch(ctx) {
			return errors.New(s.Snapshot().Error)
		}
		st := s.Snapshot()
		f.SmartParams(st.SmartParams)
		f.JobList(st.Jobs)

	case "stats", "access":
		ok := s.LoadStats(ctx, q.Get("code_rome"), q.Get("code_geographique"))
		st := s.Snapshot()
		if view == "stats" {
			f.JSON("Statistiques du marché", st.Stats)
		}
		f.JSON("Accès à l'emploi", st.AccessStats)
		if !ok {
			f.Warning(st.Error)
		}

	case "search":
		s.SetKeywords(q.Get("keywords"))
		s.SetLocation(q.Get("location"))
		if !s.Search(ctx) {
			return errors.New(s.Snapshot().Error)
		}
		f.JobList(s.Snapshot().Jobs)

	default:
		f.Info("entervio jobs search <mots-clés> --location <lieu>")
		f.Info("entervio jobs smart    offres adaptées à votre CV")
	}
	return nil
}
