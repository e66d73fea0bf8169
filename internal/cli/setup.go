package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"entervio-client/internal/config"
	"entervio-client/internal/router"
)

func NewResumeCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Manage your resume",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF resume for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return visit(cmd, deps, "/resume?"+url.Values{"file": {args[0]}}.Encode())
		},
	})

	return cmd
}

func resumePage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	f := formatter(cmd)
	path := m.Query.Get("file")
	if err := promptIfEmpty(cmd.OutOrStdout(), deps.input(cmd), &path, "CV au format PDF (vide pour passer)"); err != nil {
		return err
	}
	if path == "" {
		f.Info("Vous pourrez importer votre CV plus tard : entervio resume upload <cv.pdf>")
		return visit(cmd, deps, "/")
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%s n'est pas un fichier PDF", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening resume: %w", err)
	}
	defer file.Close()

	s := deps.App.SetupStore()
	if !s.UploadResume(cmd.Context(), filepath.Base(path), file) {
		return errors.New(s.Snapshot().Error)
	}

	st := s.Snapshot()
	f.ResumeUploaded(st.CandidateName, st.Skills)
	return visit(cmd, deps, "/")
}

func NewSetupCmd(deps *Dependencies) *cobra.Command {
	var name, interviewer, jobDescription, jobFile string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure and start a new interview",
		Long:  "Pick a recruiter persona, optionally paste a job description, and start the interview.\nMissing values are prompted for.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobFile != "" {
				data, err := os.ReadFile(jobFile)
				if err != nil {
					return fmt.Errorf("reading job description: %w", err)
				}
				jobDescription = string(data)
			}

			q := url.Values{}
			setIf(q, "name", name)
			setIf(q, "interviewer", interviewer)
			setIf(q, "job", jobDescription)
			location := "/setup"
			if len(q) > 0 {
				location += "?" + q.Encode()
			}
			return visit(cmd, deps, location)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Candidate name")
	cmd.Flags().StringVarP(&interviewer, "interviewer", "i", "", "Recruiter persona: nice, neutral or mean")
	cmd.Flags().StringVar(&jobDescription, "job-description", "", "Job description to tailor the questions")
	cmd.Flags().StringVar(&jobFile, "job-file", "", "Read the job description from a file")

	return cmd
}

func setupPage(cmd *cobra.Command, deps *Dependencies, m router.Match) error {
	f := formatter(cmd)
	w, in := cmd.OutOrStdout(), deps.input(cmd)
	s := deps.App.SetupStore()

	s.CheckResumeStatus(cmd.Context())
	st := s.Snapshot()
	if len(st.Skills) > 0 {
		f.Info("CV détecté : " + strings.Join(st.Skills, ", "))
	}

	name := m.Query.Get("name")
	if name == "" {
		name = st.CandidateName
	}
	if name == "" {
		if u := deps.App.Auth.User(); u != nil {
			name = u.Name()
		}
	}
	if err := promptIfEmpty(w, in, &name, "Votre nom"); err != nil {
		return err
	}
	s.SetCandidateName(name)

	persona, err := choosePersona(cmd, deps, m.Query.Get("interviewer"))
	if err != nil {
		return err
	}
	s.SelectInterviewer(persona)

	if job := m.Query.Get("job"); job != "" {
		s.SetJobDescription(job)
	}

	sessionID, ok := s.StartInterview(cmd.Context())
	if !ok {
		return errors.New(s.Snapshot().Error)
	}

	path, err := deps.App.Router.URL(router.RouteInterview, "interviewId", sessionID)
	if err != nil {
		return err
	}
	f.InterviewCreated(sessionID, "entervio open "+path)
	return visit(cmd, deps, path)
}

// choosePersona accepts a persona type, or lists the catalog and asks for a
// number or a type. An empty answer picks the catalog default.
func choosePersona(cmd *cobra.Command, deps *Dependencies, choice string) (config.Persona, error) {
	catalog := deps.App.Catalog
	if choice == "" {
		formatter(cmd).Personas(catalog.Personas)
		var err error
		if choice, err = prompt(cmd.OutOrStdout(), deps.input(cmd), "Recruteur"); err != nil {
			return config.Persona{}, err
		}
		if choice == "" {
			choice = catalog.DefaultPersona
		}
	}

	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(catalog.Personas) {
		return catalog.Personas[n-1], nil
	}
	if p, ok := catalog.Find(strings.ToLower(choice)); ok {
		return p, nil
	}
	return config.Persona{}, fmt.Errorf("recruteur inconnu %q (choix : %s)", choice, strings.Join(catalog.Types(), ", "))
}

func setIf(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}
