// Package output renders pages and interview events to the terminal.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"entervio-client/internal/api"
	"entervio-client/internal/config"
	"entervio-client/internal/feedback"
	"entervio-client/internal/metrics"
	"entervio-client/internal/storage"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func (f *Formatter) Redirect(to, from string) {
	fmt.Fprintf(f.w, "🔒 Connexion requise pour %s\n", from)
	fmt.Fprintf(f.w, "   → %s puis reprenez sur %s\n", to, from)
}

func (f *Formatter) Dashboard(name string) {
	if name == "" {
		name = "Candidat"
	}
	fmt.Fprintf(f.w, "👋 Bonjour, %s\n", name)
	fmt.Fprintf(f.w, "Prêt à exceller dans votre prochain entretien ?\n\n")
	fmt.Fprintf(f.w, "  🎤 entervio setup        Nouvelle session\n")
	fmt.Fprintf(f.w, "  📚 entervio interviews   Mes entretiens\n")
	fmt.Fprintf(f.w, "  💼 entervio jobs search  Offres d'emploi\n")
}

func (f *Formatter) Personas(personas []config.Persona) {
	fmt.Fprintf(f.w, "Choisissez votre recruteur :\n")
	for i, p := range personas {
		fmt.Fprintf(f.w, "  %d. %s %s (%s)\n", i+1, p.Icon, p.Label, p.Type)
		if p.Description != "" {
			fmt.Fprintf(f.w, "     %s\n", p.Description)
		}
	}
}

func (f *Formatter) ResumeUploaded(name string, skills []string) {
	fmt.Fprintf(f.w, "✅ CV analysé avec succès.\n")
	if name != "" {
		fmt.Fprintf(f.w, "   👤 %s\n", name)
	}
	if len(skills) > 0 {
		fmt.Fprintf(f.w, "   🧠 %s\n", strings.Join(skills, ", "))
	}
}

func (f *Formatter) InterviewCreated(sessionID, next string) {
	fmt.Fprintf(f.w, "🚀 Entretien créé : %s\n", sessionID)
	fmt.Fprintf(f.w, "   → %s\n", next)
}

func (f *Formatter) InterviewHeader(candidate, interviewer string) {
	fmt.Fprintf(f.w, "🎙️  Entretien de %s avec %s\n", candidate, interviewer)
	fmt.Fprintf(f.w, "   Entrée pour parler, Entrée à nouveau pour envoyer. /help pour les commandes.\n\n")
}

func (f *Formatter) AssistantMessage(text string) {
	fmt.Fprintf(f.w, "🤖 %s\n", text)
}

func (f *Formatter) UserMessage(text string) {
	fmt.Fprintf(f.w, "🧑 %s\n", text)
}

func (f *Formatter) Recording() {
	fmt.Fprintf(f.w, "🔴 Enregistrement... (Entrée pour envoyer)\n")
}

func (f *Formatter) Processing() {
	fmt.Fprintf(f.w, "⏳ Analyse de votre réponse...\n")
}

func (f *Formatter) QuestionProgress(count int) {
	fmt.Fprintf(f.w, "   Question %d\n", count)
}

func (f *Formatter) InterviewStatus(phase string, questions int, playing bool) {
	audio := "non"
	if playing {
		audio = "oui"
	}
	fmt.Fprintf(f.w, "📊 État: %s · Questions: %d · Lecture audio: %s\n", phase, questions, audio)
}

func (f *Formatter) InterviewEnded(summary, feedbackPath string) {
	fmt.Fprintf(f.w, "\n🏁 Entretien terminé.\n")
	if summary != "" {
		fmt.Fprintf(f.w, "%s\n", summary)
	}
	if feedbackPath != "" {
		fmt.Fprintf(f.w, "   → %s\n", feedbackPath)
	}
}

func (f *Formatter) ConsoleHelp() {
	fmt.Fprintf(f.w, `Commandes :
  Entrée    démarrer / envoyer l'enregistrement
  /replay   réécouter la dernière question
  /status   état de l'entretien
  /end      terminer l'entretien
  /quit     quitter sans terminer
`)
}

func (f *Formatter) InterviewListHeader() {
	fmt.Fprintf(f.w, "📚 Mes entretiens :\n\n")
}

func (f *Formatter) NoInterviews() {
	fmt.Fprintf(f.w, "Aucun entretien pour le moment\n")
	fmt.Fprintf(f.w, "Commencez votre premier entretien pour voir votre historique : entervio setup\n")
}

func (f *Formatter) InterviewListItem(iv api.Interview, interviewer string) {
	grade := "  –  "
	if iv.Grade != nil {
		grade = fmt.Sprintf("%s %.1f", gradeMark(*iv.Grade), *iv.Grade)
	}
	fmt.Fprintf(f.w, "  #%-4d %s  %-22s %2d questions  %s\n",
		iv.ID, grade, interviewer, iv.QuestionCount, FormatDate(iv.CreatedAt))
}

func (f *Formatter) SavedResultsHeader(dir string) {
	fmt.Fprintf(f.w, "💾 Feedbacks enregistrés (%s) :\n\n", dir)
}

func (f *Formatter) NoSavedResults() {
	fmt.Fprintf(f.w, "Aucun feedback enregistré\n")
	fmt.Fprintf(f.w, "Enregistrez-en un avec : entervio feedback <session-id> --save\n")
}

func (f *Formatter) SavedResult(r *storage.InterviewResult) {
	fmt.Fprintf(f.w, "  %s  %s %.1f  %2d questions  %s\n",
		r.InterviewID, gradeMark(r.AverageGrade), r.AverageGrade, len(r.Questions), FormatDate(r.Timestamp))
}

// Feedback renders a summary. Structured feedback is broken down; plain text
// is printed as is.
func (f *Formatter) Feedback(summary *api.InterviewSummary) {
	if summary == nil {
		fmt.Fprintf(f.w, "Aucun feedback disponible\n")
		return
	}

	fmt.Fprintf(f.w, "✅ Feedback Général\n\n")
	if g, ok := feedback.DecodeGlobalFeedback(summary.Feedback); ok {
		f.bullets("💪 Points Forts", g.Strengths)
		f.bullets("🎯 Axes d'Amélioration", g.Weaknesses)
		if g.Analysis != "" {
			fmt.Fprintf(f.w, "⭐ Analyse Globale\n  %s\n", g.Analysis)
		}
	} else {
		fmt.Fprintf(f.w, "%s\n", summary.Feedback)
	}

	if len(summary.Questions) == 0 {
		return
	}
	fmt.Fprintf(f.w, "\n💬 Détails par question (moyenne %.1f/10)\n", feedback.AverageGrade(summary.Questions))
	for i, qa := range summary.Questions {
		fmt.Fprintf(f.w, "\nQuestion %d · %s %.1f/10\n", i+1, gradeMark(qa.Grade), qa.Grade)
		fmt.Fprintf(f.w, "  %s\n", qa.Question)
		fmt.Fprintf(f.w, "  Votre réponse : \"%s\"\n", qa.Answer)
		if qa.Feedback != "" {
			fmt.Fprintf(f.w, "  Feedback : %s\n", qa.Feedback)
		}
		if m, ok := feedback.DecodeMetrics(qa.Metrics); ok {
			fmt.Fprintf(f.w, "  Clarté %.0f · Pertinence %.0f · Confiance %.0f\n", m.Clarity, m.Relevance, m.Confidence)
		}
		if a, ok := feedback.DecodeAnalysis(qa.Analysis); ok {
			f.bullets("  + Forces", a.Strengths)
			f.bullets("  - Faiblesses", a.Weaknesses)
			f.bullets("  → Améliorations", a.Improvements)
		}
	}
}

func (f *Formatter) bullets(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(f.w, "%s\n", title)
	for _, item := range items {
		fmt.Fprintf(f.w, "  • %s\n", item)
	}
}

func (f *Formatter) SmartParams(p *api.SmartSearchParams) {
	if p == nil {
		return
	}
	fmt.Fprintf(f.w, "✨ Recherche optimisée d'après votre CV : %s (%s)\n", p.Keywords, p.Location)
	for _, q := range p.SearchQueries {
		fmt.Fprintf(f.w, "  • %s: %s\n", q.Type, q.Keywords)
	}
}

func (f *Formatter) JobList(jobs []api.JobOffer) {
	if len(jobs) == 0 {
		fmt.Fprintf(f.w, "Aucune offre trouvée\n")
		return
	}
	for _, job := range jobs {
		company, place := "", ""
		if job.Entreprise != nil {
			company = job.Entreprise.Nom
		}
		if job.LieuTravail != nil {
			place = job.LieuTravail.Libelle
		}
		fmt.Fprintf(f.w, "💼 %s\n", job.Intitule)
		fmt.Fprintf(f.w, "   %s • %s • %s", company, place, job.TypeContrat)
		if job.DateCreation != "" {
			fmt.Fprintf(f.w, " • %s", FormatDate(job.DateCreation))
		}
		fmt.Fprintln(f.w)
		if job.OrigineOffre != nil && job.OrigineOffre.URLOrigine != "" {
			fmt.Fprintf(f.w, "   🔗 %s\n", job.OrigineOffre.URLOrigine)
		}
	}
}

// JSON pretty-prints a raw document under a title.
func (f *Formatter) JSON(title string, raw json.RawMessage) {
	fmt.Fprintf(f.w, "📈 %s\n", title)
	if len(raw) == 0 {
		fmt.Fprintf(f.w, "  (indisponible)\n")
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "  ", "  "); err != nil {
		fmt.Fprintf(f.w, "  %s\n", raw)
		return
	}
	fmt.Fprintf(f.w, "  %s\n", buf.String())
}

func (f *Formatter) Account(email, name string, candidate *api.Candidate) {
	fmt.Fprintf(f.w, "👤 Mon compte\n")
	if name != "" {
		fmt.Fprintf(f.w, "  Nom: %s\n", name)
	}
	fmt.Fprintf(f.w, "  Email: %s\n", email)
	if candidate == nil {
		return
	}
	if candidate.HasResume {
		fmt.Fprintf(f.w, "  CV: ✅ importé (candidat #%d)\n", candidate.CandidateID)
		if skills := candidate.SkillList(); len(skills) > 0 {
			fmt.Fprintf(f.w, "  Compétences: %s\n", strings.Join(skills, ", "))
		}
	} else {
		fmt.Fprintf(f.w, "  CV: ❌ aucun (entervio resume upload <cv.pdf>)\n")
	}
}

func (f *Formatter) Metrics(s metrics.Snapshot) {
	fmt.Fprintf(f.w, "📊 Session: %d entretiens démarrés, %d terminés, %d réponses, %d appels API (%d OK)\n",
		s.InterviewsStarted, s.InterviewsCompleted, s.ResponsesSubmitted, s.APICallsTotal, s.APICallsSuccessful)
}

func gradeMark(grade float64) string {
	switch {
	case grade >= 7:
		return "🟢"
	case grade >= 5:
		return "🟡"
	default:
		return "🔴"
	}
}

var months = [...]string{"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre"}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"}

// FormatDate renders a backend timestamp the French way, e.g.
// "2 janvier 2026 à 14:05". Unparseable input is returned unchanged.
func FormatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fmt.Sprintf("%d %s %d à %02d:%02d", t.Day(), months[t.Month()-1], t.Year(), t.Hour(), t.Minute())
		}
	}
	return s
}
