package sandbox

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type exchange struct {
	Question  string
	Answer    string
	AudioSize int
}

type session struct {
	ID            string
	InterviewID   int
	UserID        string
	CandidateID   int
	CandidateName string
	Style         string
	JobDesc       string
	CreatedAt     time.Time
	History       []message
	Exchanges     []exchange
	QuestionCount int
	Ended         bool
}

var greetings = map[string]string{
	"nice":    "Bonjour %s, ravi de vous rencontrer ! Installez-vous confortablement. Pour commencer, pouvez-vous vous présenter ?",
	"neutral": "Bonjour %s. Commençons. Présentez-vous en quelques mots.",
	"mean":    "%s. J'ai peu de temps. Présentez-vous, et allez à l'essentiel.",
}

var questions = map[string][]string{
	"nice": {
		"Merci ! Qu'est-ce qui vous motive dans ce poste ?",
		"Parlez-moi d'un projet dont vous êtes fier.",
		"Comment aimez-vous travailler en équipe ?",
		"Où vous voyez-vous dans trois ans ?",
	},
	"neutral": {
		"Pourquoi postulez-vous chez nous ?",
		"Décrivez une difficulté technique que vous avez résolue.",
		"Comment gérez-vous les priorités ?",
		"Quelles sont vos prétentions salariales ?",
	},
	"mean": {
		"Pourquoi devrais-je vous choisir plutôt qu'un autre ?",
		"Citez votre plus grand échec. Sans détour.",
		"Votre CV ne m'impressionne pas. Convainquez-moi.",
		"Qu'est-ce qui vous fait croire que vous tiendrez la pression ?",
	},
}

const closing = "Merci, c'était la dernière question. Vous pouvez terminer l'entretien pour obtenir votre feedback."

func greeting(style, name string) string {
	if name == "" {
		name = "candidat"
	}
	return fmt.Sprintf(greetings[style], name)
}

// nextLine returns the interviewer's line after n answers and whether the
// script is over.
func nextLine(style string, answered int) (string, bool) {
	qs := questions[style]
	if answered-1 < len(qs) {
		return qs[answered-1], false
	}
	return closing, true
}

// transcribe stands in for speech to text.
func transcribe(size int) string {
	return fmt.Sprintf("Réponse enregistrée (%d octets audio).", size)
}

// grade scores an answer from its length: longer recordings are taken as
// more developed answers, capped at 9.
func grade(ex exchange) float64 {
	g := 4 + math.Log2(1+float64(ex.AudioSize)/4096)
	return math.Min(9, math.Round(g*10)/10)
}

type questionDetail struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Grade    float64 `json:"grade"`
	Feedback string  `json:"feedback"`
	Metrics  string  `json:"metrics"`
	Analysis string  `json:"analysis"`
}

func (s *session) summary() (string, []questionDetail, *float64) {
	details := make([]questionDetail, 0, len(s.Exchanges))
	var total float64
	for _, ex := range s.Exchanges {
		g := grade(ex)
		total += g
		metrics, _ := json.Marshal(map[string]float64{
			"clarity":    math.Min(10, g+1),
			"relevance":  g,
			"confidence": math.Max(0, g-1),
		})
		analysis, _ := json.Marshal(map[string][]string{
			"strengths":    {"Réponse structurée"},
			"weaknesses":   weaknesses(g),
			"improvements": {"Illustrez avec un exemple concret"},
		})
		details = append(details, questionDetail{
			Question: ex.Question,
			Answer:   ex.Answer,
			Grade:    g,
			Feedback: feedbackFor(g),
			Metrics:  string(metrics),
			Analysis: string(analysis),
		})
	}

	global, _ := json.Marshal(map[string]any{
		"strengths":  []string{"Bonne présentation", "Ton posé"},
		"weaknesses": []string{"Manque d'exemples chiffrés"},
		"analysis":   fmt.Sprintf("Entretien de %d questions avec un recruteur %s.", len(s.Exchanges), s.Style),
	})

	if len(details) == 0 {
		return string(global), details, nil
	}
	avg := math.Round(total/float64(len(details))*10) / 10
	return string(global), details, &avg
}

func weaknesses(g float64) []string {
	if g >= 7 {
		return []string{}
	}
	return []string{"Réponse trop courte"}
}

func feedbackFor(g float64) string {
	switch {
	case g >= 7:
		return "Très bonne réponse, claire et développée."
	case g >= 5:
		return "Réponse correcte, qui gagnerait à être approfondie."
	default:
		return "Réponse trop brève, développez davantage."
	}
}
