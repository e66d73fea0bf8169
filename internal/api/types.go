package api

import (
	"encoding/json"
	"strings"
)

// Interviewer styles accepted by the backend.
const (
	StyleNice    = "nice"
	StyleNeutral = "neutral"
	StyleMean    = "mean"
)

type StartInterviewRequest struct {
	CandidateName   string `json:"candidate_name"`
	InterviewerType string `json:"interviewer_type"`
	CandidateID     *int   `json:"candidate_id,omitempty"`
	JobDescription  string `json:"job_description,omitempty"`
}

type StartInterviewResponse struct {
	SessionID        string `json:"session_id"`
	CandidateName    string `json:"candidate_name"`
	InterviewerStyle string `json:"interviewer_style"`
}

type InterviewInfo struct {
	SessionID        string `json:"session_id"`
	CandidateName    string `json:"candidate_name"`
	InterviewerStyle string `json:"interviewer_style"`
	QuestionCount    int    `json:"question_count"`
}

type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ConversationHistory struct {
	History []ConversationMessage `json:"history"`
}

type RespondResult struct {
	Transcription string `json:"transcription"`
	Response      string `json:"response"`
	QuestionCount int    `json:"question_count"`
	IsFinished    bool   `json:"is_finished,omitempty"`
}

type EndResult struct {
	Summary string `json:"summary"`
}

type UploadResumeResponse struct {
	Message     string          `json:"message"`
	CandidateID int             `json:"candidate_id"`
	Name        string          `json:"name"`
	Skills      json.RawMessage `json:"skills,omitempty"`
}

// Candidate is the current user's candidate profile.
type Candidate struct {
	CandidateID int             `json:"candidate_id"`
	Name        string          `json:"name"`
	HasResume   bool            `json:"has_resume"`
	Skills      json.RawMessage `json:"skills,omitempty"`
}

// SkillList flattens the parsed skills. The resume parser has returned a
// plain list, a list of {name} objects and a {category: [skills]} map; any
// other shape yields nil.
func (c *Candidate) SkillList() []string {
	return decodeSkills(c.Skills)
}

func decodeSkills(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var named []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &named); err == nil {
		out := make([]string, 0, len(named))
		for _, n := range named {
			if n.Name != "" {
				out = append(out, n.Name)
			}
		}
		return out
	}

	var grouped map[string][]string
	if err := json.Unmarshal(raw, &grouped); err == nil {
		var out []string
		for _, group := range grouped {
			out = append(out, group...)
		}
		return out
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil && text != "" {
		parts := strings.Split(text, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	return nil
}

// Interview is one row of the interview list.
type Interview struct {
	ID               int      `json:"id"`
	CreatedAt        string   `json:"created_at"`
	CandidateID      int      `json:"candidate_id"`
	InterviewerStyle string   `json:"interviewer_style"`
	QuestionCount    int      `json:"question_count"`
	Grade            *float64 `json:"grade"`
}

// QuestionAnswer is one graded exchange. Metrics and Analysis are JSON
// documents encoded as strings.
type QuestionAnswer struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Grade    float64 `json:"grade"`
	Feedback string  `json:"feedback"`
	Metrics  *string `json:"metrics,omitempty"`
	Analysis *string `json:"analysis,omitempty"`
}

// InterviewSummary is the graded result of a finished interview. Feedback is
// usually a JSON document encoded as a string.
type InterviewSummary struct {
	Feedback  string           `json:"feedback"`
	Questions []QuestionAnswer `json:"questions"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type SignupResponse struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
