package storage

// Keys shared between the auth context and the HTTP client.
const (
	AccessTokenKey = "supabase.access_token"
	SessionKey     = "supabase.session"
)

// InterviewResult is a locally exported interview summary.
type InterviewResult struct {
	InterviewID  string  `json:"interview_id"`
	Timestamp    string  `json:"timestamp"`
	Feedback     string  `json:"feedback"`
	AverageGrade float64 `json:"average_grade"`
	Questions    []QA    `json:"questions"`
}

// QA is one graded question and answer.
type QA struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Grade    float64 `json:"grade"`
	Feedback string  `json:"feedback"`
}
