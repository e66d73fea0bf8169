package feedback

import (
	"fmt"
	"time"

	"entervio-client/internal/api"
	"entervio-client/internal/storage"
)

// Export writes the summary to resultsDir as interview_<id>.json and returns
// the file path.
func Export(resultsDir, interviewID string, summary *api.InterviewSummary, at time.Time) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("no summary loaded for interview %s", interviewID)
	}

	result := &storage.InterviewResult{
		InterviewID:  interviewID,
		Timestamp:    at.Format(time.RFC3339),
		Feedback:     summary.Feedback,
		AverageGrade: AverageGrade(summary.Questions),
		Questions:    make([]storage.QA, 0, len(summary.Questions)),
	}
	for _, qa := range summary.Questions {
		result.Questions = append(result.Questions, storage.QA{
			Question: qa.Question,
			Answer:   qa.Answer,
			Grade:    qa.Grade,
			Feedback: qa.Feedback,
		})
	}

	path, err := storage.SaveResult(resultsDir, result)
	if err != nil {
		return "", fmt.Errorf("exporting summary: %w", err)
	}
	return path, nil
}

// AverageGrade is the mean of the per-question grades, 0 when there are none.
func AverageGrade(questions []api.QuestionAnswer) float64 {
	if len(questions) == 0 {
		return 0
	}
	var total float64
	for _, qa := range questions {
		total += qa.Grade
	}
	return total / float64(len(questions))
}
