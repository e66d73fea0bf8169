package sandbox

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type startRequest struct {
	CandidateName   string `json:"candidate_name"`
	InterviewerType string `json:"interviewer_type"`
	CandidateID     *int   `json:"candidate_id"`
	JobDescription  string `json:"job_description"`
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Requête invalide")
	}
	if _, ok := questions[req.InterviewerType]; !ok {
		return detail(c, fiber.StatusUnprocessableEntity, "interviewer_type must be one of nice, neutral, mean")
	}

	userID := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	name := req.CandidateName
	cand := s.candidates[userID]
	if name == "" && cand != nil {
		name = cand.Name
	}
	if name == "" {
		if u := s.userByID(userID); u != nil {
			name = u.Name
		}
	}

	s.nextInterview++
	sess := &session{
		ID:            newID(),
		InterviewID:   s.nextInterview,
		UserID:        userID,
		CandidateName: name,
		Style:         req.InterviewerType,
		JobDesc:       req.JobDescription,
		CreatedAt:     s.now(),
		QuestionCount: 1,
	}
	if req.CandidateID != nil {
		sess.CandidateID = *req.CandidateID
	} else if cand != nil {
		sess.CandidateID = cand.ID
	}
	sess.History = []message{{Role: "assistant", Content: greeting(sess.Style, name)}}
	s.sessions[sess.ID] = sess
	s.requestLog(c).Info("interview started", "session_id", sess.ID, "style", sess.Style)

	return c.JSON(fiber.Map{
		"session_id":        sess.ID,
		"candidate_name":    sess.CandidateName,
		"interviewer_style": sess.Style,
	})
}

// lookup finds a session of the current user by session id or interview id.
// Callers hold s.mu.
func (s *Server) lookup(c *fiber.Ctx) *session {
	id := c.Params("id")
	userID := currentUser(c)
	if sess, ok := s.sessions[id]; ok && sess.UserID == userID {
		return sess
	}
	if n, err := strconv.Atoi(id); err == nil {
		for _, sess := range s.sessions {
			if sess.InterviewID == n && sess.UserID == userID {
				return sess
			}
		}
	}
	return nil
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.lookup(c)
	if sess == nil {
		return detail(c, fiber.StatusNotFound, "Session not found")
	}
	return c.JSON(fiber.Map{
		"session_id":        sess.ID,
		"candidate_name":    sess.CandidateName,
		"interviewer_style": sess.Style,
		"question_count":    sess.QuestionCount,
	})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.lookup(c)
	if sess == nil {
		return detail(c, fiber.StatusNotFound, "Session not found")
	}
	return c.JSON(fiber.Map{"history": sess.History})
}

func (s *Server) handleRespond(c *fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "audio file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "unreadable audio")
	}
	audio, err := io.ReadAll(f)
	f.Close()
	if err != nil || len(audio) == 0 {
		return detail(c, fiber.StatusBadRequest, "empty audio")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.lookup(c)
	if sess == nil {
		return detail(c, fiber.StatusNotFound, "Session not found")
	}
	if sess.Ended {
		return detail(c, fiber.StatusBadRequest, "Interview already ended")
	}

	question := sess.History[len(sess.History)-1].Content
	answer := transcribe(len(audio))
	sess.Exchanges = append(sess.Exchanges, exchange{Question: question, Answer: answer, AudioSize: len(audio)})

	reply, finished := nextLine(sess.Style, len(sess.Exchanges))
	if !finished {
		sess.QuestionCount++
	}
	sess.History = append(sess.History,
		message{Role: "user", Content: answer},
		message{Role: "assistant", Content: reply},
	)
	s.requestLog(c).Debug("response recorded", "session_id", sess.ID, "language", c.FormValue("language"), "bytes", len(audio))

	return c.JSON(fiber.Map{
		"transcription":  answer,
		"response":       reply,
		"question_count": sess.QuestionCount,
		"is_finished":    finished,
	})
}

func (s *Server) handleEnd(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.lookup(c)
	if sess == nil {
		return detail(c, fiber.StatusNotFound, "Session not found")
	}
	sess.Ended = true
	return c.JSON(fiber.Map{
		"summary": fmt.Sprintf("Entretien terminé après %d réponse(s). Merci %s !", len(sess.Exchanges), sess.CandidateName),
	})
}

func (s *Server) handleList(c *fiber.Ctx) error {
	userID := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]fiber.Map, 0)
	for n := 1; n <= s.nextInterview; n++ {
		for _, sess := range s.sessions {
			if sess.InterviewID != n || sess.UserID != userID {
				continue
			}
			var grade *float64
			if sess.Ended {
				_, _, grade = sess.summary()
			}
			out = append(out, fiber.Map{
				"id":                sess.InterviewID,
				"created_at":        sess.CreatedAt.UTC().Format("2006-01-02T15:04:05"),
				"candidate_id":      sess.CandidateID,
				"interviewer_style": sess.Style,
				"question_count":    sess.QuestionCount,
				"grade":             grade,
			})
		}
	}
	return c.JSON(out)
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.lookup(c)
	if sess == nil || !sess.Ended {
		return detail(c, fiber.StatusNotFound, "Summary not found")
	}
	feedback, details, _ := sess.summary()
	return c.JSON(fiber.Map{"feedback": feedback, "questions": details})
}
