package sandbox

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// knownSkills are looked up verbatim in the uploaded PDF bytes.
var knownSkills = []string{"Go", "Python", "Java", "JavaScript", "TypeScript", "SQL", "Docker", "Kubernetes", "React", "Linux", "Git", "AWS"}

func (s *Server) handleUploadResume(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "file is required")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return detail(c, fiber.StatusBadRequest, "Only PDF files are accepted")
	}
	f, err := fh.Open()
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "unreadable file")
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		return detail(c, fiber.StatusBadRequest, "Invalid PDF")
	}

	userID := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	cand, ok := s.candidates[userID]
	if !ok {
		s.nextCandidate++
		cand = &candidate{ID: s.nextCandidate}
		s.candidates[userID] = cand
	}
	if u := s.userByID(userID); u != nil {
		cand.Name = u.Name
	}
	cand.Skills = extractSkills(data)

	return c.JSON(fiber.Map{
		"message":      "CV analysé avec succès",
		"candidate_id": cand.ID,
		"name":         cand.Name,
		"skills":       cand.Skills,
	})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	userID := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	cand, ok := s.candidates[userID]
	if !ok {
		name := ""
		if u := s.userByID(userID); u != nil {
			name = u.Name
		}
		return c.JSON(fiber.Map{"candidate_id": 0, "name": name, "has_resume": false})
	}
	return c.JSON(fiber.Map{
		"candidate_id": cand.ID,
		"name":         cand.Name,
		"has_resume":   true,
		"skills":       cand.Skills,
	})
}

func extractSkills(pdf []byte) []string {
	skills := []string{}
	for _, skill := range knownSkills {
		if bytes.Contains(pdf, []byte(skill)) {
			skills = append(skills, skill)
		}
	}
	return skills
}
