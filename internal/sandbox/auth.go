package sandbox

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 3600

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Requête invalide")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		return detail(c, fiber.StatusUnprocessableEntity, fiber.Map{
			"message": "Nom, email et mot de passe (6 caractères minimum) sont requis",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return detail(c, fiber.StatusInternalServerError, "Erreur interne")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		return detail(c, fiber.StatusBadRequest, "Un compte existe déjà avec cet email")
	}
	u := &user{ID: newID(), Email: req.Email, Name: req.Name, Phone: req.Phone, PasswordHash: hash}
	s.users[req.Email] = u
	s.requestLog(c).Info("user signed up", "user_id", u.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": u.ID, "email": u.Email, "name": u.Name})
}

// handleToken implements the password grant of GoTrue.
func (s *Server) handleToken(c *fiber.Ctx) error {
	if c.Get("apikey") == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No API key found in request"})
	}
	if c.Query("grant_type") != "password" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":             "unsupported_grant_type",
			"error_description": "Only the password grant is supported",
		})
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "error_description": "Invalid body"})
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	}

	token, expiresAt, err := s.issueToken(u)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server_error", "error_description": err.Error()})
	}

	return c.JSON(fiber.Map{
		"access_token":  token,
		"token_type":    "bearer",
		"expires_in":    tokenTTL,
		"expires_at":    expiresAt,
		"refresh_token": newID(),
		"user": fiber.Map{
			"id":            u.ID,
			"email":         u.Email,
			"user_metadata": fiber.Map{"name": u.Name, "phone": u.Phone},
		},
	})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cl, err := s.parseToken(bearerToken(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": 401, "error_code": "bad_jwt", "msg": "invalid JWT"})
	}
	s.revoked[cl.Id] = true
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) userByID(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
