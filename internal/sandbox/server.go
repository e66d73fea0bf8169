// Package sandbox is an in-process stand-in for the Entervio backend and the
// Supabase auth endpoints. It keeps everything in memory and scripts the
// interviewer, so the client can be exercised end to end without services.
package sandbox

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"entervio-client/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

type Options struct {
	// AccessLog receives one line per request when set.
	AccessLog io.Writer
	// JWTSecret signs access tokens; a random one is used when empty.
	JWTSecret string
	Logger    *slog.Logger
	Now       func() time.Time
}

type Server struct {
	app    *fiber.App
	log    *slog.Logger
	now    func() time.Time
	secret []byte

	mu            sync.Mutex
	users         map[string]*user      // by email
	revoked       map[string]bool       // token ids signed out
	candidates    map[string]*candidate // by user id
	sessions      map[string]*session
	nextCandidate int
	nextInterview int
}

type user struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	PasswordHash []byte
}

type candidate struct {
	ID     int
	Name   string
	Skills []string
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.Logger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		log:        opts.Logger.With("component", "sandbox"),
		now:        opts.Now,
		users:      make(map[string]*user),
		revoked:    make(map[string]bool),
		candidates: make(map[string]*candidate),
		sessions:   make(map[string]*session),
	}
	if opts.JWTSecret != "" {
		s.secret = []byte(opts.JWTSecret)
	} else {
		s.secret = randomSecret()
	}

	app := fiber.New(fiber.Config{
		AppName:               "entervio-sandbox",
		DisableStartupMessage: true,
		BodyLimit:             20 * 1024 * 1024,
	})
	// The client's X-Request-ID is kept, and echoed back, when it sends one.
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if reqID, ok := c.Locals("requestid").(string); ok {
			c.SetUserContext(observability.WithRequestID(c.UserContext(), reqID))
		}
		return c.Next()
	})
	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Output: opts.AccessLog,
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	authAPI := app.Group("/auth/v1")
	authAPI.Post("/token", s.handleToken)
	authAPI.Post("/logout", s.handleLogout)

	api := app.Group("/api/v1")
	// Registered ahead of the auth middleware: signup is public.
	api.Post("/auth/signup", s.handleSignup)
	api.Use(s.requireUser)

	api.Post("/interviews/start", s.handleStart)
	api.Get("/interviews", s.handleList)
	api.Get("/interviews/:id/info", s.handleInfo)
	api.Get("/interviews/:id/history", s.handleHistory)
	api.Post("/interviews/:id/respond", s.handleRespond)
	api.Post("/interviews/:id/end", s.handleEnd)
	api.Get("/interviews/:id/summary", s.handleSummary)
	api.Get("/voice/interview/:id/audio", s.handleAudio)

	api.Post("/candidates/upload_resume", s.handleUploadResume)
	api.Get("/candidates/me", s.handleMe)

	api.Get("/jobs/search", s.handleJobSearch)
	api.Post("/jobs/smart-search", s.handleSmartSearch)
	api.Get("/jobs/stats", s.handleJobStats)
	api.Get("/jobs/access-stats", s.handleAccessStats)

	s.app = app
	return s
}

// Handler exposes the app as a net/http handler, e.g. for httptest.
func (s *Server) Handler() http.HandlerFunc {
	return adaptor.FiberApp(s.app)
}

func (s *Server) Listen(addr string) error {
	s.log.Info("sandbox listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requireUser(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return detail(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	s.mu.Lock()
	cl, err := s.parseToken(token)
	s.mu.Unlock()
	if err != nil {
		s.requestLog(c).Debug("rejected token", "error", err)
		return detail(c, fiber.StatusUnauthorized, "Could not validate credentials")
	}
	c.Locals("user_id", cl.Subject)
	return c.Next()
}

// requestLog tags the sandbox logger with the request id of c.
func (s *Server) requestLog(c *fiber.Ctx) *slog.Logger {
	return observability.RequestLogger(c.UserContext(), s.log)
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// detail writes the backend's error envelope.
func detail(c *fiber.Ctx, status int, msg any) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

func newID() string {
	return uuid.NewString()
}
