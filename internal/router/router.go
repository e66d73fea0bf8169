// Package router resolves client routes and applies the sign-in gate.
package router

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

const (
	RouteLogin             = "login"
	RouteSignup            = "signup"
	RouteResume            = "resume"
	RouteDashboard         = "dashboard"
	RouteSetup             = "setup"
	RouteAccount           = "account"
	RouteInterviews        = "interviews"
	RouteInterviewFeedback = "interviews-detail"
	RouteInterview         = "interview"
	RouteFeedback          = "feedback"
	RouteJobs              = "jobs"
)

// LoginPath is where signed-out users are sent.
const LoginPath = "/login"

var ErrNotFound = errors.New("page not found")

type route struct {
	name      string
	path      string
	protected bool
}

var routes = []route{
	{RouteLogin, "/login", false},
	{RouteSignup, "/signup", false},
	{RouteResume, "/resume", false},
	{RouteDashboard, "/", true},
	{RouteSetup, "/setup", true},
	{RouteAccount, "/account", true},
	{RouteInterviews, "/interviews", true},
	{RouteInterviewFeedback, "/interviews/{interviewId}", true},
	{RouteInterview, "/interview/{interviewId}", true},
	{RouteFeedback, "/interview/{interviewId}/feedback", true},
	{RouteJobs, "/jobs", true},
}

// Match is a resolved route.
type Match struct {
	Name      string
	Path      string
	Query     url.Values
	Vars      map[string]string
	Protected bool
}

// Var returns a path variable such as "interviewId".
func (m Match) Var(name string) string { return m.Vars[name] }

// Redirect sends the user to To, remembering where they came from.
type Redirect struct {
	To   string
	From string
}

type Router struct {
	mux       *mux.Router
	protected map[string]bool
}

func New() *Router {
	r := &Router{mux: mux.NewRouter(), protected: make(map[string]bool)}
	for _, rt := range routes {
		r.mux.Path(rt.path).Methods(http.MethodGet).Name(rt.name)
		r.protected[rt.name] = rt.protected
	}
	return r
}

// Match looks up location without applying the sign-in gate.
func (r *Router) Match(location string) (Match, error) {
	u, err := url.Parse(location)
	if err != nil {
		return Match{}, ErrNotFound
	}
	path := normalize(u.Path)

	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}}
	var rm mux.RouteMatch
	if !r.mux.Match(req, &rm) || rm.Route == nil || rm.MatchErr != nil {
		return Match{}, ErrNotFound
	}

	name := rm.Route.GetName()
	vars := rm.Vars
	if vars == nil {
		vars = map[string]string{}
	}
	return Match{
		Name:      name,
		Path:      path,
		Query:     u.Query(),
		Vars:      vars,
		Protected: r.protected[name],
	}, nil
}

// Resolve matches location and, for protected routes without a signed-in
// user, returns a redirect to the login page instead.
func (r *Router) Resolve(location string, authenticated bool) (Match, *Redirect, error) {
	m, err := r.Match(location)
	if err != nil {
		return Match{}, nil, err
	}
	if m.Protected && !authenticated {
		return Match{}, &Redirect{To: LoginPath, From: location}, nil
	}
	return m, nil, nil
}

// URL builds the path of a named route, e.g. URL(RouteFeedback, "interviewId", "42").
func (r *Router) URL(name string, pairs ...string) (string, error) {
	rt := r.mux.Get(name)
	if rt == nil {
		return "", ErrNotFound
	}
	u, err := rt.URLPath(pairs...)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// LoginRedirectTarget is where to go after signing in. Only local paths are
// honoured; anything else lands on the dashboard.
func LoginRedirectTarget(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return "/"
	}
	if p := normalize(strings.SplitN(from, "?", 2)[0]); p == LoginPath || p == "/signup" {
		return "/"
	}
	return from
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}
