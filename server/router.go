package server

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/Daskott/folio/server/contact"
	"github.com/Daskott/folio/server/metrics"
	"github.com/Daskott/folio/server/web"
	"github.com/Daskott/folio/shared"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// site renders the portfolio pages and the contact form.
type site struct {
	config    *shared.ServerConfig
	templates map[string]*template.Template
	contact   *contact.Handler
	store     MessageStore
	devMode   bool
	logg      *zap.SugaredLogger
}

// NewRouter builds the http handler for the whole site.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errors.New("message store is required")
	}

	if deps.Config == nil {
		return nil, errors.New("server config is required")
	}

	logg := deps.Logger
	if logg == nil {
		logg = zap.NewNop().Sugar()
	}

	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}

	s := &site{
		config:    deps.Config,
		templates: templates,
		contact:   contact.NewHandler(deps.Store, deps.Notifier, logg),
		store:     deps.Store,
		devMode:   deps.DevMode,
		logg:      logg,
	}

	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)
	router.Use(metrics.Middleware)
	router.Use(securityHeadersMiddleware)

	// mux only runs router.Use middlewares on matched routes
	router.NotFoundHandler = s.unmatchedHandler(http.NotFoundHandler())
	router.MethodNotAllowedHandler = s.unmatchedHandler(http.HandlerFunc(methodNotAllowedHandler))

	router.HandleFunc("/", s.pageHandler(web.INDEX_PAGE, "Home")).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/index", s.pageHandler(web.INDEX_PAGE, "Home")).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/resume", s.pageHandler(web.RESUME_PAGE, "Resume")).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/projects", s.pageHandler(web.PROJECTS_PAGE, "Projects")).Methods(http.MethodGet, http.MethodHead)

	router.Handle("/contact", limitBodyMiddleware(s.csrfProtect(http.HandlerFunc(s.contactHandler)))).
		Methods(http.MethodGet, http.MethodHead, http.MethodPost)

	router.PathPrefix("/static/").Handler(web.Static()).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return router, nil
}

// unmatchedHandler runs next through the same chain as routed requests.
func (s *site) unmatchedHandler(next http.Handler) http.Handler {
	return s.loggingMiddleware(metrics.Middleware(securityHeadersMiddleware(next)))
}

// csrfProtect guards the contact form when a csrf key is configured.
func (s *site) csrfProtect(next http.Handler) http.Handler {
	key := s.config.Security.CSRFKey
	if key == "" {
		if !s.devMode {
			s.logg.Warn("security.csrfKey is not set, contact form is not csrf protected")
		}
		return next
	}

	return csrf.Protect([]byte(key),
		csrf.Secure(s.config.Security.SecureCookies),
		csrf.Path("/"),
		csrf.FieldName("_csrf"),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailureHandler)),
	)(next)
}
