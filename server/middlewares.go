package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Daskott/folio/colors"
	"github.com/crewjam/csp"
)

var contentSecurityPolicy = csp.Header{
	DefaultSrc: []string{"'self'"},
}.String()

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *site) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         200,
		}

		defer func() {
			s.logg.Info(
				r.Method, " ",
				r.RequestURI, " ",
				colors.Status(responseWriter.Status), " ",
				colors.Yellow(fmt.Sprintf("[%v]", time.Since(start))))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// limitBodyMiddleware caps request bodies at MAX_FORM_SIZE. It must wrap
// anything that parses the form, csrf.Protect included.
func limitBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MAX_FORM_SIZE)
		}

		next.ServeHTTP(w, r)
	})
}
