package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Daskott/folio/server/contact"
	"github.com/Daskott/folio/server/web"
	"github.com/gorilla/csrf"
)

// Largest contact form body accepted, in bytes.
const MAX_FORM_SIZE = 64 << 10

type ResponsePayload struct {
	Errors  []string    `json:"errors"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func (s *site) pageHandler(page, title string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.render(rw, r, page, http.StatusOK, s.templateData(r, title))
	}
}

func (s *site) contactHandler(rw http.ResponseWriter, r *http.Request) {
	data := s.templateData(r, "Contact")

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			data["errorMessage"] = contact.ERROR_MESSAGE_LABEL + err.Error()
			s.render(rw, r, web.CONTACT_PAGE, http.StatusBadRequest, data)
			return
		}
	}

	outcome := s.contact.Handle(r.Context(), r.Method, r.PostForm)

	switch outcome.State {
	case contact.Success:
		data["successMessage"] = outcome.SuccessMessage
	case contact.Failure:
		data["errorMessage"] = outcome.ErrorMessage
		data["form"] = map[string]string{
			"fullname":    r.PostForm.Get("fullname"),
			"email":       r.PostForm.Get("email"),
			"phonenumber": r.PostForm.Get("phonenumber"),
			"message":     r.PostForm.Get("message"),
		}
	}

	s.render(rw, r, web.CONTACT_PAGE, statusForOutcome(outcome), data)
}

func methodNotAllowedHandler(rw http.ResponseWriter, r *http.Request) {
	http.Error(rw, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func (s *site) csrfFailureHandler(rw http.ResponseWriter, r *http.Request) {
	s.logg.Infof("Rejected %v %v: %v", r.Method, r.URL.Path, csrf.FailureReason(r))

	data := s.templateData(r, "Contact")
	data["errorMessage"] = contact.ERROR_MESSAGE_LABEL + "the form has expired, please try again"
	s.render(rw, r, web.CONTACT_PAGE, http.StatusForbidden, data)
}

func (s *site) healthHandler(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusServiceUnavailable)
		return
	}

	s.writeResponse(rw, ResponsePayload{Success: true, Data: map[string]string{"store": "ok"}}, http.StatusOK)
}

func statusForOutcome(outcome contact.Outcome) int {
	if outcome.State != contact.Failure {
		return http.StatusOK
	}

	switch {
	case errors.Is(outcome.Err, contact.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(outcome.Err, contact.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
