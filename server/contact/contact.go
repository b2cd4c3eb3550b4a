// Package contact implements the contact form submission path: it checks the
// submitted fields, writes one message to the store and reports an Outcome
// for the presenter to render.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/Daskott/folio/server/metrics"
	"github.com/Daskott/folio/server/models"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

const (
	SUCCESS_MESSAGE     = "Form submission successful!"
	ERROR_MESSAGE_LABEL = "An error occurred: "
)

// State is the terminal state a submission ends in.
type State int

const (
	RenderForm State = iota
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case RenderForm:
		return "render_form"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is what the presenter needs to render the contact page. At most one
// of SuccessMessage and ErrorMessage is set.
type Outcome struct {
	State          State
	SuccessMessage string
	ErrorMessage   string
	Err            error
}

// MessageStore persists contact messages.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.ContactMessage) error
}

// Notifier tells the site owner about a stored message.
type Notifier interface {
	NotifyContactMessage(ctx context.Context, msg *models.ContactMessage) error
}

type submission struct {
	FullName    string `form:"fullname" validate:"required,notblank"`
	Email       string `form:"email" validate:"required,notblank"`
	PhoneNumber string `form:"phonenumber"`
	Message     string `form:"message" validate:"required,notblank"`
}

type Handler struct {
	store    MessageStore
	notifier Notifier
	validate *validator.Validate
	logg     *zap.SugaredLogger
}

// NewHandler returns a Handler writing to store. notifier may be nil.
func NewHandler(store MessageStore, notifier Notifier, logg *zap.SugaredLogger) *Handler {
	return &Handler{
		store:    store,
		notifier: notifier,
		validate: newValidator(),
		logg:     logg,
	}
}

// Handle runs one contact form request. GET only asks for an empty form; POST
// validates form, saves one message and reports success or failure. Failures
// are never returned as errors: they are carried in the Outcome for display.
func (h *Handler) Handle(ctx context.Context, method string, form url.Values) Outcome {
	switch method {
	case http.MethodGet, http.MethodHead:
		return Outcome{State: RenderForm}
	case http.MethodPost:
	default:
		return failure(ErrMethodNotAllowed)
	}

	sub := submissionFromForm(form)
	if err := h.checkRequiredFields(sub); err != nil {
		h.logg.Infof("Rejected contact submission: %v", err)
		metrics.RecordContactSubmission(metrics.OUTCOME_INVALID)
		return failure(err)
	}

	msg := &models.ContactMessage{
		FullName:     sub.FullName,
		EmailAddress: sub.Email,
		PhoneNumber:  sub.PhoneNumber,
		Message:      sub.Message,
	}

	if err := h.save(ctx, msg); err != nil {
		h.logg.Errorf("Unable to store contact message: %v", err)
		metrics.RecordContactSubmission(metrics.OUTCOME_STORE_ERROR)
		return failure(&StoreError{Err: err})
	}

	h.logg.Infof("Stored contact message %v from %q", msg.ID, msg.EmailAddress)
	metrics.RecordContactSubmission(metrics.OUTCOME_SUCCESS)

	if h.notifier != nil {
		if err := h.notifier.NotifyContactMessage(ctx, msg); err != nil {
			h.logg.Warnf("Unable to notify owner about contact message %v: %v", msg.ID, err)
		}
	}

	return Outcome{State: Success, SuccessMessage: SUCCESS_MESSAGE}
}

// save keeps a panicking store from taking the request down with it.
func (h *Handler) save(ctx context.Context, msg *models.ContactMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store panicked: %v", r)
		}
	}()

	return h.store.SaveMessage(ctx, msg)
}

func (h *Handler) checkRequiredFields(sub submission) error {
	err := h.validate.Struct(sub)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	missing := &MissingFieldError{}
	for _, fieldErr := range validationErrs {
		missing.Fields = append(missing.Fields, fieldErr.Field())
	}

	return missing
}

func failure(err error) Outcome {
	return Outcome{
		State:        Failure,
		ErrorMessage: ERROR_MESSAGE_LABEL + err.Error(),
		Err:          err,
	}
}

func submissionFromForm(form url.Values) submission {
	return submission{
		FullName:    form.Get("fullname"),
		Email:       form.Get("email"),
		PhoneNumber: form.Get("phonenumber"),
		Message:     form.Get("message"),
	}
}

func newValidator() *validator.Validate {
	validate := validator.New()

	// Report form field names rather than struct field names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("form")
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return validate
}
