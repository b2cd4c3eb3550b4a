package twilio

import (
	"context"
	"fmt"
	"strings"

	"github.com/Daskott/folio/server/models"
	"github.com/Daskott/folio/shared"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Longest message body sent, in characters. Longer visitor messages are cut.
const MAX_BODY_LENGTH = 320

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type ClientWrapper struct {
	messages messageCreator
	config   shared.TwilioConfig
	siteName string
}

func NewClient(config shared.TwilioConfig, siteName string) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &ClientWrapper{
		messages: client.ApiV2010,
		config:   config,
		siteName: siteName,
	}
}

func (cw *ClientWrapper) SendMessage(to, msg string) error {
	params := &openapi.CreateMessageParams{}
	params.SetMessagingServiceSid(cw.config.MessagingServiceSid)
	params.SetTo(to)
	params.SetBody(msg)

	resp, err := cw.messages.CreateMessage(params)
	if err != nil {
		return err
	}

	if resp != nil && resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
		return fmt.Errorf("twilio rejected message: %v", *resp.ErrorMessage)
	}

	return nil
}

// NotifyContactMessage texts the site owner a summary of a stored contact message.
func (cw *ClientWrapper) NotifyContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return cw.SendMessage(cw.config.OwnerNumber, contactMessageBody(cw.siteName, msg))
}

func contactMessageBody(siteName string, msg *models.ContactMessage) string {
	from := fmt.Sprintf("%v <%v>", msg.FullName, msg.EmailAddress)
	if msg.PhoneNumber != "" {
		from = fmt.Sprintf("%v, %v", from, msg.PhoneNumber)
	}

	body := fmt.Sprintf("New message on %v from %v: %v", siteName, from, strings.TrimSpace(msg.Message))

	runes := []rune(body)
	if len(runes) > MAX_BODY_LENGTH {
		body = string(runes[:MAX_BODY_LENGTH-3]) + "..."
	}

	return body
}
