package email

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrymomot/filevault/pkg/validator"
)

// EmailSender sends transactional email.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks that the message can be delivered.
func (p SendEmailParams) Validate() error {
	if err := validator.Apply(
		validator.ValidEmail("send_to", p.SendTo),
		validator.RequiredString("subject", p.Subject),
		validator.RequiredString("body_html", strings.TrimSpace(p.BodyHTML)),
	); err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}

// New picks the Postmark client when tokens are configured and DevSender otherwise.
func New(cfg Config) (EmailSender, error) {
	if cfg.UsePostmark() {
		return NewPostmarkClient(cfg)
	}
	return NewDevSender(cfg.DevDir), nil
}
