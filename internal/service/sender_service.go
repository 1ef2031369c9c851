package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type EmailSender interface {
	SendEmail(ctx context.Context, toEmail, toName, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, toNumber, body string) error
}

type SendGridSender struct {
	FromEmail string
	FromName  string
	client    *sendgrid.Client
	log       *logrus.Logger
}

// NewSendGridSender returns nil when SendGrid is not configured.
func NewSendGridSender(apiKey, fromEmail, fromName string, log *logrus.Logger) *SendGridSender {
	if apiKey == "" || fromEmail == "" {
		log.Warn("SENDGRID_API_KEY or SENDGRID_FROM_EMAIL not set, emails will not be sent")
		return nil
	}
	return &SendGridSender{
		FromEmail: fromEmail,
		FromName:  fromName,
		client:    sendgrid.NewSendClient(apiKey),
		log:       log,
	}
}

func (s *SendGridSender) SendEmail(ctx context.Context, toEmail, toName, subject, plainText, html string) error {
	from := mail.NewEmail(s.FromName, s.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", toEmail, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	s.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject, "status": resp.StatusCode}).Debug("email sent")
	return nil
}

type TwilioSender struct {
	FromNumber string
	client     *twilio.RestClient
	log        *logrus.Logger
}

// NewTwilioSender returns nil when Twilio is not configured.
func NewTwilioSender(accountSID, authToken, fromNumber string, log *logrus.Logger) *TwilioSender {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		log.Warn("Twilio credentials not set, SMS will not be sent")
		return nil
	}
	return &TwilioSender{
		FromNumber: fromNumber,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   accountSID,
			Password:   authToken,
			AccountSid: accountSID,
		}),
		log: log,
	}
}

// SendSMS sends one message. The twilio client takes no context.
func (s *TwilioSender) SendSMS(_ context.Context, toNumber, body string) error {
	if !strings.HasPrefix(toNumber, "+") {
		s.log.WithField("to", toNumber).Warn("phone number is not E.164, SMS may fail")
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.FromNumber)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", toNumber, err)
	}
	if resp != nil && resp.Sid != nil {
		s.log.WithFields(logrus.Fields{"to": toNumber, "sid": *resp.Sid}).Debug("sms sent")
	}
	return nil
}
