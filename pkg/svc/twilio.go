package svc

import (
	"fmt"
	"unicode/utf8"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sfreiberg/gotwilio"

	"github.com/City-Bureau/seerchat/pkg/locale"
)

// maxPreviewLength keeps alerts within a couple of SMS segments
const maxPreviewLength = 120

// TwilioClient generalizes access to Twilio
type TwilioClient interface {
	SendSMS(string, string, string, string, string) (*gotwilio.SmsResponse, *gotwilio.Exception, error)
}

// AlertSender texts seers about new messages through Twilio
type AlertSender struct {
	Client TwilioClient
	From   string // The Twilio automated number
}

// NewAlertSender is a constructor for AlertSender structs
func NewAlertSender(client TwilioClient, from string) *AlertSender {
	return &AlertSender{
		Client: client,
		From:   from,
	}
}

// Alert sends the localized SMS for alert
func (s *AlertSender) Alert(alert Alert) error {
	if alert.To == "" {
		return fmt.Errorf("alert for message %s has no recipient", alert.Message.ID)
	}
	localizer := locale.LoadLocalizer(alert.Language)
	return s.SendSMS(alert.To, AlertBody(localizer, alert.Message.Body))
}

// SendSMS sends body to a phone number, turning Twilio exceptions into errors
func (s *AlertSender) SendSMS(to, body string) error {
	_, exception, err := s.Client.SendSMS(s.From, to, body, "", "")
	if err != nil {
		return err
	}
	if exception != nil {
		return fmt.Errorf("twilio error %d: %s", exception.Code, exception.Message)
	}
	return nil
}

// AlertBody renders the alert text with a shortened preview of the message
func AlertBody(localizer *i18n.Localizer, body string) string {
	if utf8.RuneCountInString(body) > maxPreviewLength {
		body = string([]rune(body)[:maxPreviewLength]) + "…"
	}
	return locale.Text(localizer, "sms-alert", map[string]string{"Body": body})
}
