package mocks

import (
	"github.com/sfreiberg/gotwilio"
	"github.com/stretchr/testify/mock"
)

// TwilioClientMock is a mock for Twilio
type TwilioClientMock struct {
	mock.Mock
}

// SendSMS mocks sending Twilio SMS. Return values are optional: an
// *gotwilio.Exception second and an error third.
func (m *TwilioClientMock) SendSMS(from, to, body, statusCallback, applicationSid string) (*gotwilio.SmsResponse, *gotwilio.Exception, error) {
	args := m.Called(from, to, body, statusCallback, applicationSid)
	var exception *gotwilio.Exception
	var err error
	if len(args) > 1 {
		exception, _ = args.Get(1).(*gotwilio.Exception)
	}
	if len(args) > 2 {
		err = args.Error(2)
	}
	return nil, exception, err
}
