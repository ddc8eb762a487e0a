package mocks

import (
	"github.com/stretchr/testify/mock"
)

// SNSMock is a mock for publishing to SNS
type SNSMock struct {
	mock.Mock
}

// Publish mocks publishing a message to a topic and feed
func (m *SNSMock) Publish(message, topicArn, feed string) error {
	args := m.Called(message, topicArn, feed)
	if len(args) > 0 {
		return args.Error(0)
	}
	return nil
}
