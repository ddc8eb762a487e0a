package svc

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// NewMessageFeed is the feed name for alerting a seer about a new message
const NewMessageFeed = "seer_new_message"

// SNS is an interface for the SNSClient and associated mock
type SNS interface {
	Publish(string, string, string) error
}

// SNSClient implements SNS for a generic way of managing the SNS service
type SNSClient struct {
	Client snsiface.SNSAPI
}

// NewSNSClient creates an SNSClient object
func NewSNSClient() *SNSClient {
	client := sns.New(session.New())
	return &SNSClient{Client: client}
}

// Publish sends a message to a given topic and feed
func (c *SNSClient) Publish(message string, topicArn string, feed string) error {
	_, err := c.Client.Publish(&sns.PublishInput{
		Message:  aws.String(message),
		TopicArn: aws.String(topicArn),
		MessageAttributes: map[string]*sns.MessageAttributeValue{
			"feed": &sns.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(feed),
			},
		},
	})
	return err
}

// Alert is published on the new message feed for the SMS Lambda
type Alert struct {
	To       string       `json:"to"`
	Language string       `json:"language,omitempty"`
	Message  chat.Message `json:"message"`
}

// SNSNotifier publishes new counterpart messages so an SMS alert can be sent
type SNSNotifier struct {
	Client   SNS
	TopicArn string
	To       string
	Language string
}

// Notify publishes message as an Alert on the new message feed
func (n *SNSNotifier) Notify(ctx context.Context, message chat.Message) error {
	alertJSON, err := json.Marshal(Alert{To: n.To, Language: n.Language, Message: message})
	if err != nil {
		return err
	}
	return n.Client.Publish(string(alertJSON), n.TopicArn, NewMessageFeed)
}
