package main

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sfreiberg/gotwilio"

	"github.com/City-Bureau/seerchat/pkg/config"
	"github.com/City-Bureau/seerchat/pkg/svc"
)

func handler(request events.SNSEvent) error {
	if len(request.Records) <= 0 {
		return nil
	}

	twilio := config.TwilioFromEnv()
	client := gotwilio.NewTwilioClient(twilio.AccountSID, twilio.AuthToken)
	sender := svc.NewAlertSender(client, twilio.From)

	for _, record := range request.Records {
		var alert svc.Alert
		if err := json.Unmarshal([]byte(record.SNS.Message), &alert); err != nil {
			return err
		}
		if err := sender.Alert(alert); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	lambda.Start(handler)
}
