package main

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"

	"github.com/City-Bureau/seerchat/pkg/config"
	"github.com/City-Bureau/seerchat/pkg/selection"
)

func handler(request events.CloudWatchEvent) error {
	db, err := gorm.Open("postgres", config.RDSFromEnv().PostgresDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	return selection.Migrate(db)
}

func main() {
	lambda.Start(handler)
}
