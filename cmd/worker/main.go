package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-order-pricing/internal/aws"
	"github.com/imrishuroy/go-order-pricing/internal/checkout"
	"github.com/imrishuroy/go-order-pricing/internal/config"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	svc := checkout.NewService(checkout.ConfigFromEnv(cfg))
	if err := svc.Seed(); err != nil {
		log.WithError(err).Fatal("Failed to seed catalog")
	}

	var alerts AlertSink
	if !cfg.RunLocal {
		clients, err := aws.NewClients(context.Background(), aws.ClientOptions{
			Region:     cfg.AWSRegion,
			Endpoint:   cfg.AWSEndpoint,
			CloudWatch: true,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to init aws clients")
		}
		alerts = aws.NewAlertPublisher(clients.CloudWatch, cfg.MetricsNamespace)
	}
	p := NewProcessor(svc, alerts)

	// RUN_LOCAL=true simulates a single SQS event built from LOCAL_SQS_BODY.
	if cfg.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"batch_id":"local-batch-1","low_stock_threshold":30,"max_price":500,"records":[{"id":101,"stock":20},{"id":205,"stock":-5},{"id":300,"stock":100}]}`
		}
		resp, err := p.Handle(context.Background(), events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.WithError(err).WithField("failures", len(resp.BatchItemFailures)).Fatal("Local handler error")
		}
		for _, line := range svc.AuditLines() {
			log.Info(line)
		}
		return
	}

	lambda.Start(p.Handle)
}
