package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-order-pricing/internal/aws"
	"github.com/imrishuroy/go-order-pricing/internal/checkout"
	"github.com/imrishuroy/go-order-pricing/internal/config"
	"github.com/imrishuroy/go-order-pricing/internal/handlers"
	"github.com/imrishuroy/go-order-pricing/internal/idempotency"
	"github.com/imrishuroy/go-order-pricing/internal/metrics"
	"github.com/imrishuroy/go-order-pricing/internal/observability"
	"github.com/imrishuroy/go-order-pricing/internal/orders"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

func setupRouter(svc *checkout.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.PrometheusMiddleware(config.ServiceName))

	// health reports the breaker guarding the event queue; an open circuit is degraded, not down.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"service":           config.ServiceName,
			"publisher_circuit": svc.PublisherState(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(r, svc)

	return r
}

// serviceOptions wires the AWS-backed archive, idempotency store and event queue when configured.
func serviceOptions(ctx context.Context, cfg *config.Config) ([]checkout.Option, error) {
	if !cfg.Persistence() && cfg.OrdersQueueURL == "" {
		return nil, nil
	}
	clients, err := aws.NewClients(ctx, aws.ClientOptions{
		Region:   cfg.AWSRegion,
		Endpoint: cfg.AWSEndpoint,
		DynamoDB: cfg.Persistence(),
		SQS:      cfg.OrdersQueueURL != "",
	})
	if err != nil {
		return nil, err
	}

	var opts []checkout.Option
	if cfg.Persistence() {
		opts = append(opts, checkout.WithArchive(orders.NewStore(clients.DynamoDB, cfg.OrdersTable)))
		if cfg.IdempotencyTable != "" {
			opts = append(opts, checkout.WithIdempotency(idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, 48*time.Hour)))
		}
	}
	if cfg.OrdersQueueURL != "" {
		opts = append(opts, checkout.WithEvents(aws.NewPublisher(clients.SQS, cfg.OrdersQueueURL)))
	}
	return opts, nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	shutdown, err := observability.SetupTracingSDK(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Tracing disabled")
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("Tracing shutdown failed")
		}
	}()

	opts, err := serviceOptions(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to init aws clients")
	}
	svc := checkout.NewService(checkout.ConfigFromEnv(cfg), opts...)
	if err := svc.Seed(); err != nil {
		log.WithError(err).Fatal("Failed to seed catalog")
	}

	r := setupRouter(svc)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if cfg.RunLocal {
		addr := ":" + cfg.Port
		log.WithFields(log.Fields{
			"addr":        addr,
			"persistence": cfg.Persistence(),
		}).Info("Running local server")
		if err := r.Run(addr); err != nil {
			log.WithError(err).Fatal("Failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
