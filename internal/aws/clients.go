package aws

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ErrNoClients is returned when ClientOptions asks for no service client.
var ErrNoClients = errors.New("no aws clients requested")

// ClientOptions picks the region, an optional endpoint override (LocalStack, DynamoDB Local) and
// the service clients a binary needs. The API wants DynamoDB and SQS; the stock worker only
// CloudWatch.
type ClientOptions struct {
	Region     string
	Endpoint   string
	DynamoDB   bool
	SQS        bool
	CloudWatch bool
}

// Clients holds the requested service clients. Clients that were not requested are nil.
type Clients struct {
	Region     string
	DynamoDB   DynamoDBAPI
	SQS        SQSAPI
	CloudWatch CloudWatchAPI
}

// NewClients loads one shared config and builds only the clients opts asks for.
func NewClients(ctx context.Context, opts ClientOptions) (*Clients, error) {
	if !opts.DynamoDB && !opts.SQS && !opts.CloudWatch {
		return nil, ErrNoClients
	}
	cfg, err := LoadAWSConfig(ctx, opts.Region, opts.Endpoint)
	if err != nil {
		return nil, err
	}

	c := &Clients{Region: cfg.Region}
	if opts.DynamoDB {
		c.DynamoDB = dynamodb.NewFromConfig(cfg)
	}
	if opts.SQS {
		c.SQS = sqs.NewFromConfig(cfg)
	}
	if opts.CloudWatch {
		c.CloudWatch = cloudwatch.NewFromConfig(cfg)
	}
	return c, nil
}
