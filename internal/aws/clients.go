package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Clients holds the service clients behind the narrow interfaces the stores,
// publisher and metrics depend on.
type Clients struct {
	DynamoDB   DynamoDBAPI
	SQS        SQSAPI
	CloudWatch CloudWatchAPI
}

// NewClients builds every client from one SDK config. The worker only needs
// DynamoDB but gets the full set; construction makes no network calls.
func NewClients(ctx context.Context, s Settings) (*Clients, error) {
	cfg, err := LoadAWSConfig(ctx, s)
	if err != nil {
		return nil, err
	}
	return &Clients{
		DynamoDB:   dynamodb.NewFromConfig(cfg),
		SQS:        sqs.NewFromConfig(cfg),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}, nil
}
