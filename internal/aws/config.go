package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

const defaultRegion = "us-east-1"

// Settings selects the region and, for LocalStack and friends, an endpoint
// override. Empty fields fall back to the SDK defaults.
type Settings struct {
	Region           string
	EndpointOverride string
}

// LoadAWSConfig builds the SDK config for s.
func LoadAWSConfig(ctx context.Context, s Settings) (sdkaws.Config, error) {
	region := s.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if s.EndpointOverride != "" {
		opts = append(opts, config.WithBaseEndpoint(s.EndpointOverride))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}
