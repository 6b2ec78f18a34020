package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Profile string
	Region  string
}

// CreateClient creates real AWS service clients from a shared configuration
func CreateClient(ctx context.Context, auth AuthConfig) (*Client, error) {
	var opts []func(*config.LoadOptions) error

	if auth.Profile != "" && auth.Profile != "default" {
		opts = append(opts, config.WithSharedConfigProfile(auth.Profile))
	}

	if auth.Region != "" {
		opts = append(opts, config.WithRegion(auth.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %q in region %q: %w", auth.Profile, auth.Region, err)
	}

	return NewClient(
		cloudformation.NewFromConfig(cfg),
		ssm.NewFromConfig(cfg),
		ssoadmin.NewFromConfig(cfg),
		identitystore.NewFromConfig(cfg),
		sts.NewFromConfig(cfg),
		auth.Region,
	), nil
}
