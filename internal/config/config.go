package config

import (
	"fmt"
	"os"
	"strings"
)

// DefaultRegion is used when AWS_DEFAULT_REGION is not set.
const DefaultRegion = "us-east-1"

// DefaultStackName is the stack the harness verifies unless told otherwise.
const DefaultStackName = "kiro-user-management-api"

// Config holds the application configuration
type Config struct {
	Profile   string
	Region    string
	StackName string

	// Overrides carries the optional positional endpoint/api-key pair.
	Overrides *Overrides
}

// Overrides holds a caller-supplied endpoint and API key. When present, the
// harness skips resolving them from CloudFormation and Parameter Store.
type Overrides struct {
	Endpoint string
	APIKey   string
}

// ResolveRegion returns the explicitly requested region, falling back to
// AWS_DEFAULT_REGION and then to DefaultRegion.
func ResolveRegion(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("AWS_DEFAULT_REGION"); env != "" {
		return env
	}
	return DefaultRegion
}

// ParseOverrides validates the positional arguments: either none or exactly
// an endpoint and an API key.
func ParseOverrides(args []string) (*Overrides, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 2:
		endpoint := strings.TrimRight(args[0], "/")
		if endpoint == "" {
			return nil, fmt.Errorf("endpoint argument cannot be empty")
		}
		if args[1] == "" {
			return nil, fmt.Errorf("api-key argument cannot be empty")
		}
		return &Overrides{Endpoint: endpoint, APIKey: args[1]}, nil
	default:
		return nil, fmt.Errorf("expected zero or two arguments [endpoint api-key], got %d", len(args))
	}
}

// Validate checks the assembled configuration
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region cannot be empty")
	}
	if c.StackName == "" {
		return fmt.Errorf("stack name cannot be empty")
	}
	return nil
}
