package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathanielng/verify-user-api/internal/aws"
	"github.com/nathanielng/verify-user-api/internal/config"
	"github.com/nathanielng/verify-user-api/internal/output"
	"github.com/nathanielng/verify-user-api/internal/verifier"
)

var (
	profile   string
	region    string
	stackName string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "verify_user_api [endpoint api-key]",
		Short: "Verify a deployed user-management API stack end to end",
		Long: `verify_user_api checks that the CloudFormation stack deployed successfully,
that its API key is published in Parameter Store, that the API endpoint is
reachable, and that creating a user lands in IAM Identity Center while a
duplicate submission is rejected.

The endpoint and API key are resolved from the stack unless both are passed
as positional arguments.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runCommand,
	}

	rootCmd.Flags().StringVarP(&profile, "profile", "p", "default", "AWS profile name")
	rootCmd.Flags().StringVarP(&region, "region", "r", "", "AWS region name (default: AWS_DEFAULT_REGION or us-east-1)")
	rootCmd.Flags().StringVarP(&stackName, "stack-name", "s", config.DefaultStackName, "CloudFormation stack name to verify")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		// Stage failures were already reported line by line; only faults
		// carry detail worth repeating here.
		var stageErr *verifier.StageError
		if !errors.As(err, &stageErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := buildConfig(args)
	if err != nil {
		return err
	}

	client, err := aws.CreateClient(ctx, aws.AuthConfig{
		Profile: profile,
		Region:  cfg.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	report := output.NewReporter(cmd.OutOrStdout())
	v := verifier.New(client, &http.Client{}, report)

	opts := verifier.RunOptions{
		StackName: cfg.StackName,
		Region:    cfg.Region,
	}
	if cfg.Overrides != nil {
		opts.EndpointOverride = cfg.Overrides.Endpoint
		opts.APIKeyOverride = cfg.Overrides.APIKey
	}

	return v.Run(ctx, opts)
}

// buildConfig assembles and validates configuration from flags and args
func buildConfig(args []string) (*config.Config, error) {
	overrides, err := config.ParseOverrides(args)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{
		Profile:   profile,
		Region:    config.ResolveRegion(region),
		StackName: stackName,
		Overrides: overrides,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
