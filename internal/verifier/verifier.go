package verifier

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/nathanielng/verify-user-api/internal/models"
	"github.com/nathanielng/verify-user-api/internal/output"
)

const (
	// Stack output holding the API Gateway endpoint URL.
	apiEndpointOutputKey = "ApiEndpoint"

	// Stack parameter holding the Identity Center instance ARN.
	identityCenterParamKey = "IdentityCenterInstanceArn"

	createUserPath = "/create-user"
	apiKeyHeader   = "x-api-key"

	// Timeout on HTTP calls to the endpoint under test. AWS service calls
	// rely on the SDK's default behavior.
	requestTimeout = 10 * time.Second

	// Single fixed wait before verifying the created user in the identity
	// store. Not a retry loop; propagation slower than this fails the run.
	consistencyWait = 2 * time.Second
)

// SecretPath returns the Parameter Store path holding the stack's API key.
func SecretPath(stackName string) string {
	return fmt.Sprintf("/kiro/%s/api-key", stackName)
}

// AWSClient defines the interface for AWS operations needed by the verifier
type AWSClient interface {
	CallerIdentity(ctx context.Context) (*models.CallerIdentity, error)
	DescribeStack(ctx context.Context, stackName string) (*models.StackDescriptor, error)
	GetParameter(ctx context.Context, name string) (string, error)
	ListIdentityInstances(ctx context.Context) ([]models.IdentityInstance, error)
	FindUsersByUserName(ctx context.Context, identityStoreID, userName string) ([]models.DirectoryUser, error)
}

// Verifier runs the deployment verification pipeline: deployment status,
// API key, endpoint reachability, identity store resolution, then the
// end-to-end create-user workflow. Stages run strictly in order and the
// pipeline halts at the first failure.
type Verifier struct {
	client AWSClient
	http   *http.Client
	report *output.Reporter
	rng    *rand.Rand
	wait   func(ctx context.Context, d time.Duration)
}

// New creates a verifier with the given collaborators. The http.Client is
// used for every request against the endpoint under test.
func New(client AWSClient, httpClient *http.Client, report *output.Reporter) *Verifier {
	return &Verifier{
		client: client,
		http:   httpClient,
		report: report,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		wait:   sleepWait,
	}
}

func sleepWait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// RunOptions configures a single verification run.
type RunOptions struct {
	StackName string
	Region    string

	// EndpointOverride and APIKeyOverride, when both set, replace the values
	// otherwise resolved from stack outputs and Parameter Store.
	EndpointOverride string
	APIKeyOverride   string
}

func (o RunOptions) hasOverrides() bool {
	return o.EndpointOverride != "" && o.APIKeyOverride != ""
}

// Run executes the full pipeline. It returns nil when every stage passes, a
// *StageError when a stage reports failure, and any other error for
// unrecoverable faults.
func (v *Verifier) Run(ctx context.Context, opts RunOptions) error {
	identity, err := v.client.CallerIdentity(ctx)
	if err != nil {
		return fmt.Errorf("error getting AWS identity: %w", err)
	}
	v.report.Plain("AWS Account ID: %s", identity.AccountID)
	v.report.Plain("AWS Region: %s", opts.Region)
	v.report.Blank()

	ok, err := v.CheckStackDeployed(ctx, opts.StackName)
	if err != nil {
		// Descriptor-service faults are unrecoverable: nothing downstream
		// can proceed without a descriptor.
		return err
	}
	if !ok {
		return NewStageError("deployment status check", opts.StackName, nil)
	}
	v.report.Blank()

	var endpoint, apiKey string
	if opts.hasOverrides() {
		endpoint = opts.EndpointOverride
		apiKey = opts.APIKeyOverride
		v.report.Plain("Using API endpoint and key from command line arguments")
		v.report.Info("API Endpoint: %s", endpoint)
		v.report.Info("API Key: %s", MaskAPIKey(apiKey))
		v.report.Blank()

		if !v.ProbeEndpoint(ctx, endpoint) {
			return NewStageError("endpoint reachability check", endpoint, nil)
		}
	} else {
		apiKey, ok = v.CheckAPIKeyParameter(ctx, opts.StackName)
		if !ok {
			return NewStageError("API key verification", SecretPath(opts.StackName), nil)
		}
		v.report.Blank()

		endpoint, ok = v.CheckEndpointAccessible(ctx, opts.StackName)
		if !ok {
			return NewStageError("endpoint reachability check", opts.StackName, nil)
		}
	}
	v.report.Blank()

	v.report.Section("Step 1: Getting Identity Store ID")
	identityStoreID, ok := v.ResolveIdentityStoreID(ctx, opts.StackName)
	if !ok {
		return NewStageError("identity store resolution", opts.StackName, nil)
	}
	v.report.Pass("Identity Store ID: %s", identityStoreID)
	v.report.Blank()

	user := models.NewTestUser(v.rng)
	if !v.RunEndToEnd(ctx, endpoint, apiKey, identityStoreID, user) {
		return NewStageError("end-to-end workflow", user.Email, nil)
	}

	v.report.Rule()
	v.report.Plain("All tests passed successfully!")
	v.report.Pass("Created user: %s (%s)", user.Name, user.Email)
	v.report.Pass("Verified user exists in Identity Center")
	v.report.Pass("Duplicate user creation handled gracefully")
	return nil
}
