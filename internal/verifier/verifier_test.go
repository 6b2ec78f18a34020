package verifier

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanielng/verify-user-api/internal/models"
)

func defaultRunOptions() RunOptions {
	return RunOptions{
		StackName: "my-stack",
		Region:    "us-east-1",
	}
}

// expectedTestUser reproduces the fixture a seed-1 verifier will generate.
func expectedTestUser() models.TestUser {
	return models.NewTestUser(rand.New(rand.NewSource(1)))
}

func fullyProvisionedClient(user models.TestUser) *mockAWSClient {
	return &mockAWSClient{
		stacks: map[string]*models.StackDescriptor{"my-stack": healthyStack("my-stack")},
		params: map[string]string{"/kiro/my-stack/api-key": "super-secret-key-0042"},
		instances: []models.IdentityInstance{
			{InstanceARN: "arn:aws:sso:::instance/ssoins-1234567890abcdef", IdentityStoreID: "d-9067abc123"},
		},
		users: map[string][]models.DirectoryUser{
			user.Email: {
				{
					UserID:       "9067abc123-user",
					UserName:     user.Email,
					DisplayName:  user.Name,
					PrimaryEmail: user.Email,
				},
			},
		},
	}
}

func TestRun_FullPipelinePasses(t *testing.T) {
	user := expectedTestUser()
	client := fullyProvisionedClient(user)

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodOptions, createUserURL,
		httpmock.NewStringResponder(204, ""))
	registerCreateUserResponder(t, 409, `{"message": "User already exists"}`)

	v, buf, waits := newTestVerifier(client, httpClient)

	err := v.Run(context.Background(), defaultRunOptions())

	require.NoError(t, err)
	assert.Len(t, *waits, 1)
	out := buf.String()
	assert.Contains(t, out, "AWS Account ID: 123456789012")
	assert.Contains(t, out, "AWS Region: us-east-1")
	assert.Contains(t, out, "✓ Stack 'my-stack' exists")
	assert.Contains(t, out, "✓ API key found in Parameter Store")
	assert.Contains(t, out, "✓ API endpoint is accessible")
	assert.Contains(t, out, "✓ Identity Store ID: d-9067abc123")
	assert.Contains(t, out, "All tests passed successfully!")
	assert.Contains(t, out, "✓ Created user: "+user.Name+" ("+user.Email+")")
	// The raw key never reaches the output stream.
	assert.NotContains(t, out, "super-secret-key-0042")
}

func TestRun_CallerIdentityFaultIsUnrecoverable(t *testing.T) {
	client := &mockAWSClient{identityErr: errors.New("no credentials")}

	v, _, _ := newTestVerifier(client, &http.Client{})

	err := v.Run(context.Background(), defaultRunOptions())

	require.Error(t, err)
	var stageErr *StageError
	assert.False(t, errors.As(err, &stageErr))
}

func TestRun_HaltsOnMissingStack(t *testing.T) {
	client := &mockAWSClient{}

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	v, _, waits := newTestVerifier(client, httpClient)

	err := v.Run(context.Background(), defaultRunOptions())

	require.Error(t, err)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "deployment status check", stageErr.Stage)
	assert.Equal(t, "my-stack", stageErr.Subject)

	// Nothing past the failed stage ran.
	assert.Equal(t, 0, client.paramCalls)
	assert.Zero(t, httpmock.GetTotalCallCount())
	assert.Empty(t, *waits)
}

func TestRun_HaltsOnMissingAPIKey(t *testing.T) {
	user := expectedTestUser()
	client := fullyProvisionedClient(user)
	client.params = nil

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	v, _, _ := newTestVerifier(client, httpClient)

	err := v.Run(context.Background(), defaultRunOptions())

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "API key verification", stageErr.Stage)
	assert.Equal(t, "/kiro/my-stack/api-key", stageErr.Subject)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestRun_HaltsOnUnresolvableIdentityStore(t *testing.T) {
	user := expectedTestUser()
	client := fullyProvisionedClient(user)
	client.instances = nil

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder(http.MethodOptions, createUserURL,
		httpmock.NewStringResponder(204, ""))

	v, _, waits := newTestVerifier(client, httpClient)

	err := v.Run(context.Background(), defaultRunOptions())

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "identity store resolution", stageErr.Stage)
	assert.Empty(t, *waits)
}

func TestRun_OverridesSkipResolution(t *testing.T) {
	user := expectedTestUser()
	client := fullyProvisionedClient(user)

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	defer httpmock.DeactivateAndReset()

	const overrideEndpoint = "https://override.example.com/prod"
	httpmock.RegisterResponder(http.MethodOptions, overrideEndpoint+"/create-user",
		httpmock.NewStringResponder(204, ""))
	calls := 0
	httpmock.RegisterResponder(http.MethodPost, overrideEndpoint+"/create-user",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "override-key-9999", req.Header.Get("x-api-key"))
			calls++
			if calls == 1 {
				return httpmock.NewJsonResponse(200, map[string]string{"message": "User created"})
			}
			return httpmock.NewStringResponse(409, `{"message": "User already exists"}`), nil
		})

	v, buf, _ := newTestVerifier(client, httpClient)

	opts := defaultRunOptions()
	opts.EndpointOverride = overrideEndpoint
	opts.APIKeyOverride = "override-key-9999"

	err := v.Run(context.Background(), opts)

	require.NoError(t, err)
	assert.Equal(t, 0, client.paramCalls)
	// Deployment check and identity resolution each fetch fresh; the
	// endpoint-extraction fetch is skipped.
	assert.Equal(t, 2, client.describeCalls)
	assert.Contains(t, buf.String(), "Using API endpoint and key from command line arguments")
	assert.Contains(t, buf.String(), "API Key: over...9999")
	assert.NotContains(t, buf.String(), "override-key-9999")
}

func TestStageError_Message(t *testing.T) {
	err := NewStageError("deployment status check", "my-stack", nil)
	assert.Equal(t, `deployment status check failed for "my-stack"`, err.Error())

	wrapped := NewStageError("API key verification", "/kiro/my-stack/api-key", errors.New("boom"))
	assert.Contains(t, wrapped.Error(), "boom")
	assert.EqualError(t, errors.Unwrap(wrapped), "boom")
}
