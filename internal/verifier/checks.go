package verifier

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nathanielng/verify-user-api/internal/aws"
)

// maskedPlaceholder is returned for values too short to partially reveal.
const maskedPlaceholder = "****"

// MaskAPIKey redacts the middle of an API key for display, revealing the
// first 4 and last 4 characters. Values shorter than 8 characters reveal
// nothing.
func MaskAPIKey(key string) string {
	if len(key) < 8 {
		return maskedPlaceholder
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// CheckStackDeployed verifies the stack exists and reached a terminal
// _COMPLETE status. The returned bool is the stage outcome; a non-nil error
// is an unrecoverable descriptor-service fault.
func (v *Verifier) CheckStackDeployed(ctx context.Context, stackName string) (bool, error) {
	desc, err := v.client.DescribeStack(ctx, stackName)
	if err != nil {
		if aws.IsNotFound(err) {
			v.report.Fail("Stack '%s' does not exist", stackName)
			return false, nil
		}
		return false, err
	}

	v.report.Pass("Stack '%s' exists", stackName)
	v.report.Info("Status: %s", desc.Status)
	v.report.Info("Created: %s", desc.CreatedAt.Format(time.RFC3339))

	// Suffix match admits rollback states like ROLLBACK_COMPLETE; that
	// matches the deployed checker's historical behavior.
	if strings.HasSuffix(desc.Status, "_COMPLETE") {
		v.report.Pass("Stack is in COMPLETE status")
		return true, nil
	}

	v.report.Fail("Stack is not in COMPLETE status")
	return false, nil
}

// CheckAPIKeyParameter fetches the stack's API key from Parameter Store.
// The raw value is returned for use by later stages; only the masked form
// is ever reported.
func (v *Verifier) CheckAPIKeyParameter(ctx context.Context, stackName string) (string, bool) {
	paramName := SecretPath(stackName)

	value, err := v.client.GetParameter(ctx, paramName)
	if err != nil {
		if aws.IsNotFound(err) {
			v.report.Fail("API key not found in Parameter Store: %s", paramName)
		} else {
			v.report.Fail("Error retrieving API key: %v", err)
		}
		return "", false
	}

	v.report.Pass("API key found in Parameter Store")
	v.report.Info("Parameter: %s", paramName)
	v.report.Info("API Key: %s", MaskAPIKey(value))
	return value, true
}

// CheckEndpointAccessible locates the ApiEndpoint stack output and probes
// it. Returns the endpoint URL for use by the end-to-end stage.
func (v *Verifier) CheckEndpointAccessible(ctx context.Context, stackName string) (string, bool) {
	desc, err := v.client.DescribeStack(ctx, stackName)
	if err != nil {
		v.report.Fail("Error checking API endpoint: %v", err)
		return "", false
	}

	endpoint, found := desc.Output(apiEndpointOutputKey)
	if !found {
		v.report.Fail("API endpoint not found in stack outputs")
		return "", false
	}

	v.report.Pass("API endpoint found: %s", endpoint)
	if !v.ProbeEndpoint(ctx, endpoint) {
		return "", false
	}
	return endpoint, true
}

// ProbeEndpoint issues an OPTIONS preflight against the create-user path.
// Any response counts as accessible regardless of status code; only
// transport-level failures fail the probe.
func (v *Verifier) ProbeEndpoint(ctx context.Context, endpoint string) bool {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, endpoint+createUserPath, nil)
	if err != nil {
		v.report.Fail("API endpoint is not accessible: %v", err)
		return false
	}

	resp, err := v.http.Do(req)
	if err != nil {
		v.report.Fail("API endpoint is not accessible: %v", err)
		return false
	}
	defer resp.Body.Close()

	v.report.Pass("API endpoint is accessible (Status: %d)", resp.StatusCode)
	return true
}

// ResolveIdentityStoreID maps the stack's IdentityCenterInstanceArn
// parameter to the identity store ID of the matching instance. With more
// than one matching instance the first match wins.
func (v *Verifier) ResolveIdentityStoreID(ctx context.Context, stackName string) (string, bool) {
	desc, err := v.client.DescribeStack(ctx, stackName)
	if err != nil {
		v.report.Fail("Error getting Identity Store ID: %v", err)
		return "", false
	}

	instanceARN, found := desc.Parameter(identityCenterParamKey)
	if !found {
		v.report.Fail("Could not find %s parameter", identityCenterParamKey)
		return "", false
	}

	instances, err := v.client.ListIdentityInstances(ctx)
	if err != nil {
		v.report.Fail("Error getting Identity Store ID: %v", err)
		return "", false
	}

	for _, inst := range instances {
		if inst.InstanceARN == instanceARN {
			return inst.IdentityStoreID, true
		}
	}

	v.report.Fail("Could not find Identity Store ID")
	return "", false
}
