package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	identitystoretypes "github.com/aws/aws-sdk-go-v2/service/identitystore/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/time/rate"

	"github.com/nathanielng/verify-user-api/internal/models"
)

// Service API interfaces enable mocking for testing.

// CloudFormationAPI defines the interface for CloudFormation operations
type CloudFormationAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// SSMAPI defines the interface for Parameter Store operations
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSOAdminAPI defines the interface for Identity Center instance operations
type SSOAdminAPI interface {
	ListInstances(ctx context.Context, params *ssoadmin.ListInstancesInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListInstancesOutput, error)
}

// IdentityStoreAPI defines the interface for identity store user queries
type IdentityStoreAPI interface {
	ListUsers(ctx context.Context, params *identitystore.ListUsersInput, optFns ...func(*identitystore.Options)) (*identitystore.ListUsersOutput, error)
}

// STSAPI defines the interface for caller-identity lookups
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Client wraps the AWS service clients the harness consumes behind a shared
// rate limiter. All calls are read-only; the client is safe to construct once
// and reuse for the process lifetime.
type Client struct {
	cf      CloudFormationAPI
	ssm     SSMAPI
	sso     SSOAdminAPI
	ids     IdentityStoreAPI
	sts     STSAPI
	limiter *rate.Limiter
	region  string
}

// NewClient creates a new AWS client wrapper.
// Conservative rate limiting: 5 requests per second with burst of 10.
func NewClient(cf CloudFormationAPI, ssmAPI SSMAPI, sso SSOAdminAPI, ids IdentityStoreAPI, stsAPI STSAPI, region string) *Client {
	return &Client{
		cf:      cf,
		ssm:     ssmAPI,
		sso:     sso,
		ids:     ids,
		sts:     stsAPI,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		region:  region,
	}
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit context cancelled",
			Cause:   err,
		}
	}
	return nil
}

// CallerIdentity returns the AWS account and principal the harness runs as.
func (c *Client) CallerIdentity(ctx context.Context) (*models.CallerIdentity, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, classifyError(err, c.region)
	}

	return &models.CallerIdentity{
		AccountID: strVal(out.Account),
		ARN:       strVal(out.Arn),
	}, nil
}

// DescribeStack fetches a fresh descriptor for the named stack. An absent
// stack is reported as ErrNotFound; any other fault keeps its classification.
func (c *Client) DescribeStack(ctx context.Context, stackName string) (*models.StackDescriptor, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	out, err := c.cf.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: &stackName,
	})
	if err != nil {
		if isStackMissing(err) {
			return nil, notFoundError(fmt.Sprintf("stack %q does not exist", stackName), err)
		}
		return nil, classifyError(err, c.region)
	}

	if len(out.Stacks) == 0 {
		return nil, notFoundError(fmt.Sprintf("stack %q does not exist", stackName), nil)
	}

	stack := out.Stacks[0]
	desc := &models.StackDescriptor{
		Name:       strVal(stack.StackName),
		Status:     string(stack.StackStatus),
		Outputs:    make(map[string]string),
		Parameters: make(map[string]string),
	}
	if stack.CreationTime != nil {
		desc.CreatedAt = *stack.CreationTime
	}
	for _, o := range stack.Outputs {
		if o.OutputKey != nil && o.OutputValue != nil {
			desc.Outputs[*o.OutputKey] = *o.OutputValue
		}
	}
	for _, p := range stack.Parameters {
		if p.ParameterKey != nil && p.ParameterValue != nil {
			desc.Parameters[*p.ParameterKey] = *p.ParameterValue
		}
	}

	return desc, nil
}

// GetParameter fetches a decrypted Parameter Store value. A missing parameter
// is reported as ErrNotFound.
func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	decrypt := true
	out, err := c.ssm.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &decrypt,
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", notFoundError(fmt.Sprintf("parameter %q not found", name), err)
		}
		return "", classifyError(err, c.region)
	}

	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", notFoundError(fmt.Sprintf("parameter %q has no value", name), nil)
	}

	return *out.Parameter.Value, nil
}

// ListIdentityInstances returns all IAM Identity Center instances visible to
// the caller.
func (c *Client) ListIdentityInstances(ctx context.Context) ([]models.IdentityInstance, error) {
	var instances []models.IdentityInstance

	paginator := ssoadmin.NewListInstancesPaginator(c.sso, &ssoadmin.ListInstancesInput{})
	for paginator.HasMorePages() {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError(err, c.region)
		}
		for _, inst := range page.Instances {
			instances = append(instances, models.IdentityInstance{
				InstanceARN:     strVal(inst.InstanceArn),
				IdentityStoreID: strVal(inst.IdentityStoreId),
			})
		}
	}

	return instances, nil
}

// FindUsersByUserName queries the identity store for users whose userName
// attribute equals userName.
func (c *Client) FindUsersByUserName(ctx context.Context, identityStoreID, userName string) ([]models.DirectoryUser, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	attrPath := "userName"
	out, err := c.ids.ListUsers(ctx, &identitystore.ListUsersInput{
		IdentityStoreId: &identityStoreID,
		Filters: []identitystoretypes.Filter{
			{
				AttributePath:  &attrPath,
				AttributeValue: &userName,
			},
		},
	})
	if err != nil {
		return nil, classifyError(err, c.region)
	}

	users := make([]models.DirectoryUser, 0, len(out.Users))
	for _, u := range out.Users {
		user := models.DirectoryUser{
			UserID:      strVal(u.UserId),
			UserName:    strVal(u.UserName),
			DisplayName: strVal(u.DisplayName),
		}
		for _, email := range u.Emails {
			if email.Value != nil {
				user.PrimaryEmail = *email.Value
				break
			}
		}
		users = append(users, user)
	}

	return users, nil
}

// strVal dereferences a string pointer, returning "" for nil
func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
