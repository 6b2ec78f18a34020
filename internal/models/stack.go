package models

import (
	"time"
)

// StackDescriptor is a point-in-time snapshot of a deployed CloudFormation
// stack, reduced to the fields the verification pipeline consumes.
type StackDescriptor struct {
	Name       string            `json:"stackName"`
	Status     string            `json:"stackStatus"`
	CreatedAt  time.Time         `json:"createdAt"`
	Outputs    map[string]string `json:"outputs"`
	Parameters map[string]string `json:"parameters"`
}

// Output returns the value of the named stack output and whether it exists.
func (s *StackDescriptor) Output(key string) (string, bool) {
	v, ok := s.Outputs[key]
	return v, ok
}

// Parameter returns the value of the named stack parameter and whether it exists.
func (s *StackDescriptor) Parameter(key string) (string, bool) {
	v, ok := s.Parameters[key]
	return v, ok
}

// IdentityInstance is one IAM Identity Center instance as returned by
// ListInstances, pairing the instance ARN with its identity store.
type IdentityInstance struct {
	InstanceARN     string `json:"instanceArn"`
	IdentityStoreID string `json:"identityStoreId"`
}

// DirectoryUser is an identity store user record as returned by a
// filtered ListUsers call.
type DirectoryUser struct {
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	DisplayName  string `json:"displayName"`
	PrimaryEmail string `json:"primaryEmail"`
}

// CallerIdentity identifies the AWS principal the harness runs as.
type CallerIdentity struct {
	AccountID string `json:"accountId"`
	ARN       string `json:"arn"`
}
