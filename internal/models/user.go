package models

import (
	"fmt"
	"math/rand"
)

// TestUser is the create-user request body. Email doubles as the identity
// store userName.
type TestUser struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// NewTestUser generates a unique test fixture for one run. The numeric
// suffix (1000-9999) guarantees uniqueness across runs since created users
// are never cleaned up.
func NewTestUser(rng *rand.Rand) TestUser {
	id := 1000 + rng.Intn(9000)
	return TestUser{
		Name:      fmt.Sprintf("Test User %d", id),
		Email:     fmt.Sprintf("testuser%d@example.com", id),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", id),
	}
}
