package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRegion(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("AWS_DEFAULT_REGION", "eu-west-1")
		assert.Equal(t, "ap-northeast-1", ResolveRegion("ap-northeast-1"))
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv("AWS_DEFAULT_REGION", "eu-west-1")
		assert.Equal(t, "eu-west-1", ResolveRegion(""))
	})

	t.Run("default when unset", func(t *testing.T) {
		t.Setenv("AWS_DEFAULT_REGION", "")
		assert.Equal(t, "us-east-1", ResolveRegion(""))
	})
}

func TestParseOverrides(t *testing.T) {
	t.Run("no arguments", func(t *testing.T) {
		overrides, err := ParseOverrides(nil)
		require.NoError(t, err)
		assert.Nil(t, overrides)
	})

	t.Run("endpoint and key", func(t *testing.T) {
		overrides, err := ParseOverrides([]string{"https://api.example.com/prod", "key-12345678"})
		require.NoError(t, err)
		require.NotNil(t, overrides)
		assert.Equal(t, "https://api.example.com/prod", overrides.Endpoint)
		assert.Equal(t, "key-12345678", overrides.APIKey)
	})

	t.Run("trailing slash stripped from endpoint", func(t *testing.T) {
		overrides, err := ParseOverrides([]string{"https://api.example.com/prod/", "key-12345678"})
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/prod", overrides.Endpoint)
	})

	t.Run("one argument is a usage error", func(t *testing.T) {
		_, err := ParseOverrides([]string{"https://api.example.com/prod"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zero or two arguments")
	})

	t.Run("empty endpoint rejected", func(t *testing.T) {
		_, err := ParseOverrides([]string{"", "key-12345678"})
		require.Error(t, err)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		_, err := ParseOverrides([]string{"https://api.example.com/prod", ""})
		require.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Region: "us-east-1", StackName: DefaultStackName}
	require.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{StackName: DefaultStackName}).Validate())
	assert.Error(t, (&Config{Region: "us-east-1"}).Validate())
}
