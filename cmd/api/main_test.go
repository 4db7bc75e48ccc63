package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-records/internal/config"
	"github.com/jwalitptl/patient-records/pkg/metrics"
)

func TestBuildStorageRejectsPassphraseWithoutSalt(t *testing.T) {
	_, err := buildStorage(config.StorageConfig{
		Backend:    "memory",
		Passphrase: "secret",
	}, metrics.NewTestMetrics("test"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.salt")
}

func TestBuildStorageEncryptsWithPassphraseAndSalt(t *testing.T) {
	st, err := buildStorage(config.StorageConfig{
		Backend:    "memory",
		Passphrase: "secret",
		Salt:       "per-install-salt",
	}, metrics.NewTestMetrics("test"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "patients", `[{"name":"Ana"}]`))
	val, ok, err := st.Get(ctx, "patients")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"name":"Ana"}]`, val)
}

func TestBuildStorageUnknownBackend(t *testing.T) {
	_, err := buildStorage(config.StorageConfig{Backend: "tape"}, metrics.NewTestMetrics("test"))
	assert.Error(t, err)
}
