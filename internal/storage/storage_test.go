package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-records/pkg/metrics"
	"github.com/jwalitptl/patient-records/pkg/security"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	_, ok, err := mem.Get(ctx, "patients")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mem.Set(ctx, "patients", `[{"id":"p1"}]`))
	val, ok, err := mem.Get(ctx, "patients")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"p1"}]`, val)

	require.NoError(t, mem.Remove(ctx, "patients"))
	_, ok, err = mem.Get(ctx, "patients")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, ok, err := fs.Get(ctx, "patients")
	require.NoError(t, err)
	assert.False(t, ok, "missing key is not an error")

	require.NoError(t, fs.Set(ctx, "patients", `[{"id":"p1"}]`))
	val, ok, err := fs.Get(ctx, "patients")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"p1"}]`, val)

	// Overwrite replaces the whole value.
	require.NoError(t, fs.Set(ctx, "patients", `[]`))
	val, _, err = fs.Get(ctx, "patients")
	require.NoError(t, err)
	assert.Equal(t, `[]`, val)

	require.NoError(t, fs.Remove(ctx, "patients"))
	_, ok, err = fs.Get(ctx, "patients")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing a missing key is a no-op.
	require.NoError(t, fs.Remove(ctx, "patients"))
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Set(ctx, "visits", `[{"id":"v1"}]`))

	reopened, err := NewFileStorage(dir)
	require.NoError(t, err)
	val, ok, err := reopened.Get(ctx, "visits")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"v1"}]`, val)
}

func TestEncryptedStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	key := security.DeriveKey("passphrase", []byte("salt"))
	encryptor, err := security.NewAESEncryptor(key)
	require.NoError(t, err)

	mem := NewMemoryStorage()
	enc := NewEncryptedStorage(mem, encryptor)

	require.NoError(t, enc.Set(ctx, "patients", `[{"id":"p1","name":"Ana"}]`))

	// The inner storage never sees the plaintext.
	sealed, ok, err := mem.Get(ctx, "patients")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, sealed, "Ana")

	val, ok, err := enc.Get(ctx, "patients")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"p1","name":"Ana"}]`, val)
}

func TestEncryptedStorageWrongKeyFails(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	writeKey := security.DeriveKey("right", []byte("salt"))
	writeEnc, err := security.NewAESEncryptor(writeKey)
	require.NoError(t, err)
	require.NoError(t, NewEncryptedStorage(mem, writeEnc).Set(ctx, "patients", `[]`))

	readKey := security.DeriveKey("wrong", []byte("salt"))
	readEnc, err := security.NewAESEncryptor(readKey)
	require.NoError(t, err)
	_, _, err = NewEncryptedStorage(mem, readEnc).Get(ctx, "patients")
	assert.Error(t, err)
}

func TestInstrumentedStorageDelegates(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	st := Instrument(mem, "memory", metrics.NewTestMetrics("test"))

	require.NoError(t, st.Set(ctx, "patients", "[]"))
	val, ok, err := st.Get(ctx, "patients")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", val)
	require.NoError(t, st.Remove(ctx, "patients"))
	assert.Equal(t, 0, mem.Len())
}
