package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cverrors "github.com/systmms/credvault/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func apiKeyProfile(name string) Profile {
	return Profile{
		Name:           name,
		CredentialType: TypeAPIKey,
		CreatedAt:      time.Now().UTC(),
	}
}

func oauthProfile(name string, expiresAt time.Time) Profile {
	return Profile{
		Name:           name,
		CredentialType: TypeOAuth,
		CreatedAt:      time.Now().UTC(),
		ExpiresAt:      &expiresAt,
	}
}

func TestLoadMissingFileIsEmptyConfig(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, ConfigVersion, cfg.Version)
	assert.Empty(t, cfg.Profiles)
	assert.Empty(t, cfg.DefaultProfile)
}

func TestUpsertAndGetRoundTrip(t *testing.T) {
	store := newTestStore(t)

	p := apiKeyProfile("work")
	p.Description = "work account"
	require.NoError(t, store.Upsert(p, true))

	got, err := store.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "work", got.Name)
	assert.Equal(t, "work account", got.Description)
	assert.Equal(t, TypeAPIKey, got.CredentialType)
}

func TestUpsertCreateOnlyConflicts(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Upsert(apiKeyProfile("work"), true))

	err := store.Upsert(apiKeyProfile("work"), true)
	var conflict cverrors.ProfileExistsError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "work", conflict.Name)

	// Replacing without createOnly is allowed.
	p := apiKeyProfile("work")
	p.Description = "updated"
	require.NoError(t, store.Upsert(p, false))

	got, err := store.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Description)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.Upsert(apiKeyProfile(name), true))
	}

	profiles, err := store.List()
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "zeta", profiles[0].Name)
	assert.Equal(t, "alpha", profiles[1].Name)
	assert.Equal(t, "mid", profiles[2].Name)
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Upsert(apiKeyProfile("work"), true))

	require.NoError(t, store.Remove("work"))

	_, err := store.Get("work")
	var notFound cverrors.ProfileNotFoundError
	assert.ErrorAs(t, err, &notFound)

	err = store.Remove("work")
	assert.ErrorAs(t, err, &notFound)
}

func TestRemoveDefaultClearsPointer(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Upsert(apiKeyProfile("work"), true))
	require.NoError(t, store.SetDefault("work"))

	require.NoError(t, store.Remove("work"))

	def, err := store.Default()
	require.NoError(t, err)
	assert.Empty(t, def)
}

func TestSetDefaultUnknownProfile(t *testing.T) {
	store := newTestStore(t)

	err := store.SetDefault("ghost")
	var notFound cverrors.ProfileNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
}

func TestCorruptConfigIsFatalAndPreserved(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0o700))
	garbage := []byte("version: [not\n  valid yaml {{")
	require.NoError(t, os.WriteFile(store.ConfigPath(), garbage, 0o600))

	_, err := store.Load()
	var corrupt cverrors.ConfigCorruptError
	require.ErrorAs(t, err, &corrupt)

	// The file must not have been reset.
	data, readErr := os.ReadFile(store.ConfigPath())
	require.NoError(t, readErr)
	assert.Equal(t, garbage, data)
}

func TestNewerVersionRejected(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0o700))
	require.NoError(t, os.WriteFile(store.ConfigPath(), []byte("version: 99\nprofiles: []\n"), 0o600))

	_, err := store.Load()
	var corrupt cverrors.ConfigCorruptError
	assert.ErrorAs(t, err, &corrupt)
}

func TestSaveIsAtomicAndPrivate(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Upsert(apiKeyProfile("work"), true))

	info, err := os.Stat(store.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// No temp leftovers.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestProfileValidation(t *testing.T) {
	now := time.Now()

	t.Run("api key with expiry rejected", func(t *testing.T) {
		p := apiKeyProfile("work")
		p.ExpiresAt = &now
		assert.Error(t, p.Validate())
	})

	t.Run("oauth without expiry rejected", func(t *testing.T) {
		p := Profile{Name: "work", CredentialType: TypeOAuth, CreatedAt: now}
		assert.Error(t, p.Validate())
	})

	t.Run("oauth with expiry ok", func(t *testing.T) {
		assert.NoError(t, oauthProfile("work", now.Add(time.Hour)).Validate())
	})
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("personal"))
	assert.NoError(t, ValidateName("work-123"))
	assert.NoError(t, ValidateName("test_profile"))

	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("has space"))
	assert.Error(t, ValidateName("bad@name"))

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateName(string(long)))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
