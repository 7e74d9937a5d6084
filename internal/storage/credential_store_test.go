package storage

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	sum := sha256.Sum256([]byte("test-key"))
	return sum[:]
}

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	store := NewS3CredentialStore(nil, "bucket", testKey())

	t.Run("round trips a credential payload", func(t *testing.T) {
		t.Parallel()

		encrypted, err := store.encrypt(`{"username":"svc","token":"secret"}`)
		require.NoError(t, err)
		assert.NotContains(t, encrypted, "secret")

		decrypted, err := store.decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, `{"username":"svc","token":"secret"}`, decrypted)
	})

	t.Run("nonces differ between encryptions", func(t *testing.T) {
		t.Parallel()

		first, err := store.encrypt("payload")
		require.NoError(t, err)
		second, err := store.encrypt("payload")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("wrong key fails to decrypt", func(t *testing.T) {
		t.Parallel()

		encrypted, err := store.encrypt("payload")
		require.NoError(t, err)

		wrongKey := bytes.Repeat([]byte{0x42}, 32)
		other := NewS3CredentialStore(nil, "bucket", wrongKey)
		_, err = other.decrypt(encrypted)
		assert.Error(t, err)
	})

	t.Run("truncated ciphertext is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := store.decrypt("dG9vc2hvcnQ=")
		assert.Error(t, err)
	})
}

func TestGetKey(t *testing.T) {
	t.Parallel()

	store := NewS3CredentialStore(nil, "bucket", testKey())
	assert.Equal(t, "credentials/jira-prod.json", store.getKey("jira-prod"))
}
