package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretEncryptor_RoundTrip(t *testing.T) {
	// Generate a test key (32 bytes)
	key := []byte("01234567890123456789012345678901")

	encryptor, err := NewSecretEncryptor(key)
	require.NoError(t, err)

	type testSecrets struct {
		EmbeddingKey string `json:"embedding_key"`
		LLMKey       string `json:"llm_key"`
	}

	original := testSecrets{
		EmbeddingKey: "sk-embed-abc123",
		LLMKey:       "sk-llm-xyz789",
	}

	blob, err := encryptor.Encrypt(original)
	require.NoError(t, err)

	// Verify blob format
	require.GreaterOrEqual(t, len(blob), 1+nonceSize, "blob too short")
	assert.Equal(t, byte(secretVersion), blob[0], "version byte")

	var decrypted testSecrets
	require.NoError(t, encryptor.Decrypt(blob, &decrypted))

	assert.Equal(t, original.EmbeddingKey, decrypted.EmbeddingKey)
	assert.Equal(t, original.LLMKey, decrypted.LLMKey)
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("lexcraft-settings")

	key := DeriveKey("passphrase", salt)
	require.Len(t, key, keySize)

	// Deterministic for the same inputs
	assert.Equal(t, key, DeriveKey("passphrase", salt), "same passphrase and salt should derive the same key")

	// Different passphrase or salt changes the key
	assert.NotEqual(t, key, DeriveKey("other", salt))
	assert.NotEqual(t, key, DeriveKey("passphrase", []byte("other-salt")))

	// Derived keys must be usable directly
	_, err := NewSecretEncryptor(key)
	assert.NoError(t, err, "derived key rejected")
}

func TestSecretEncryptor_InvalidKeySize(t *testing.T) {
	tests := []struct {
		name    string
		keySize int
	}{
		{"too short", 16},
		{"too long", 64},
		{"empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keySize)
			_, err := NewSecretEncryptor(key)
			assert.Error(t, err, "expected error for invalid key size")
		})
	}
}

func TestSecretEncryptor_DecryptInvalidBlob(t *testing.T) {
	key := []byte("01234567890123456789012345678901")
	encryptor, err := NewSecretEncryptor(key)
	require.NoError(t, err)

	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", []byte{}},
		{"too short", []byte{0x01, 0x02}},
		{"wrong version", append([]byte{0x99}, make([]byte, 100)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result string
			assert.Error(t, encryptor.Decrypt(tt.blob, &result), "expected error for invalid blob")
		})
	}
}

func TestSecretEncryptor_WrongKey(t *testing.T) {
	key1 := []byte("01234567890123456789012345678901")
	key2 := []byte("10987654321098765432109876543210")

	enc1, err := NewSecretEncryptor(key1)
	require.NoError(t, err)
	enc2, err := NewSecretEncryptor(key2)
	require.NoError(t, err)

	blob, err := enc1.Encrypt("secret data")
	require.NoError(t, err)

	var result string
	assert.Error(t, enc2.Decrypt(blob, &result), "expected error when decrypting with wrong key")
}

func TestSecretEncryptor_UniqueNonce(t *testing.T) {
	key := []byte("01234567890123456789012345678901")
	encryptor, err := NewSecretEncryptor(key)
	require.NoError(t, err)

	// Encrypt the same value multiple times
	blobs := make([][]byte, 10)
	for i := range blobs {
		blob, err := encryptor.Encrypt("same value")
		require.NoError(t, err)
		blobs[i] = blob
	}

	// Verify all nonces are unique
	nonces := make(map[string]bool)
	for i, blob := range blobs {
		nonce := string(blob[1 : 1+nonceSize])
		assert.False(t, nonces[nonce], "duplicate nonce at index %d", i)
		nonces[nonce] = true
	}
}

func TestSecretEncryptor_StringHelpers(t *testing.T) {
	key := []byte("01234567890123456789012345678901")
	encryptor, err := NewSecretEncryptor(key)
	require.NoError(t, err)

	original := "my secret string"

	blob, err := encryptor.EncryptString(original)
	require.NoError(t, err)

	decrypted, err := encryptor.DecryptString(blob)
	require.NoError(t, err)
	assert.Equal(t, original, decrypted)
}
