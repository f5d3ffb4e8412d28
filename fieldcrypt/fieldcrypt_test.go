package fieldcrypt

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/authvault/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyring(t *testing.T) *LocalKeyring {
	t.Helper()
	k, err := NewLocalKeyring("alias/test", common.GenerateRandByteArray(32))
	require.NoError(t, err)
	return k
}

func TestLocalKeyring_RoundTrip(t *testing.T) {
	k := newTestKeyring(t)
	ctx := context.Background()

	tests := []string{"John", "", "Ünïcødé-Nâme", "a much longer field value than usual"}

	for _, plaintext := range tests {
		env, err := k.EncryptField(ctx, plaintext)
		require.NoError(t, err)
		assert.Equal(t, "alias/test", env.KeyID)
		if plaintext != "" {
			assert.NotContains(t, string(env.Ciphertext), plaintext)
		}

		got, err := k.DecryptField(ctx, env)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestLocalKeyring_IndependentDataKeys(t *testing.T) {
	k := newTestKeyring(t)
	ctx := context.Background()

	a, err := k.EncryptField(ctx, "same value")
	require.NoError(t, err)
	b, err := k.EncryptField(ctx, "same value")
	require.NoError(t, err)

	assert.NotEqual(t, a.EncryptedDataKey, b.EncryptedDataKey, "each field must get its own data key")
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestLocalKeyring_TamperingFailsClosed(t *testing.T) {
	k := newTestKeyring(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Envelope)
	}{
		{name: "ciphertext flipped", mutate: func(e *Envelope) { e.Ciphertext[0] ^= 0xff }},
		{name: "nonce flipped", mutate: func(e *Envelope) { e.Nonce[0] ^= 0xff }},
		{name: "data key flipped", mutate: func(e *Envelope) { e.EncryptedDataKey[len(e.EncryptedDataKey)-1] ^= 0xff }},
		{name: "data key truncated", mutate: func(e *Envelope) { e.EncryptedDataKey = e.EncryptedDataKey[:4] }},
		{name: "wrong key handle", mutate: func(e *Envelope) { e.KeyID = "alias/other" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := k.EncryptField(ctx, "sensitive")
			require.NoError(t, err)

			tt.mutate(env)

			_, err = k.DecryptField(ctx, env)
			assert.ErrorIs(t, err, common.ErrDecryptionFailed)
		})
	}
}

func TestLocalKeyring_WrongMasterKeyFailsClosed(t *testing.T) {
	ctx := context.Background()

	k1, err := NewLocalKeyring("alias/test", common.GenerateRandByteArray(32))
	require.NoError(t, err)
	k2, err := NewLocalKeyring("alias/test", common.GenerateRandByteArray(32))
	require.NoError(t, err)

	env, err := k1.EncryptField(ctx, "sensitive")
	require.NoError(t, err)

	_, err = k2.DecryptField(ctx, env)
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestNewLocalKeyring_Validation(t *testing.T) {
	_, err := NewLocalKeyring("", common.GenerateRandByteArray(32))
	assert.Error(t, err)

	_, err = NewLocalKeyring("alias/test", []byte("short"))
	assert.Error(t, err)
}

func TestEnvelope_JSONRoundTrip(t *testing.T) {
	k := newTestKeyring(t)
	ctx := context.Background()

	env, err := k.EncryptField(ctx, "Jane")
	require.NoError(t, err)

	// The envelope is persisted inside the user record, so its encoding must
	// survive a marshal/unmarshal cycle intact.
	b, err := json.Marshal(env)
	require.NoError(t, err)

	var restored Envelope
	require.NoError(t, json.Unmarshal(b, &restored))

	got, err := k.DecryptField(ctx, &restored)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got)
}
