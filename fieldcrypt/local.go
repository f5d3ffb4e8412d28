package fieldcrypt

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authvault/common"
)

// LocalKeyring implements Encryptor with an in-process 32-byte master key.
// It keeps the same envelope structure as the KMS keyring (per-field data
// keys, wrapped data key stored in the envelope), which makes it a drop-in
// substitute for development and tests. The wrapped data key is the master
// key's GCM nonce followed by the GCM ciphertext of the data key.
type LocalKeyring struct {
	keyHandle string
	masterKey []byte
}

const localNonceSize = 12

func NewLocalKeyring(keyHandle string, masterKey []byte) (*LocalKeyring, error) {
	if keyHandle == "" {
		return nil, errors.New("key handle is empty")
	}
	if len(masterKey) != 32 {
		return nil, errors.New("master key must be 32 bytes")
	}
	return &LocalKeyring{keyHandle: keyHandle, masterKey: masterKey}, nil
}

func (k *LocalKeyring) EncryptField(ctx context.Context, plaintext string) (*Envelope, error) {
	dataKey := common.GenerateRandByteArray(32)
	defer common.WipeByteArray(dataKey)

	ciphertext, nonce, err := sealWithKey(dataKey, []byte(plaintext))
	if err != nil {
		return nil, fmt.Errorf("sealing field: %w", err)
	}

	wrapped, wrapNonce, err := sealWithKey(k.masterKey, dataKey)
	if err != nil {
		return nil, fmt.Errorf("wrapping data key: %w", err)
	}

	return &Envelope{
		KeyID:            k.keyHandle,
		EncryptedDataKey: append(wrapNonce, wrapped...),
		Nonce:            nonce,
		Ciphertext:       ciphertext,
	}, nil
}

func (k *LocalKeyring) DecryptField(ctx context.Context, envelope *Envelope) (string, error) {
	if envelope.KeyID != k.keyHandle {
		return "", fmt.Errorf("%w: unknown key handle", common.ErrDecryptionFailed)
	}
	if len(envelope.EncryptedDataKey) <= localNonceSize {
		return "", fmt.Errorf("%w: malformed data key", common.ErrDecryptionFailed)
	}

	wrapNonce := envelope.EncryptedDataKey[:localNonceSize]
	wrapped := envelope.EncryptedDataKey[localNonceSize:]

	dataKey, err := openWithKey(k.masterKey, wrapNonce, wrapped)
	if err != nil {
		return "", fmt.Errorf("%w: unwrapping data key", common.ErrDecryptionFailed)
	}
	defer common.WipeByteArray(dataKey)

	plaintext, err := openWithKey(dataKey, envelope.Nonce, envelope.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: opening field", common.ErrDecryptionFailed)
	}

	return string(plaintext), nil
}
