// Package fieldcrypt envelope-encrypts individual profile fields. Each field
// value is sealed with its own fresh AES-256-GCM data key, and the data key
// is protected by a managed key identified only by a handle — raw master key
// material never enters this package. Fields are encrypted independently so
// rotating or re-encrypting one does not touch the others.
package fieldcrypt

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

// Envelope is the persisted form of one encrypted field: the ciphertext plus
// everything needed for decryption except the key material itself.
type Envelope struct {
	KeyID            string `json:"key_id" dynamodbav:"keyId"`
	EncryptedDataKey []byte `json:"encrypted_data_key" dynamodbav:"encryptedDataKey"`
	Nonce            []byte `json:"nonce" dynamodbav:"nonce"`
	Ciphertext       []byte `json:"ciphertext" dynamodbav:"ciphertext"`
}

// Encryptor encrypts and decrypts single field values. Decryption fails
// closed: a tampered or undecryptable envelope yields
// common.ErrDecryptionFailed, never corrupted plaintext.
type Encryptor interface {
	EncryptField(ctx context.Context, plaintext string) (*Envelope, error)
	DecryptField(ctx context.Context, envelope *Envelope) (string, error)
}

// sealWithKey encrypts plaintext under key using AES-GCM with a random
// 12-byte nonce. The key must be 16, 24, or 32 bytes.
func sealWithKey(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// openWithKey reverses sealWithKey. GCM authentication makes any tampering
// with the ciphertext or nonce fail here.
func openWithKey(key, nonce, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
