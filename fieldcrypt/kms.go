package fieldcrypt

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/dmitrijs2005/authvault/common"
	"github.com/dmitrijs2005/authvault/config"
)

// kmsAPI is the subset of the KMS client used by the keyring.
type kmsAPI interface {
	GenerateDataKey(ctx context.Context, params *kms.GenerateDataKeyInput, optFns ...func(*kms.Options)) (*kms.GenerateDataKeyOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSKeyring implements Encryptor on top of AWS KMS. Per field it asks KMS
// for a fresh data key, seals the value locally, and stores the data key only
// in its KMS-encrypted form. Decryption of the data key happens inside KMS,
// so only holders of access to the managed key can ever read a field.
type KMSKeyring struct {
	client kmsAPI
	keyID  string
}

// NewKMSKeyring builds a keyring for the managed key named by keyHandle.
// Credentials and endpoint come from cfg; an empty access key id falls back
// to the default AWS credential chain.
func NewKMSKeyring(ctx context.Context, cfg *config.Config, keyHandle string) (*KMSKeyring, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")))
	}

	awscfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := kms.NewFromConfig(awscfg, func(o *kms.Options) {
		if cfg.AWSBaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSBaseEndpoint)
		}
	})

	return &KMSKeyring{client: client, keyID: keyHandle}, nil
}

func (k *KMSKeyring) EncryptField(ctx context.Context, plaintext string) (*Envelope, error) {
	out, err := k.client.GenerateDataKey(ctx, &kms.GenerateDataKeyInput{
		KeyId:   aws.String(k.keyID),
		KeySpec: types.DataKeySpecAes256,
	})
	if err != nil {
		return nil, fmt.Errorf("generating data key: %w", err)
	}
	defer common.WipeByteArray(out.Plaintext)

	ciphertext, nonce, err := sealWithKey(out.Plaintext, []byte(plaintext))
	if err != nil {
		return nil, fmt.Errorf("sealing field: %w", err)
	}

	return &Envelope{
		KeyID:            k.keyID,
		EncryptedDataKey: out.CiphertextBlob,
		Nonce:            nonce,
		Ciphertext:       ciphertext,
	}, nil
}

func (k *KMSKeyring) DecryptField(ctx context.Context, envelope *Envelope) (string, error) {
	out, err := k.client.Decrypt(ctx, &kms.DecryptInput{
		CiphertextBlob: envelope.EncryptedDataKey,
		KeyId:          aws.String(envelope.KeyID),
	})
	if err != nil {
		return "", fmt.Errorf("%w: unwrapping data key: %v", common.ErrDecryptionFailed, err)
	}
	defer common.WipeByteArray(out.Plaintext)

	plaintext, err := openWithKey(out.Plaintext, envelope.Nonce, envelope.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: opening field", common.ErrDecryptionFailed)
	}

	return string(plaintext), nil
}
