// Package crypto seals cloud mirror payloads with a Cloud KMS key.
package crypto

import (
	"context"
	"encoding/base64"
	"hash/crc32"

	gcpkms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
)

type kmsAPI interface {
	Encrypt(ctx context.Context, req *kmspb.EncryptRequest, opts ...gax.CallOption) (*kmspb.EncryptResponse, error)
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest, opts ...gax.CallOption) (*kmspb.DecryptResponse, error)
}

type keySealer struct {
	client  kmsAPI
	keyName string
}

var _ kmsAPI = (*gcpkms.KeyManagementClient)(nil)

func NewKeySealer(client kmsAPI, keyName string) *keySealer {
	return &keySealer{client: client, keyName: keyName}
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func checksum(b []byte) int64 {
	return int64(crc32.Checksum(b, castagnoli))
}

// Seal encrypts plaintext with the configured key and returns base64 text.
func (k *keySealer) Seal(ctx context.Context, plaintext string) (string, error) {
	raw := []byte(plaintext)
	resp, err := k.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:            k.keyName,
		Plaintext:       raw,
		PlaintextCrc32C: wrapperspb.Int64(checksum(raw)),
	})
	if err != nil {
		return "", errs.NewEncryptionError("kms encrypt failed", err)
	}
	if !resp.GetVerifiedPlaintextCrc32C() {
		return "", errs.NewEncryptionError("kms did not verify plaintext checksum", nil)
	}
	if resp.GetCiphertextCrc32C().GetValue() != checksum(resp.GetCiphertext()) {
		return "", errs.NewEncryptionError("ciphertext corrupted in transit", nil)
	}
	return base64.StdEncoding.EncodeToString(resp.GetCiphertext()), nil
}

// Open reverses Seal.
func (k *keySealer) Open(ctx context.Context, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errs.NewEncryptionError("sealed value is not base64", err)
	}
	resp, err := k.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:             k.keyName,
		Ciphertext:       raw,
		CiphertextCrc32C: wrapperspb.Int64(checksum(raw)),
	})
	if err != nil {
		return "", errs.NewEncryptionError("kms decrypt failed", err)
	}
	if resp.GetPlaintextCrc32C().GetValue() != checksum(resp.GetPlaintext()) {
		return "", errs.NewEncryptionError("plaintext corrupted in transit", nil)
	}
	return string(resp.GetPlaintext()), nil
}
