package crypto

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/pkg/helpers"
)

// stubKMS reverses bytes instead of encrypting them.
type stubKMS struct {
	encryptErr     error
	corruptCipher  bool
	lastEncryptKey string
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

func (s *stubKMS) Encrypt(_ context.Context, req *kmspb.EncryptRequest, _ ...gax.CallOption) (*kmspb.EncryptResponse, error) {
	if s.encryptErr != nil {
		return nil, s.encryptErr
	}
	s.lastEncryptKey = req.GetName()
	ct := reverse(req.GetPlaintext())
	sum := checksum(ct)
	if s.corruptCipher {
		sum++
	}
	return &kmspb.EncryptResponse{
		Name:                    req.GetName(),
		Ciphertext:              ct,
		CiphertextCrc32C:        wrapperspb.Int64(sum),
		VerifiedPlaintextCrc32C: req.GetPlaintextCrc32C().GetValue() == checksum(req.GetPlaintext()),
	}, nil
}

func (s *stubKMS) Decrypt(_ context.Context, req *kmspb.DecryptRequest, _ ...gax.CallOption) (*kmspb.DecryptResponse, error) {
	pt := reverse(req.GetCiphertext())
	return &kmspb.DecryptResponse{
		Plaintext:       pt,
		PlaintextCrc32C: wrapperspb.Int64(checksum(pt)),
	}, nil
}

func TestKeySealerRoundTrip(t *testing.T) {
	stub := &stubKMS{}
	s := NewKeySealer(stub, "projects/p/locations/l/keyRings/r/cryptoKeys/k")
	ctx := helpers.TestCtx()

	sealed, err := s.Seal(ctx, `{"budget_limit":100}`)
	if err != nil {
		t.Fatalf("Seal returned error: %v", err)
	}
	if strings.Contains(sealed, "budget_limit") {
		t.Fatalf("sealed value leaks plaintext: %q", sealed)
	}
	if stub.lastEncryptKey != "projects/p/locations/l/keyRings/r/cryptoKeys/k" {
		t.Fatalf("unexpected key name %q", stub.lastEncryptKey)
	}

	opened, err := s.Open(ctx, sealed)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if opened != `{"budget_limit":100}` {
		t.Fatalf("Open = %q", opened)
	}
}

func TestKeySealerErrors(t *testing.T) {
	ctx := helpers.TestCtx()

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "encrypt failure",
			run: func() error {
				_, err := NewKeySealer(&stubKMS{encryptErr: errors.New("denied")}, "k").Seal(ctx, "x")
				return err
			},
		},
		{
			name: "corrupted ciphertext",
			run: func() error {
				_, err := NewKeySealer(&stubKMS{corruptCipher: true}, "k").Seal(ctx, "x")
				return err
			},
		},
		{
			name: "not base64",
			run: func() error {
				_, err := NewKeySealer(&stubKMS{}, "k").Open(ctx, "%%%")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var ee *errs.EncryptionError
			if !errors.As(err, &ee) {
				t.Fatalf("expected EncryptionError, got %v", err)
			}
		})
	}
}
