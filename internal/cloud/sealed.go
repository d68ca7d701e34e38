package cloud

import (
	"context"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
)

type sealer interface {
	Seal(ctx context.Context, plaintext string) (string, error)
	Open(ctx context.Context, sealed string) (string, error)
}

// SealedKV encrypts values before handing them to the wrapped KV. Keys
// are stored in the clear.
type SealedKV struct {
	kv     KV
	sealer sealer
}

func NewSealedKV(kv KV, s sealer) *SealedKV {
	return &SealedKV{kv: kv, sealer: s}
}

func (s *SealedKV) SetItem(ctx context.Context, uid, key, value string) error {
	sealed, err := s.sealer.Seal(ctx, value)
	if err != nil {
		return errs.NewEncryptionError("failed to encrypt "+key, err)
	}
	return s.kv.SetItem(ctx, uid, key, sealed)
}

func (s *SealedKV) GetItem(ctx context.Context, uid, key string) (string, error) {
	sealed, err := s.kv.GetItem(ctx, uid, key)
	if err != nil || sealed == "" {
		return "", err
	}
	return s.open(ctx, key, sealed)
}

func (s *SealedKV) GetItems(ctx context.Context, uid string, keys []string) (map[string]string, error) {
	items, err := s.kv.GetItems(ctx, uid, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for k, sealed := range items {
		if sealed == "" {
			continue
		}
		v, err := s.open(ctx, k, sealed)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (s *SealedKV) RemoveItems(ctx context.Context, uid string, keys []string) error {
	return s.kv.RemoveItems(ctx, uid, keys)
}

func (s *SealedKV) open(ctx context.Context, key, sealed string) (string, error) {
	v, err := s.sealer.Open(ctx, sealed)
	if err != nil {
		return "", errs.NewEncryptionError("failed to decrypt "+key, err)
	}
	return v, nil
}
