package bootstrap

import (
	"context"
	"errors"

	nekoclient "github.com/dzenfone819-debug/neko-finance/internal/client/neko"
	"github.com/dzenfone819-debug/neko-finance/internal/cloud"
	"github.com/dzenfone819-debug/neko-finance/internal/config"
	"github.com/dzenfone819-debug/neko-finance/internal/crypto"
	"github.com/dzenfone819-debug/neko-finance/internal/services"
	"github.com/dzenfone819-debug/neko-finance/internal/store"
)

// Backend returns the store selected by BACKEND.
func (bs *Bootstrap) Backend(ctx context.Context, cfg *config.Config) (services.Backend, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		if err := store.RunMigrations(ctx, bs.DB); err != nil {
			return nil, err
		}
		return store.NewPostgresStore(bs.DB), nil

	case config.BackendHTTP:
		if cfg.NekoAPIURL == "" {
			return nil, errors.New("NEKOAPIURL is required for the http backend")
		}
		token := cfg.NekoAPIToken
		if bs.Secrets != nil {
			var err error
			token, err = store.NewSecretStore(bs.Secrets, cfg.ProjectID).Latest(ctx, cfg.NekoAPITokenSecret)
			if err != nil {
				return nil, err
			}
		}
		return nekoclient.NewAdapter(cfg.NekoAPIURL, token), nil

	default:
		return store.NewFinanceStore(bs.Firestore), nil
	}
}

// CloudKV returns the key/value store selected by CLOUDSTORE, sealed with
// KMS when a key is configured. It returns nil when cloud storage is off.
func (bs *Bootstrap) CloudKV(cfg *config.Config) cloud.KV {
	var kv cloud.KV
	switch cfg.CloudStore {
	case config.CloudNone:
		return nil
	case config.CloudBucket:
		kv = store.NewBucketKV(bs.Storage, cfg.CloudBucket, cfg.CloudPrefix)
	default:
		kv = store.NewFirestoreKV(bs.Firestore)
	}

	if bs.KMS != nil {
		kv = cloud.NewSealedKV(kv, crypto.NewKeySealer(bs.KMS, cfg.KMSKeyName))
	}
	return kv
}
