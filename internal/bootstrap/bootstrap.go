package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	kms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	"firebase.google.com/go/v4/auth"

	"github.com/dzenfone819-debug/neko-finance/internal/config"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

// Bootstrap holds the clients the configuration asks for. Clients that
// are not needed stay nil.
type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	Storage   *storage.Client
	KMS       *kms.KeyManagementClient
	Secrets   *secretmanager.Client
	DB        *sql.DB
}

func Run(cfg *config.Config, handler func(level slog.Level) slog.Handler) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, handler)

	if cfg.NeedsFirestore() {
		bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
	}
	if cfg.AuthMode == config.AuthFirebase {
		bs.Firebase, err = InitFirebase(applicationCtx)
		if err != nil {
			return bs, err
		}
	}
	if cfg.CloudStore == config.CloudBucket {
		bs.Storage, err = InitStorage(applicationCtx)
		if err != nil {
			return bs, err
		}
	}
	if cfg.KMSKeyName != "" && cfg.CloudStore != config.CloudNone {
		bs.KMS, err = InitKMS(applicationCtx)
		if err != nil {
			return bs, err
		}
	}
	if cfg.Backend == config.BackendHTTP && cfg.NekoAPITokenSecret != "" {
		bs.Secrets, err = InitSecretManager(applicationCtx)
		if err != nil {
			return bs, err
		}
	}
	if cfg.Backend == config.BackendPostgres {
		bs.DB, err = InitPostgres(applicationCtx, cfg.DatabaseURL)
		if err != nil {
			return bs, err
		}
	}

	return bs, nil
}

// Close releases every client that was opened.
func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.Storage != nil {
		errList = append(errList, bs.Storage.Close())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	if bs.Secrets != nil {
		errList = append(errList, bs.Secrets.Close())
	}
	if bs.DB != nil {
		errList = append(errList, bs.DB.Close())
	}
	return errors.Join(errList...)
}
