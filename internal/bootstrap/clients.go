package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	kms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	_ "github.com/lib/pq"
)

// InitFirestore falls back to project detection from the environment when
// projectID is empty.
func InitFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	return firestore.NewClient(ctx, projectID)
}

func InitFirebase(ctx context.Context) (*auth.Client, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	return app.Auth(ctx)
}

func InitStorage(ctx context.Context) (*storage.Client, error) {
	return storage.NewClient(ctx)
}

func InitKMS(ctx context.Context) (*kms.KeyManagementClient, error) {
	return kms.NewKeyManagementClient(ctx)
}

func InitSecretManager(ctx context.Context) (*secretmanager.Client, error) {
	return secretmanager.NewClient(ctx)
}

func InitPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASEURL is required for the postgres backend")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}
