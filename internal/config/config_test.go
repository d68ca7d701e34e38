package config

import "testing"

func TestNewDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "AUTHMODE", "BACKEND", "CLOUDSTORE", "CLOUDPREFIX", "KMSKEYNAME"} {
		t.Setenv(k, "")
	}

	cfg := New()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.AuthMode != AuthHeader {
		t.Fatalf("expected header auth, got %q", cfg.AuthMode)
	}
	if cfg.Backend != BackendFirestore {
		t.Fatalf("expected firestore backend, got %q", cfg.Backend)
	}
	if cfg.CloudStore != CloudFirestore {
		t.Fatalf("expected firestore cloud store, got %q", cfg.CloudStore)
	}
	if cfg.CloudPrefix != "cloud" {
		t.Fatalf("expected default prefix, got %q", cfg.CloudPrefix)
	}
	if !cfg.NeedsFirestore() {
		t.Fatalf("expected firestore to be needed")
	}
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTHMODE", "Firebase")
	t.Setenv("BACKEND", "postgres")
	t.Setenv("DATABASEURL", "postgres://localhost/neko")
	t.Setenv("CLOUDSTORE", "gcs")
	t.Setenv("CLOUDBUCKET", "neko-mirror")
	t.Setenv("KMSKEYNAME", "projects/p/locations/l/keyRings/r/cryptoKeys/k")

	cfg := New()

	if cfg.Port != "9090" || cfg.AuthMode != AuthFirebase || cfg.Backend != BackendPostgres {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://localhost/neko" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if cfg.CloudStore != CloudBucket || cfg.CloudBucket != "neko-mirror" {
		t.Fatalf("unexpected cloud store: %q %q", cfg.CloudStore, cfg.CloudBucket)
	}
	if cfg.NeedsFirestore() {
		t.Fatalf("firestore should not be needed")
	}
}
