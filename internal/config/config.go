package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type AuthMode string

const (
	AuthHeader   AuthMode = "header"
	AuthFirebase AuthMode = "firebase"
)

type Backend string

const (
	BackendFirestore Backend = "firestore"
	BackendPostgres  Backend = "postgres"
	BackendHTTP      Backend = "http"
)

type CloudStore string

const (
	CloudFirestore CloudStore = "firestore"
	CloudBucket    CloudStore = "gcs"
	CloudNone      CloudStore = "none"
)

type Config struct {
	ProjectID          string
	Region             string
	LogLevel           string
	Port               string
	AuthMode           AuthMode
	Backend            Backend
	DatabaseURL        string
	NekoAPIURL         string
	NekoAPIToken       string
	NekoAPITokenSecret string
	CloudStore         CloudStore
	CloudBucket        string
	CloudPrefix        string
	KMSKeyName         string
}

// New loads an optional .env file and reads the environment.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		ProjectID:          os.Getenv("PROJECTID"),
		Region:             os.Getenv("REGION"),
		LogLevel:           os.Getenv("LOGLEVEL"),
		Port:               getOr("PORT", "8080"),
		AuthMode:           getAuthMode(os.Getenv("AUTHMODE")),
		Backend:            getBackend(os.Getenv("BACKEND")),
		DatabaseURL:        os.Getenv("DATABASEURL"),
		NekoAPIURL:         os.Getenv("NEKOAPIURL"),
		NekoAPIToken:       os.Getenv("NEKOAPITOKEN"),
		NekoAPITokenSecret: os.Getenv("NEKOAPITOKENSECRET"),
		CloudStore:         getCloudStore(os.Getenv("CLOUDSTORE")),
		CloudBucket:        os.Getenv("CLOUDBUCKET"),
		CloudPrefix:        getOr("CLOUDPREFIX", "cloud"),
		KMSKeyName:         os.Getenv("KMSKEYNAME"),
	}
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getAuthMode(v string) AuthMode {
	switch strings.ToLower(v) {
	case "firebase":
		return AuthFirebase
	default: // "header"
		return AuthHeader
	}
}

func getBackend(v string) Backend {
	switch strings.ToLower(v) {
	case "postgres":
		return BackendPostgres
	case "http":
		return BackendHTTP
	default: // "firestore"
		return BackendFirestore
	}
}

func getCloudStore(v string) CloudStore {
	switch strings.ToLower(v) {
	case "gcs":
		return CloudBucket
	case "none":
		return CloudNone
	default: // "firestore"
		return CloudFirestore
	}
}

// NeedsFirestore reports whether any configured component uses Firestore.
func (c *Config) NeedsFirestore() bool {
	return c.Backend == BackendFirestore || c.CloudStore == CloudFirestore
}
