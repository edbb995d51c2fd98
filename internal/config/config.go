package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/envutil"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/gcp"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/temporalx"
)

// Role selects which subset of configuration a process needs. The API serves
// HTTP only; the worker runs activities only; "all" runs both in one process.
type Role string

const (
	RoleAPI    Role = "api"
	RoleWorker Role = "worker"
	RoleAll    Role = "all"
)

// Config is the process configuration resolved once at boot. Every external
// credential is checked up front so a misconfigured process fails at startup
// instead of on the first request.
type Config struct {
	Role Role
	Port string

	GeminiAPIKey      string
	ReplicateAPIToken string
	AuthJWTSecret     string

	ObjectStorage    gcp.ObjectStorageConfig
	objectStorageErr error
	BucketName       string
	Temporal         temporalx.Config

	RedisAddr      string
	VizConcurrency int
}

func Resolve() Config {
	role := Role(strings.ToLower(strings.TrimSpace(os.Getenv("FASHION_ROLE"))))
	if role == "" {
		role = RoleAll
	}
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	storageCfg, storageErr := gcp.ResolveObjectStorageConfigFromEnv()
	return Config{
		Role:              role,
		Port:              port,
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
		ReplicateAPIToken: strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		AuthJWTSecret:     strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")),
		ObjectStorage:     storageCfg,
		objectStorageErr:  storageErr,
		BucketName:        strings.TrimSpace(os.Getenv("FASHION_GCS_BUCKET_NAME")),
		Temporal:          temporalx.LoadConfig(),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		VizConcurrency:    envutil.Int("FASHION_VIZ_CONCURRENCY", 2),
	}
}

// Validate aggregates every configuration problem instead of failing on the
// first, so one boot attempt reports the full fix list.
func (c Config) Validate() error {
	var problems []string

	switch c.Role {
	case RoleAPI, RoleWorker, RoleAll:
	default:
		problems = append(problems, fmt.Sprintf("FASHION_ROLE %q is not one of api, worker, all", c.Role))
	}

	if c.objectStorageErr != nil {
		problems = append(problems, c.objectStorageErr.Error())
	}
	if c.BucketName == "" {
		problems = append(problems, "FASHION_GCS_BUCKET_NAME is required")
	}

	if c.Role == RoleAPI || c.Role == RoleAll {
		if c.AuthJWTSecret == "" {
			problems = append(problems, "AUTH_JWT_SECRET is required")
		}
	}
	if c.Role == RoleWorker || c.Role == RoleAll {
		if c.GeminiAPIKey == "" {
			problems = append(problems, "GOOGLE_API_KEY is required for the worker")
		}
		if c.ReplicateAPIToken == "" {
			problems = append(problems, "REPLICATE_API_TOKEN is required for the worker")
		}
		if c.Temporal.Address == "" {
			problems = append(problems, "TEMPORAL_ADDRESS is required for the worker")
		}
		if c.VizConcurrency < 1 {
			problems = append(problems, "FASHION_VIZ_CONCURRENCY must be at least 1")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
