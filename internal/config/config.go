package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/utils"
)

// Config carries every tunable the ingestion and verification subsystems
// read. Values come from the environment, optionally overridden by a YAML
// file pointed at by KOMONDOR_CONFIG_FILE. Duration keys in the file are
// integer nanoseconds; the env variants accept Go duration strings.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	// Filesystem roots. DatastoreRoot is where relocated run files live,
	// UploadStagingDir is where the resumable upload server parks direct
	// uploads, HPCTransferRoot is where the cluster-side mover stages files.
	DatastoreRoot    string `yaml:"datastore_root"`
	UploadStagingDir string `yaml:"upload_staging_dir"`
	HPCTransferRoot  string `yaml:"hpc_transfer_root"`

	// Verification policy.
	SkipMD5Verification     bool `yaml:"skip_md5_verification"`
	MaxVerificationAttempts int  `yaml:"max_verification_attempts"`
	VerificationBatchLimit  int  `yaml:"verification_batch_limit"`

	IngestionBatchSize  int `yaml:"ingestion_batch_size"`
	StaleRunMaxAgeHours int `yaml:"stale_run_max_age_hours"`

	// Scheduler cadences.
	VerifyInterval time.Duration `yaml:"verify_interval"`
	CleanupAt      string        `yaml:"cleanup_at"` // HH:MM, local time
	StartupDelay   time.Duration `yaml:"startup_delay"`

	JWTSecret       string        `yaml:"jwt_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

func Load(log *logger.Logger) (*Config, error) {
	cfg := &Config{
		HTTPAddr:                utils.GetEnv("HTTP_ADDR", ":8080", log),
		DatastoreRoot:           utils.GetEnv("DATASTORE_ROOT", "/data/sequencing", log),
		UploadStagingDir:        utils.GetEnv("UPLOAD_STAGING_DIR", "/data/uploads/tmp", log),
		HPCTransferRoot:         utils.GetEnv("HPC_TRANSFER_ROOT", "/data/hpc-transfer", log),
		SkipMD5Verification:     utils.GetEnvAsBool("SKIP_MD5_VERIFICATION", false, log),
		MaxVerificationAttempts: utils.GetEnvAsInt("MAX_VERIFICATION_ATTEMPTS", 3, log),
		VerificationBatchLimit:  utils.GetEnvAsInt("VERIFICATION_BATCH_LIMIT", 10, log),
		IngestionBatchSize:      utils.GetEnvAsInt("INGESTION_BATCH_SIZE", 5, log),
		StaleRunMaxAgeHours:     utils.GetEnvAsInt("STALE_RUN_MAX_AGE_HOURS", 24, log),
		VerifyInterval:          utils.GetEnvAsDuration("VERIFY_INTERVAL", 5*time.Minute, log),
		CleanupAt:               utils.GetEnv("CLEANUP_AT", "02:00", log),
		StartupDelay:            utils.GetEnvAsDuration("STARTUP_DELAY", 10*time.Second, log),
		JWTSecret:               utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:          utils.GetEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour, log),
		RefreshTokenTTL:         utils.GetEnvAsDuration("REFRESH_TOKEN_TTL", 24*time.Hour, log),
	}

	if path := os.Getenv("KOMONDOR_CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config override file", "path", path)
		}
	}

	if cfg.MaxVerificationAttempts < 1 {
		return nil, fmt.Errorf("max verification attempts must be at least 1, got %d", cfg.MaxVerificationAttempts)
	}
	if cfg.IngestionBatchSize < 1 {
		return nil, fmt.Errorf("ingestion batch size must be at least 1, got %d", cfg.IngestionBatchSize)
	}
	if _, err := ParseClock(cfg.CleanupAt); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseClock parses an HH:MM time-of-day string.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q (want HH:MM): %w", s, err)
	}
	return t, nil
}
