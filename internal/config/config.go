// Package config loads runtime settings from the environment, optionally
// layered on top of a TOML file named by PATRIMONIO_CONFIG. Environment
// variables always win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DatabaseURL string // PATRIMONIO_DATABASE_URL (required)
	HTTPAddr    string // PATRIMONIO_HTTP_ADDR (default ":8080")
	NATSURL     string // PATRIMONIO_NATS_URL (optional, empty = no events)
	HRSubject   string // PATRIMONIO_HR_SUBJECT (default "hr.events")
	AuthToken   string // PATRIMONIO_AUTH_TOKEN (optional, empty = auth disabled)
	RedisURL    string // PATRIMONIO_REDIS_URL (optional, empty = no cache)

	// Event apply retry policy
	ApplyMaxAttempts int           // PATRIMONIO_APPLY_MAX_ATTEMPTS (default 5)
	ApplyBackoff     time.Duration // PATRIMONIO_APPLY_BACKOFF (default 5s)

	// Backup sync settings
	SyncInterval   time.Duration // PATRIMONIO_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // PATRIMONIO_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // PATRIMONIO_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // PATRIMONIO_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // PATRIMONIO_SYNC_S3_KEY (default "patrimonio/backup.jsonl")
}

// fileConfig mirrors Config for the optional TOML file.
type fileConfig struct {
	DatabaseURL      string `toml:"database_url"`
	HTTPAddr         string `toml:"http_addr"`
	NATSURL          string `toml:"nats_url"`
	HRSubject        string `toml:"hr_subject"`
	AuthToken        string `toml:"auth_token"`
	RedisURL         string `toml:"redis_url"`
	ApplyMaxAttempts int    `toml:"apply_max_attempts"`
	ApplyBackoff     string `toml:"apply_backoff"`
	SyncInterval     string `toml:"sync_interval"`
	SyncS3Bucket     string `toml:"sync_s3_bucket"`
	SyncS3Endpoint   string `toml:"sync_s3_endpoint"`
	SyncS3Region     string `toml:"sync_s3_region"`
	SyncS3Key        string `toml:"sync_s3_key"`
}

func Load() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("PATRIMONIO_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	c := &Config{
		DatabaseURL:    firstOf(os.Getenv("PATRIMONIO_DATABASE_URL"), file.DatabaseURL),
		HTTPAddr:       firstOf(os.Getenv("PATRIMONIO_HTTP_ADDR"), file.HTTPAddr, ":8080"),
		NATSURL:        firstOf(os.Getenv("PATRIMONIO_NATS_URL"), file.NATSURL),
		HRSubject:      firstOf(os.Getenv("PATRIMONIO_HR_SUBJECT"), file.HRSubject, "hr.events"),
		AuthToken:      firstOf(os.Getenv("PATRIMONIO_AUTH_TOKEN"), file.AuthToken),
		RedisURL:       firstOf(os.Getenv("PATRIMONIO_REDIS_URL"), file.RedisURL),
		SyncS3Bucket:   firstOf(os.Getenv("PATRIMONIO_SYNC_S3_BUCKET"), file.SyncS3Bucket),
		SyncS3Endpoint: firstOf(os.Getenv("PATRIMONIO_SYNC_S3_ENDPOINT"), file.SyncS3Endpoint),
		SyncS3Region:   firstOf(os.Getenv("PATRIMONIO_SYNC_S3_REGION"), file.SyncS3Region, "us-east-1"),
		SyncS3Key:      firstOf(os.Getenv("PATRIMONIO_SYNC_S3_KEY"), file.SyncS3Key, "patrimonio/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("PATRIMONIO_DATABASE_URL is required")
	}

	attemptsStr := firstOf(os.Getenv("PATRIMONIO_APPLY_MAX_ATTEMPTS"), "")
	if attemptsStr != "" {
		n, err := strconv.Atoi(attemptsStr)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("PATRIMONIO_APPLY_MAX_ATTEMPTS: must be a positive integer")
		}
		c.ApplyMaxAttempts = n
	} else if file.ApplyMaxAttempts > 0 {
		c.ApplyMaxAttempts = file.ApplyMaxAttempts
	} else {
		c.ApplyMaxAttempts = 5
	}

	backoff, err := durationSetting("PATRIMONIO_APPLY_BACKOFF", file.ApplyBackoff, 5*time.Second)
	if err != nil {
		return nil, err
	}
	c.ApplyBackoff = backoff

	interval, err := durationSetting("PATRIMONIO_SYNC_INTERVAL", file.SyncInterval, 3*time.Minute)
	if err != nil {
		return nil, err
	}
	c.SyncInterval = interval

	return c, nil
}

// durationSetting resolves a duration from env, then the file value, then
// the fallback. An explicit "0" disables the setting.
func durationSetting(envKey, fileVal string, fallback time.Duration) (time.Duration, error) {
	raw := firstOf(os.Getenv(envKey), fileVal)
	if raw == "" {
		return fallback, nil
	}
	if raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", envKey, err)
	}
	return d, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
