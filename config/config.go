package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters read from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	ArxivBaseURL    string `envconfig:"ARXIV_BASE_URL" default:"http://export.arxiv.org/api/query"`
	ArxivMaxResults int    `envconfig:"ARXIV_MAX_RESULTS" default:"10"`
	// Per-request timeout for the external index, in seconds. Expiry is
	// treated like any other fetch error: zero results for that query.
	SearchTimeoutSeconds int `envconfig:"SEARCH_TIMEOUT_SECONDS" default:"20"`
	SearchConcurrency    int `envconfig:"SEARCH_CONCURRENCY" default:"3"`

	// Staleness sweep: topics stuck in a non-terminal status longer than
	// this are marked failed by the cron job.
	CronSchedule      string `envconfig:"CRON_SCHEDULE" default:"*/5 * * * *"`
	StaleAfterMinutes int    `envconfig:"STALE_AFTER_MINUTES" default:"30"`

	// Optional S3-compatible archive for composed documents. Archiving is
	// skipped entirely when the endpoint is unset.
	ArchiveS3Key    string `envconfig:"ARCHIVE_S3_KEY"`
	ArchiveS3Secret string `envconfig:"ARCHIVE_S3_SECRET"`
	ArchiveS3URL    string `envconfig:"ARCHIVE_S3_URL"`
	ArchiveS3Region string `envconfig:"ARCHIVE_S3_REGION"`
	ArchiveS3Bucket string `envconfig:"ARCHIVE_S3_BUCKET"`

	EnabledProviders string `envconfig:"ENABLED_PROVIDERS" default:"arxiv"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// ArchiveEnabled reports whether the S3 document archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveS3URL != "" && c.ArchiveS3Bucket != ""
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
