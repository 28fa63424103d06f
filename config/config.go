package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings is the process configuration. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Settings struct {
	Port     string `env:"PORT" envDefault:"3000"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"dukkan_studio.db"`
	DatabaseDebug  bool   `env:"DATABASE_DEBUG" envDefault:"false"`

	JWTSecret      string        `env:"JWT_SECRET,required"`
	SecureCookies  bool          `env:"SECURE_COOKIES" envDefault:"false"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieDuration time.Duration `env:"COOKIE_DURATION" envDefault:"720h"`
	// SessionIdleTimeout drops in-memory studio state that has not been used
	// for this long. The stored template survives.
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"2h"`

	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiAPIKeyParam string        `env:"GEMINI_API_KEY_PARAM"`
	TextModel         string        `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-3-flash-preview"`
	ImageModel        string        `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-3-pro-image-preview"`
	ImageSize         string        `env:"GEMINI_IMAGE_SIZE" envDefault:"1K"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"3m"`

	MaxUploadBytes     int `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
	MaxImageDimension  int `env:"MAX_IMAGE_DIMENSION" envDefault:"2048"`
	MaxImagePixels     int `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`
	ProductionsPerPage int `env:"PRODUCTIONS_PER_PAGE" envDefault:"20"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"none"`
	StorageDir     string `env:"STORAGE_DIR" envDefault:"generated"`
	StoragePrefix  string `env:"STORAGE_PREFIX" envDefault:"posts/"`
	GCSProjectID   string `env:"GCS_PROJECT_ID"`
	GCSBucket      string `env:"GCS_BUCKET_NAME"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3PublicURL    string `env:"S3_PUBLIC_URL"`
}

// Load reads .env (when present) and parses the environment into Settings.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}

	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (s Settings) validate() error {
	switch s.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", s.DatabaseDriver)
	}

	switch s.StorageBackend {
	case "none", "file":
	case "gcs":
		if s.GCSBucket == "" {
			return errors.New("GCS_BUCKET_NAME is required for the gcs storage backend")
		}
	case "s3":
		if s.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 storage backend")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", s.StorageBackend)
	}

	if s.MaxImageDimension <= 0 {
		return errors.New("MAX_IMAGE_DIMENSION must be positive")
	}
	if s.MaxImagePixels <= 0 {
		return errors.New("MAX_IMAGE_PIXELS must be positive")
	}
	return nil
}
