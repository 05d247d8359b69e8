package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the API server and supporting services.
type Config struct {
	ListenAddr string
	MySQLDSN   string

	GeminiAPIKey     string
	GeminiBaseURL    string
	ImageModel       string
	VideoModel       string
	RequestTimeout   time.Duration
	PollInterval     time.Duration
	PollMaxAttempts  int
	RefundOnFailure  bool
	SessionTTL       time.Duration

	AdminUsername string
	AdminPassword string

	UPIID         string
	UPIPayeeName  string
	Currency      string
	SupportPhone  string
	SupportEmail  string

	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
	S3UsePathStyle  bool
	S3Prefix        string

	TelegramBotToken    string
	TelegramAdminChatID int64
}

// Load reads configuration from environment variables, applying sane defaults.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	cfg := Config{
		ListenAddr:          getEnv("LISTEN_ADDR", ":8080"),
		GeminiBaseURL:       normalizeBaseURL(getEnv("GEMINI_BASE_URL", defaultGeminiBaseURL), defaultGeminiBaseURL),
		ImageModel:          getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		VideoModel:          getEnv("GEMINI_VIDEO_MODEL", "veo-3.1-fast-generate-preview"),
		RequestTimeout:      time.Second * time.Duration(getInt("HTTP_TIMEOUT_SECONDS", 60)),
		PollInterval:        time.Second * time.Duration(getInt("VIDEO_POLL_INTERVAL_SECONDS", 5)),
		PollMaxAttempts:     getInt("VIDEO_POLL_MAX_ATTEMPTS", 60),
		RefundOnFailure:     getBool("REFUND_ON_FAILURE", false),
		SessionTTL:          time.Minute * time.Duration(getInt("SESSION_TTL_MINUTES", 0)),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", "change-me"),
		UPIID:               getEnv("UPI_ID", "7840928609@ybl"),
		UPIPayeeName:        getEnv("UPI_PAYEE_NAME", "NexaGuru AI"),
		Currency:            getEnv("PAYMENT_CURRENCY", "INR"),
		SupportPhone:        getEnv("SUPPORT_PHONE", "+917840928609"),
		SupportEmail:        getEnv("SUPPORT_EMAIL", ""),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3Region:            os.Getenv("S3_REGION"),
		S3AccessKey:         os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:         os.Getenv("S3_SECRET_KEY"),
		S3Bucket:            os.Getenv("S3_BUCKET"),
		S3PublicBaseURL:     os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:      getBool("S3_USE_PATH_STYLE", false),
		S3Prefix:            getEnv("S3_PREFIX", "generations"),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChatID: getInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
	}

	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	var missing []string
	if cfg.MySQLDSN == "" {
		missing = append(missing, "MYSQL_DSN")
	}
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if cfg.S3Bucket != "" {
		// Media storage is opt-in, but once a bucket is named the rest of the
		// credentials must be present too.
		if cfg.S3Region == "" {
			missing = append(missing, "S3_REGION")
		}
		if cfg.S3AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if cfg.S3SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
		if cfg.S3PublicBaseURL == "" {
			missing = append(missing, "S3_PUBLIC_BASE_URL")
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = 60
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}

	return cfg, nil
}

// MediaStorageEnabled reports whether generated media should be uploaded to S3.
func (c Config) MediaStorageEnabled() bool {
	return c.S3Bucket != ""
}

// normalizeBaseURL keeps the provider base URL pointed at a scheme-qualified host.
func normalizeBaseURL(raw string, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fallback
	}

	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}
	if parsed.Host == "" {
		parsed.Host = parsed.Path
		parsed.Path = ""
	}

	return strings.TrimRight(parsed.String(), "/")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func loadEnvFile() error {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("access env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	// No env file is fine; the environment itself may carry everything.
	return nil
}
