package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL  = "https://ensupsqy.skillogs.info"
	DefaultOrigin   = "https://ensupsqy.skillogs.io"
	DefaultCache    = "index.json"
	DefaultTime     = 30
	DefaultTimeout  = 60 * time.Second
	DefaultLanguage = "fr"
)

var ErrMissingCredentials = errors.New("skillogs credentials missing")

// Config - всё, что нужно для одного прогона валидации.
type Config struct {
	BaseURL string
	// Origin/Referer, которые ждёт API (фронт живёт на другом домене)
	Origin   string
	Language string

	Email    string
	Password string

	CacheFile string
	// Time - фиксированное "время просмотра" в секундах для каждого под-элемента
	Time         int
	InferAnswers bool
	Timeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Origin:    DefaultOrigin,
		Language:  DefaultLanguage,
		CacheFile: DefaultCache,
		Time:      DefaultTime,
		Timeout:   DefaultTimeout,
	}
}

// Load подгружает .env (если есть) и собирает конфиг из окружения.
// Отсутствие файла не ошибка: переменные могут быть уже выставлены.
func Load(envFile string) (Config, error) {
	files := []string{}
	if envFile != "" {
		files = append(files, envFile)
	}
	if err := godotenv.Load(files...); err != nil {
		if envFile != "" || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv читает конфиг из окружения поверх DefaultConfig.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.BaseURL = strings.TrimRight(getenvOr("SKILLOGS_BASE_URL", cfg.BaseURL), "/")
	cfg.Origin = strings.TrimRight(getenvOr("SKILLOGS_ORIGIN", cfg.Origin), "/")
	cfg.Language = getenvOr("SKILLOGS_LANGUAGE", cfg.Language)
	cfg.CacheFile = getenvOr("CACHE_FILE", cfg.CacheFile)

	if v := getenvOr("VALIDATION_TIME", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("VALIDATION_TIME: %w", err)
		}
		cfg.Time = n
	}
	if v := getenvOr("INFER_ANSWERS", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("INFER_ANSWERS: %w", err)
		}
		cfg.InferAnswers = b
	}
	if v := getenvOr("HTTP_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	var err error
	if cfg.Email, err = requireCredential("MAIL"); err != nil {
		return Config{}, err
	}
	if cfg.Password, err = requireCredential("PASSWORD"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет то, без чего прогон не имеет смысла.
func (c Config) Validate() error {
	if _, err := validateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("SKILLOGS_BASE_URL: %w", err)
	}
	if c.Origin != "" {
		if _, err := validateBaseURL(c.Origin); err != nil {
			return fmt.Errorf("SKILLOGS_ORIGIN: %w", err)
		}
	}
	if c.Email == "" || c.Password == "" {
		return errors.New("MAIL and PASSWORD are required")
	}
	if c.Time <= 0 {
		return fmt.Errorf("validation time must be positive, got %d", c.Time)
	}
	if c.CacheFile == "" {
		return errors.New("cache file path is required")
	}
	return nil
}

/* ------------------------ helpers ------------------------ */

// requireCredential - логин на платформу без MAIL/PASSWORD невозможен.
func requireCredential(key string) (string, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return "", fmt.Errorf("%w: %s is not set (put it in .env or export it)", ErrMissingCredentials, key)
	}
	return val, nil
}

func getenvOr(key, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

func validateBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", raw)
	}
	return u, nil
}
