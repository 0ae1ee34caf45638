package configs

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/env"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Mongo       MongoConfig       `koanf:"mongo"`
	Auth        AuthConfig        `koanf:"auth"`
	Game        GameConfig        `koanf:"game"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	AllowedHeaders []string      `koanf:"allowed_headers"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type MongoConfig struct {
	URI               string        `koanf:"uri"`
	Database          string        `koanf:"database"`
	ConnectionTimeout time.Duration `koanf:"connection_timeout"`
}

type AuthConfig struct {
	JWTSecret   string `koanf:"jwt_secret"`
	TestAccount string `koanf:"test_account"`
}

type GameConfig struct {
	DefaultWinScore     int           `koanf:"default_win_score"`
	DefaultGuessSeconds int           `koanf:"default_guess_seconds"`
	DisconnectGrace     time.Duration `koanf:"disconnect_grace"`
	EmptyRoomTTL        time.Duration `koanf:"empty_room_ttl"`
	QuizQuestionSeconds int           `koanf:"quiz_question_seconds"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 3000)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})
	setDefault(k, "http.allowed_headers", []string{"Content-Type", "Authorization"})

	// Rate limiter defaults
	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	// Mongo defaults
	setDefault(k, "mongo.uri", "mongodb://localhost:27017")
	setDefault(k, "mongo.database", "asocijacije")
	setDefault(k, "mongo.connection_timeout", 20*time.Second)

	// Auth defaults
	setDefault(k, "auth.jwt_secret", "asocijacije-secret-change-in-prod")
	setDefault(k, "auth.test_account", "")

	// Game defaults
	setDefault(k, "game.default_win_score", 10)
	setDefault(k, "game.default_guess_seconds", 30)
	setDefault(k, "game.disconnect_grace", 15*time.Second)
	setDefault(k, "game.empty_room_ttl", 5*time.Minute)
	setDefault(k, "game.quiz_question_seconds", 20)
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}

	if uri := env.GetString("MONGODB_URI", ""); uri != "" {
		k.Set("mongo.uri", uri)
	}
	if database := env.GetString("MONGODB_DATABASE", ""); database != "" {
		k.Set("mongo.database", database)
	}

	if secret := env.GetString("JWT_SECRET", ""); secret != "" {
		k.Set("auth.jwt_secret", secret)
	}
	if testAccount := env.GetString("TEST_ACCOUNT", ""); testAccount != "" {
		k.Set("auth.test_account", testAccount)
	}

	if winScore := env.GetInt("GAME_DEFAULT_WIN_SCORE", 0); winScore > 0 {
		k.Set("game.default_win_score", winScore)
	}
	if guessSeconds := env.GetInt("GAME_DEFAULT_GUESS_SECONDS", -1); guessSeconds >= 0 {
		k.Set("game.default_guess_seconds", guessSeconds)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
