package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config reúne os parâmetros da aplicação lidos do ambiente (.env opcional).
type Config struct {
	HTTPAddr string
	SiteURL  string

	// Fuso usado para interpretar datas de relatórios e meses de acerto.
	Timezone *time.Location

	DedupWindow        time.Duration
	SessionTTL         time.Duration
	AggregationWorkers int

	JWTSecret         string
	AdminPasswordHash string
	AccessTTL         time.Duration

	CORSAllowedOrigins []string

	NotifyWebhookURL string
	RedisAddr        string
	RedisPassword    string
	RedisChannel     string
	KafkaBrokers     []string
	KafkaTopic       string

	RateLimitRPS   float64
	RateLimitBurst int

	// Só ligar atrás de um proxy confiável.
	TrustProxyHeaders bool
}

// Load lê o .env (se existir) e monta a configuração com valores padrão.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("não foi possível ler o arquivo .env", "err", err)
	}

	tzName := lookup("APP_TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPAddr:           lookup("HTTP_ADDR", ":8080"),
		SiteURL:            strings.TrimRight(lookup("SITE_URL", "http://localhost:3000"), "/"),
		Timezone:           loc,
		DedupWindow:        lookupDuration("DEDUP_WINDOW", 60*time.Second),
		SessionTTL:         lookupDuration("SESSION_TTL", 24*time.Hour),
		AggregationWorkers: lookupInt("AGGREGATION_WORKERS", 4),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		AccessTTL:          lookupDuration("ACCESS_TTL", 12*time.Hour),
		CORSAllowedOrigins: lookupList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		NotifyWebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisChannel:       lookup("REDIS_CHANNEL", "referral.quotes"),
		KafkaBrokers:       lookupList("KAFKA_BROKERS", nil),
		KafkaTopic:         lookup("KAFKA_TOPIC", "referral.quotes"),
		RateLimitRPS:       lookupFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     lookupInt("RATE_LIMIT_BURST", 20),
		TrustProxyHeaders:  lookupBool("TRUST_PROXY_HEADERS", false),
	}, nil
}

func lookup(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func lookupInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func lookupFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func lookupBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

// aceita "90s", "24h" etc.
func lookupDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func lookupList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
