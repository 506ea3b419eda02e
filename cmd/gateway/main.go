package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"admission-gateway/middleware/admission"
	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(getenvDefault("LOG_LEVEL", "info")); err == nil {
		logger = logger.Level(lvl)
	}

	cfg, err := readConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid UPSTREAM_URL")
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error().Err(err).Msg("proxy error")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	store := infra.NewStore()

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("redis stats ping error")
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	var cors *domain.CORSPolicy
	if cfg.corsEnabled {
		cors = &domain.CORSPolicy{AllowedOrigins: cfg.corsOrigins}
	}

	admissionStore := domain.CounterStore(store)
	if !cfg.rateEnabled {
		admissionStore = nil
	}

	h := http.Handler(proxy)
	h = admission.ConcurrencyMiddleware(admission.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)
	h = admission.Middleware(admission.Options{
		Store:  admissionStore,
		Policy: cfg.policy,
		Security: domain.SecurityPolicy{
			MaxRequestBytes: cfg.maxRequestBytes,
			AllowedMethods:  cfg.allowedMethods,
		},
		Throttle: infra.NewThrottle(cfg.globalRPS, cfg.globalBurst),
		CORS:     cors,
		Stats:    statsStore,
		Logger:   &logger,
	})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("listen", cfg.listenAddr).Str("upstream", target.String()).Msg("gateway listening")
	logger.Info().
		Bool("enabled", cfg.rateEnabled).
		Str("policy", cfg.policy.Name).
		Dur("window", cfg.policy.Window).
		Int("maxRequests", cfg.policy.MaxRequests).
		Msg("rate limit")
	logger.Info().
		Int64("maxRequestBytes", cfg.maxRequestBytes).
		Strs("allowedMethods", cfg.allowedMethods).
		Bool("cors", cfg.corsEnabled).
		Msg("security")
	logger.Info().
		Bool("enabled", cfg.statsEnabled).
		Str("redisAddr", cfg.statsRedisAddr).
		Str("bucket", cfg.statsBucket).
		Dur("ttl", cfg.statsTTL).
		Bool("trackKeys", cfg.statsTrackKeys).
		Msg("admission stats")
	logger.Info().
		Int("max", cfg.concurrencyMax).
		Dur("acquireTimeout", cfg.concurrencyTimeout).
		Msg("concurrency")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}

type config struct {
	listenAddr  string
	upstreamURL string

	rateEnabled bool
	policy      domain.RateLimitPolicy

	globalRPS   float64
	globalBurst int

	maxRequestBytes int64
	allowedMethods  []string

	corsEnabled bool
	corsOrigins []string

	concurrencyMax     int
	concurrencyTimeout time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")
	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)

	// política nomeada (auth/api/ai/public), com janela/teto sobrescrevíveis
	policyName := getenvDefault("RATE_POLICY", "api")
	policy, ok := domain.NamedPolicy(policyName)
	if !ok {
		return config{}, errors.New("RATE_POLICY must be one of: auth, api, ai, public")
	}
	if d := getenvDurationDefault("RATE_WINDOW", 0); d > 0 {
		policy.Window = d
	}
	if n := getenvIntDefault("RATE_MAX_REQUESTS", 0); n > 0 {
		policy.MaxRequests = n
	}
	cfg.policy = policy

	cfg.globalRPS = getenvFloatDefault("GLOBAL_RPS", 0)
	cfg.globalBurst = getenvIntDefault("GLOBAL_BURST", 0)

	cfg.maxRequestBytes = int64(getenvIntDefault("MAX_REQUEST_BYTES", 1<<20))
	cfg.allowedMethods = splitCSV(getenvDefault("ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"))

	cfg.corsEnabled = getenvBoolDefault("CORS_ENABLED", false)
	cfg.corsOrigins = splitCSV(os.Getenv("CORS_ORIGINS"))

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.statsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("RATE_STATS_PREFIX", "admission:stats")
	cfg.statsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}

	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.policy.Window <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.policy.MaxRequests <= 0 {
		return config{}, errors.New("RATE_MAX_REQUESTS must be > 0")
	}
	if cfg.maxRequestBytes <= 0 {
		return config{}, errors.New("MAX_REQUEST_BYTES must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
