package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admission-gateway/middleware/admission"
	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// schema do endpoint de geração de texto: o mesmo shape valida e sanitiza.
var generateSchema = domain.Schema{
	"prompt": {Type: domain.TypeString, Required: true, MinLen: 1, MaxLen: 4000},
	"style":  {Type: domain.TypeString, Enum: []string{"casual", "formal", "technical"}},
	"maxWords": {
		Type: domain.TypeInteger,
		Min:  floatPtr(1),
		Max:  floatPtr(2000),
	},
}

func floatPtr(f float64) *float64 { return &f }

func main() {
	// Exemplo: injetando o middleware diretamente no seu webserver (sem proxy)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	store := infra.NewStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		payload, ok := admission.PayloadFromContext(r.Context())
		if !ok {
			http.Error(w, "missing payload", http.StatusInternalServerError)
			return
		}

		// resposta de sucesso endurecida pelo próprio handler
		admission.Harden(w.Header())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"echo":    payload,
		})
	})

	h := http.Handler(mux)
	h = admission.ConcurrencyMiddleware(admission.ConcurrencyOptions{Max: 50})(h)
	h = admission.Middleware(admission.Options{
		Store:  store,
		Policy: domain.PolicyAI,
		Security: domain.SecurityPolicy{
			MaxRequestBytes: 1 << 20,
			AllowedMethods:  []string{http.MethodPost},
		},
		Schema: generateSchema,
		CORS:   &domain.CORSPolicy{},
		Logger: &logger,
	})(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("listen", addr).Msg("example server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}
