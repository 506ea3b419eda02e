package admission

import (
	"context"
	"net/http"
	"time"

	"admission-gateway/middleware/admission/application"
	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"

	json "github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

type Options struct {
	// Store + Policy controlam o rate limit por chave. Store nil desliga a cota.
	Store  domain.CounterStore
	Policy domain.RateLimitPolicy
	// Security controla método e tamanho declarado do corpo.
	Security domain.SecurityPolicy
	// Schema, quando presente, liga decodificação+validação+sanitização do corpo.
	Schema domain.Schema
	// Throttle é o guarda global de vazão. Nil desliga.
	Throttle *infra.Throttle
	// CORS, quando presente, habilita CORS na rota (inclui preflight OPTIONS).
	CORS *domain.CORSPolicy
	// Stats grava decisões best-effort; erro nunca derruba a requisição.
	Stats domain.StatsStore

	IdentityFn IdentityFunc
	Logger     *zerolog.Logger
	// Now permite injetar relógio em teste. Se nil, usa time.Now.
	Now func() time.Time
}

type payloadCtxKey struct{}

// PayloadFromContext devolve o payload já validado e sanitizado pelo pipeline.
// Só existe quando Options.Schema foi configurado e todos os estágios passaram.
func PayloadFromContext(ctx context.Context) (map[string]any, bool) {
	p, ok := ctx.Value(payloadCtxKey{}).(map[string]any)
	return p, ok
}

// Middleware monta o pipeline de admissão na ordem fixa:
// identidade -> cota -> segurança -> validação/sanitização.
//
// A ordem importa: a cota vem antes de qualquer parse do corpo, então corpo
// grande ou malformado de chamador já estrangulado é rejeitado sem custo de
// validação. A primeira rejeição é terminal — nenhum estágio roda depois dela.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.IdentityFn == nil {
		opts.IdentityFn = ClientIdentity
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	svc := application.Service{
		Store:  opts.Store,
		Policy: opts.Policy,
		Now:    opts.Now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// endurecimento antes de qualquer escrita: toda resposta carrega
			// os headers, inclusive as do handler/upstream
			Harden(w.Header())

			if opts.CORS != nil {
				ApplyCORS(w.Header(), r.Header.Get("Origin"), *opts.CORS)
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			reqID := ulid.Make().String()
			w.Header().Set("X-Request-Id", reqID)

			id := opts.IdentityFn(r)
			reqLogger := logger.With().
				Str("request_id", reqID).
				Str("key", string(id)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			out := runPipeline(opts, svc, id, r)

			if out.Decision != nil {
				setRateLimitHeaders(w.Header(), *out.Decision)
			}

			if opts.Stats != nil {
				stage := domain.StageRateLimit
				if out.Rejection != nil {
					stage = out.Rejection.Stage
				}
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     id,
					Allowed: out.Rejection == nil,
					Stage:   stage,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
			}

			if out.Rejection != nil {
				if out.Rejection.RetryAfter > 0 {
					w.Header().Set("Retry-After", formatInt(int(out.Rejection.RetryAfter.Seconds())))
				}
				reqLogger.Warn().
					Str("stage", string(out.Rejection.Stage)).
					Int("status", out.Rejection.Status).
					Msg("request rejected")
				writeRejection(w, *out.Rejection)
				return
			}

			reqLogger.Debug().Msg("request admitted")

			if out.Payload != nil {
				r = r.WithContext(context.WithValue(r.Context(), payloadCtxKey{}, out.Payload))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// pipelineOutcome é o resultado terminal do pipeline: ou a primeira rejeição,
// ou passagem com o payload sanitizado (quando há schema).
type pipelineOutcome struct {
	Decision  *domain.Decision
	Rejection *domain.Rejection
	Payload   map[string]any
}

// runPipeline executa os estágios na ordem fixa. Qualquer pânico de estágio
// vira uma falha interna genérica (500) sem vazar detalhe ao cliente.
func runPipeline(opts Options, svc application.Service, id domain.Key, r *http.Request) (out pipelineOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = pipelineOutcome{Rejection: &domain.Rejection{
				Stage:   domain.StageInternal,
				Status:  http.StatusInternalServerError,
				Error:   "Internal server error",
				Message: "An unexpected error occurred",
			}}
		}
	}()

	if !opts.Throttle.Allow() {
		out.Rejection = &domain.Rejection{
			Stage:      domain.StageThrottle,
			Status:     http.StatusTooManyRequests,
			Error:      "Rate limit exceeded",
			Message:    "Server is busy, please try again shortly.",
			RetryAfter: 1 * time.Second,
		}
		return out
	}

	if opts.Store != nil {
		dec := svc.Admit(id)
		out.Decision = &dec
		if !dec.Allowed {
			rej := svc.Reject(dec)
			out.Rejection = &rej
			return out
		}
	}

	if rej := application.CheckRequest(r.Method, r.ContentLength, opts.Security); rej != nil {
		out.Rejection = rej
		return out
	}

	if opts.Schema != nil {
		payload, rej := decodeAndValidate(opts, r)
		if rej != nil {
			out.Rejection = rej
			return out
		}
		out.Payload = payload
	}

	return out
}

func decodeAndValidate(opts Options, r *http.Request) (map[string]any, *domain.Rejection) {
	if opts.Security.MaxRequestBytes > 0 {
		// corte real de corpo sem Content-Length declarado
		r.Body = http.MaxBytesReader(nil, r.Body, opts.Security.MaxRequestBytes)
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, &domain.Rejection{
			Stage:   domain.StageValidate,
			Status:  http.StatusBadRequest,
			Error:   "Invalid request data",
			Details: []domain.Issue{{Field: "body", Message: "must be a valid JSON object"}},
		}
	}

	if issues := application.Validate(opts.Schema, payload); len(issues) > 0 {
		return nil, &domain.Rejection{
			Stage:   domain.StageValidate,
			Status:  http.StatusBadRequest,
			Error:   "Invalid request data",
			Details: issues,
		}
	}

	return application.Sanitize(payload), nil
}
