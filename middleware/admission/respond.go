package admission

import (
	"net/http"
	"strings"

	"admission-gateway/middleware/admission/domain"

	json "github.com/goccy/go-json"
)

// allow-list pequena e explícita de origens externas do CSP
// (fontes e o endpoint de geração de texto).
const hardenedCSP = "default-src 'self'; script-src 'self'; style-src 'self' https://fonts.googleapis.com; " +
	"font-src 'self' https://fonts.gstatic.com; connect-src 'self' https://api.openai.com; " +
	"img-src 'self' data:; frame-ancestors 'none'"

// Harden aplica a tabela fixa de headers defensivos, independente do resultado.
// O pipeline chama em toda rejeição; handlers chamam no próprio sucesso
// (o middleware também aplica na entrada, antes de qualquer escrita).
func Harden(h http.Header) {
	h.Set("Content-Security-Policy", hardenedCSP)
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=(), usb=(), accelerometer=(), gyroscope=(), magnetometer=()")
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}

// ApplyCORS escreve os headers de CORS quando a rota habilita CORS
// explicitamente. Lista de origens vazia significa wildcard; com lista, a
// origem da requisição precisa constar — senão nenhum header é escrito.
func ApplyCORS(h http.Header, origin string, pol domain.CORSPolicy) {
	allowOrigin := "*"
	if len(pol.AllowedOrigins) > 0 {
		if origin == "" || !pol.OriginAllowed(origin) {
			return
		}
		allowOrigin = origin
		h.Add("Vary", "Origin")
	}

	methods := pol.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	}
	headers := pol.AllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "Authorization"}
	}

	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
	h.Set("Access-Control-Allow-Headers", strings.Join(headers, ", "))
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Max-Age", "86400")
}

func setRateLimitHeaders(h http.Header, dec domain.Decision) {
	h.Set("X-RateLimit-Limit", formatInt(dec.Limit))
	h.Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
	if !dec.ResetAt.IsZero() {
		h.Set("X-RateLimit-Reset", formatReset(dec.ResetAt))
	}
}

type rateLimitBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type validationBody struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Details []domain.Issue `json:"details"`
}

// writeRejection traduz a rejeição terminal no envelope JSON do estágio.
func writeRejection(w http.ResponseWriter, rej domain.Rejection) {
	var body any
	switch {
	case rej.Details != nil:
		body = validationBody{Success: false, Error: rej.Error, Details: rej.Details}
	case rej.RetryAfter > 0:
		body = rateLimitBody{Error: rej.Error, Message: rej.Message, RetryAfter: int(rej.RetryAfter.Seconds())}
	default:
		body = errorBody{Error: rej.Error, Message: rej.Message}
	}
	writeJSON(w, rej.Status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
