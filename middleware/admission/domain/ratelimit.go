package domain

// Camada de domínio do rate limit por janela fixa.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica um chamador para fins de cota (ex: IP+User-Agent, API key).
type Key string

// RateLimitPolicy é a configuração imutável de uma política de cota.
// Cada política particiona o keyspace do store com seu próprio nome,
// então políticas distintas nunca interferem entre si.
type RateLimitPolicy struct {
	Name        string
	Window      time.Duration
	MaxRequests int
	// Message vai no corpo da resposta quando a cota estoura.
	Message string
	// RejectStatus é o status HTTP da rejeição. Se 0, a camada HTTP usa 429.
	RejectStatus int
}

// PartitionKey prefixa o identificador com o nome da política,
// isolando a contabilidade de cada política no mesmo store.
func (p RateLimitPolicy) PartitionKey(id Key) Key {
	return Key(p.Name + ":" + string(id))
}

// Políticas nomeadas com os parâmetros padrão de cada classe de endpoint.
var (
	PolicyAuth = RateLimitPolicy{
		Name:        "auth",
		Window:      15 * time.Minute,
		MaxRequests: 5,
		Message:     "Too many authentication attempts, please try again later.",
	}
	PolicyAPI = RateLimitPolicy{
		Name:        "api",
		Window:      15 * time.Minute,
		MaxRequests: 100,
		Message:     "Too many requests, please slow down.",
	}
	PolicyAI = RateLimitPolicy{
		Name:        "ai",
		Window:      60 * time.Minute,
		MaxRequests: 10,
		Message:     "AI request limit reached, please try again later.",
	}
	PolicyPublic = RateLimitPolicy{
		Name:        "public",
		Window:      15 * time.Minute,
		MaxRequests: 1000,
		Message:     "Request limit reached, please try again later.",
	}
)

// NamedPolicy retorna a política com o nome dado, se existir.
func NamedPolicy(name string) (RateLimitPolicy, bool) {
	switch name {
	case PolicyAuth.Name:
		return PolicyAuth, true
	case PolicyAPI.Name:
		return PolicyAPI, true
	case PolicyAI.Name:
		return PolicyAI, true
	case PolicyPublic.Name:
		return PolicyPublic, true
	}
	return RateLimitPolicy{}, false
}

// CounterResult é o resultado de uma passada atômica de check-and-increment.
type CounterResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// CounterStore mantém um contador de janela fixa por chave.
//
// CheckAndIncrement deve ser atômico por chave: duas requisições concorrentes
// da mesma chave nunca podem ambas observar "primeira da janela", e o contador
// nunca pode sub/sobrecontar sob concorrência.
//
// A implementação pode ser em memória, sharded, ou futuramente um store
// compartilhado — o contrato do pipeline não muda.
type CounterStore interface {
	CheckAndIncrement(key Key, now time.Time, window time.Duration, maxRequests int) CounterResult
	// Sweep remove todo registro cuja janela expirou antes de now.
	Sweep(now time.Time)
}

// Decision é a decisão de admissão do rate limiter, já com os valores
// informativos que a camada HTTP traduz em headers X-RateLimit-*.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
