package application

import (
	"math"
	"time"

	"admission-gateway/middleware/admission/domain"
)

// Service concentra a regra de aplicação do rate limit por janela fixa.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store  domain.CounterStore
	Policy domain.RateLimitPolicy
	// Now permite injetar relógio em teste. Se nil, usa time.Now.
	Now func() time.Time
}

// Admit consulta/consome a cota do identificador na partição da política.
// Rejeições não consomem cota além da própria checagem: chamadas repetidas
// após estourar reportam remaining=0 e o mesmo ResetAt até a janela virar.
func (s Service) Admit(id domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{
			Allowed:   true,
			Limit:     s.Policy.MaxRequests,
			Remaining: s.Policy.MaxRequests,
		}
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	res := s.Store.CheckAndIncrement(s.Policy.PartitionKey(id), now, s.Policy.Window, s.Policy.MaxRequests)

	dec := domain.Decision{
		Allowed:   res.Allowed,
		Limit:     s.Policy.MaxRequests,
		Remaining: res.Remaining,
		ResetAt:   res.ResetAt,
	}
	if !res.Allowed {
		// Retry-After em segundos inteiros, arredondando para cima.
		secs := math.Ceil(res.ResetAt.Sub(now).Seconds())
		if secs < 1 {
			secs = 1
		}
		dec.RetryAfter = time.Duration(secs) * time.Second
	}
	return dec
}

// Reject traduz uma decisão negada na rejeição terminal da política.
func (s Service) Reject(dec domain.Decision) domain.Rejection {
	status := s.Policy.RejectStatus
	if status == 0 {
		status = 429
	}
	return domain.Rejection{
		Stage:      domain.StageRateLimit,
		Status:     status,
		Error:      "Rate limit exceeded",
		Message:    s.Policy.Message,
		RetryAfter: dec.RetryAfter,
	}
}
