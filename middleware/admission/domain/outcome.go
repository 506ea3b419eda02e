package domain

import "time"

// Stage identifica o estágio do pipeline que produziu uma decisão.
type Stage string

const (
	StageThrottle  Stage = "throttle"
	StageRateLimit Stage = "ratelimit"
	StageSecurity  Stage = "security"
	StageValidate  Stage = "validation"
	StageInternal  Stage = "internal"
)

// Rejection é a negativa terminal de um estágio do pipeline.
// No máximo um estágio produz a Rejection de uma requisição; depois dela
// nenhum estágio roda.
type Rejection struct {
	Stage   Stage
	Status  int
	Error   string
	Message string
	// Details só em rejeição de validação (lista completa de violações).
	Details []Issue
	// RetryAfter só em rejeição de cota.
	RetryAfter time.Duration
}
