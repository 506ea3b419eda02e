package infra

import "golang.org/x/time/rate"

// Throttle é um guarda global de vazão (token bucket via x/time/rate) aplicado
// ao processo inteiro, antes da contabilidade por chave. Ele suaviza rajadas
// agregadas que nenhuma cota individual capturaria.
type Throttle struct {
	lim   *rate.Limiter
	rps   float64
	burst int
}

func NewThrottle(rps float64, burst int) *Throttle {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &Throttle{
		lim:   rate.NewLimiter(rate.Limit(rps), burst),
		rps:   rps,
		burst: burst,
	}
}

// Allow consome um token. Um Throttle nil permite tudo, então o campo pode
// ficar zerado nas Options sem checagem no chamador.
func (t *Throttle) Allow() bool {
	if t == nil || t.lim == nil {
		return true
	}
	return t.lim.Allow()
}

func (t *Throttle) RPS() float64 { return t.rps }
func (t *Throttle) Burst() int   { return t.burst }
