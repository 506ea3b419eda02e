package admission

import (
	"net/http"
	"strings"

	"admission-gateway/middleware/admission/domain"
)

// IdentityFunc deriva a chave de cota a partir da requisição.
type IdentityFunc func(r *http.Request) domain.Key

const identitySeparator = "-"

// ClientIdentity deriva um identificador estável do chamador: endereço
// resolvido + User-Agent. Ordem de prioridade do endereço: primeiro token do
// X-Forwarded-For (cliente original), X-Real-IP, CF-Connecting-IP; sem nenhum,
// o literal "unknown". Sempre retorna um valor, sem chamadas de rede.
//
// Limitação aceita: chamadores distintos atrás do mesmo NAT/proxy com o mesmo
// User-Agent caem no mesmo bucket — atribuição aproximada, não por usuário.
func ClientIdentity(r *http.Request) domain.Key {
	addr := ""

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// pega o primeiro IP do X-Forwarded-For (cliente original)
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			addr = strings.TrimSpace(parts[0])
		}
	}
	if addr == "" {
		addr = strings.TrimSpace(r.Header.Get("X-Real-IP"))
	}
	if addr == "" {
		addr = strings.TrimSpace(r.Header.Get("CF-Connecting-IP"))
	}
	if addr == "" {
		addr = "unknown"
	}

	ua := strings.TrimSpace(r.Header.Get("User-Agent"))
	if ua == "" {
		ua = "unknown"
	}

	return domain.Key(addr + identitySeparator + ua)
}
