package application

import (
	"fmt"
	"net/http"
	"strings"

	"admission-gateway/middleware/admission/domain"
)

// CheckRequest valida método e tamanho declarado do corpo contra a política.
// contentLength segue a convenção de net/http: -1 quando desconhecido
// (tamanho desconhecido não rejeita aqui; o corte real fica no MaxBytesReader).
// Retorna nil quando a requisição passa.
func CheckRequest(method string, contentLength int64, pol domain.SecurityPolicy) *domain.Rejection {
	if pol.MaxRequestBytes > 0 && contentLength > pol.MaxRequestBytes {
		return &domain.Rejection{
			Stage:   domain.StageSecurity,
			Status:  http.StatusRequestEntityTooLarge,
			Error:   "Request too large",
			Message: fmt.Sprintf("Request size exceeds maximum allowed size of %dMB", pol.MaxRequestBytes/(1<<20)),
		}
	}

	if len(pol.AllowedMethods) > 0 && !pol.MethodAllowed(method) {
		return &domain.Rejection{
			Stage:   domain.StageSecurity,
			Status:  http.StatusMethodNotAllowed,
			Error:   "Method not allowed",
			Message: fmt.Sprintf("Method %s is not allowed. Allowed methods: %s", method, strings.Join(pol.AllowedMethods, ", ")),
		}
	}

	return nil
}
