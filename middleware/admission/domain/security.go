package domain

// SecurityPolicy é a configuração imutável de verificação de requisição:
// tamanho máximo declarado do corpo e métodos aceitos.
type SecurityPolicy struct {
	MaxRequestBytes int64
	AllowedMethods  []string
}

// MethodAllowed verifica pertinência do método (comparação exata,
// métodos HTTP já chegam normalizados em maiúsculas).
func (p SecurityPolicy) MethodAllowed(method string) bool {
	for _, m := range p.AllowedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// CORSPolicy é a configuração de CORS de uma rota, aplicada apenas quando
// habilitada explicitamente. Origins vazio significa wildcard.
type CORSPolicy struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// OriginAllowed verifica se a origem consta da lista.
// Com lista vazia qualquer origem é aceita (wildcard).
func (p CORSPolicy) OriginAllowed(origin string) bool {
	if len(p.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range p.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}
