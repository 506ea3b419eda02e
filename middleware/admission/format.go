// utilitário pequeno para formatação rápida/consistente de valores numéricos em headers/logs.
//    Evita puxar fmt (que é mais “pesado” e genérico) só para formatação simples
// 	  Padroniza a formatação de inteiros e timestamps de header no pacote

package admission

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

// formatReset formata o instante de reset para o header X-RateLimit-Reset
// (timestamp ISO, sempre em UTC).
func formatReset(t time.Time) string { return t.UTC().Format(time.RFC3339) }
