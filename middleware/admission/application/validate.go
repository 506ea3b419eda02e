package application

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"admission-gateway/middleware/admission/domain"
)

// Validate verifica o payload contra o schema declarado e devolve TODAS as
// violações encontradas, não apenas a primeira — o chamador vê a lista
// completa de problemas numa única resposta. Lista vazia significa válido.
func Validate(schema domain.Schema, payload map[string]any) []domain.Issue {
	var issues []domain.Issue
	validateObject("", schema, payload, &issues)
	return issues
}

func validateObject(prefix string, schema domain.Schema, obj map[string]any, issues *[]domain.Issue) {
	// ordem estável de campos para que a lista de issues seja determinística
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := schema[name]
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		v, ok := obj[name]
		if !ok || v == nil {
			if field.Required {
				*issues = append(*issues, domain.Issue{Field: path, Message: "is required"})
			}
			continue
		}
		validateValue(path, field, v, issues)
	}
}

func validateValue(path string, field domain.Field, v any, issues *[]domain.Issue) {
	add := func(msg string) {
		*issues = append(*issues, domain.Issue{Field: path, Message: msg})
	}

	switch field.Type {
	case domain.TypeString:
		s, ok := v.(string)
		if !ok {
			add("must be a string")
			return
		}
		n := utf8.RuneCountInString(s)
		if field.MinLen > 0 && n < field.MinLen {
			add(fmt.Sprintf("must be at least %d characters", field.MinLen))
		}
		if field.MaxLen > 0 && n > field.MaxLen {
			add(fmt.Sprintf("must be at most %d characters", field.MaxLen))
		}
		if len(field.Enum) > 0 && !enumContains(field.Enum, s) {
			add("must be one of: " + strings.Join(field.Enum, ", "))
		}

	case domain.TypeNumber, domain.TypeInteger:
		// JSON decodifica todo número como float64
		f, ok := v.(float64)
		if !ok {
			add("must be a number")
			return
		}
		if field.Type == domain.TypeInteger && f != math.Trunc(f) {
			add("must be an integer")
		}
		if field.Min != nil && f < *field.Min {
			add(fmt.Sprintf("must be at least %g", *field.Min))
		}
		if field.Max != nil && f > *field.Max {
			add(fmt.Sprintf("must be at most %g", *field.Max))
		}

	case domain.TypeBool:
		if _, ok := v.(bool); !ok {
			add("must be a boolean")
		}

	case domain.TypeArray:
		arr, ok := v.([]any)
		if !ok {
			add("must be an array")
			return
		}
		if field.MaxItems > 0 && len(arr) > field.MaxItems {
			add(fmt.Sprintf("must have at most %d items", field.MaxItems))
		}
		if field.Items != nil {
			for i, item := range arr {
				validateValue(fmt.Sprintf("%s[%d]", path, i), *field.Items, item, issues)
			}
		}

	case domain.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			add("must be an object")
			return
		}
		if field.Fields != nil {
			validateObject(path, field.Fields, obj, issues)
		}
	}
}

func enumContains(enum []string, s string) bool {
	for _, e := range enum {
		if e == s {
			return true
		}
	}
	return false
}

var (
	markupPattern = regexp.MustCompile(`<[^>]*>`)
	schemePattern = regexp.MustCompile(`(?i)(?:javascript|vbscript|data)\s*:`)
	// controles C0 (exceto \t \n \r) e DEL
	controlPattern = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// Sanitize percorre o payload recursivamente e neutraliza conteúdo de string
// inseguro (markup, schemes de script, caracteres de controle). Campos que não
// são string saem intactos. O payload de entrada não é mutado.
func Sanitize(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return SanitizeString(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = sanitizeValue(item)
		}
		return out
	case map[string]any:
		return Sanitize(t)
	default:
		return v
	}
}

// SanitizeString aplica as remoções até ponto fixo: remover um trecho pode
// expor outro (ex: "<scr<script>ipt>", "jjavascript:avascript:"), e o ponto
// fixo garante que sanitizar um valor já sanitizado é identidade. Depois das
// tags, os colchetes angulares soltos também caem — a saída nunca contém
// material com que markup possa se reformar.
func SanitizeString(s string) string {
	for {
		out := markupPattern.ReplaceAllString(s, "")
		out = strings.NewReplacer("<", "", ">", "").Replace(out)
		out = schemePattern.ReplaceAllString(out, "")
		out = controlPattern.ReplaceAllString(out, "")
		if out == s {
			return out
		}
		s = out
	}
}
