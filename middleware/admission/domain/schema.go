package domain

// Schema declara o formato esperado de um payload JSON: nome do campo -> regra.
// Schemas são dados puros, nunca mutados após a definição; o mesmo shape guia
// a validação e a caminhada de sanitização.
type Schema map[string]Field

// FieldType enumera os tipos aceitos num campo de schema.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBool    FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field é a regra de um campo. Limites zerados/nulos não são verificados.
type Field struct {
	Type     FieldType
	Required bool

	// strings
	MinLen int
	MaxLen int
	// Enum restringe o valor a um conjunto fechado (apenas strings).
	Enum []string

	// números
	Min *float64
	Max *float64

	// arrays
	MaxItems int
	Items    *Field

	// objetos aninhados
	Fields Schema
}

// Issue é uma violação de validação endereçável por campo
// (caminho pontuado para aninhamento, índice para arrays).
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
