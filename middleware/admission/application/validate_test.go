package application

import (
	"reflect"
	"testing"

	"admission-gateway/middleware/admission/domain"
)

func fptr(f float64) *float64 { return &f }

func testSchema() domain.Schema {
	return domain.Schema{
		"prompt":   {Type: domain.TypeString, Required: true, MinLen: 1, MaxLen: 20},
		"style":    {Type: domain.TypeString, Enum: []string{"casual", "formal"}},
		"maxWords": {Type: domain.TypeInteger, Min: fptr(1), Max: fptr(100)},
		"strict":   {Type: domain.TypeBool},
		"tags":     {Type: domain.TypeArray, MaxItems: 3, Items: &domain.Field{Type: domain.TypeString, MaxLen: 5}},
		"author": {Type: domain.TypeObject, Fields: domain.Schema{
			"name": {Type: domain.TypeString, Required: true},
		}},
	}
}

func hasIssue(issues []domain.Issue, field, message string) bool {
	for _, is := range issues {
		if is.Field == field && is.Message == message {
			return true
		}
	}
	return false
}

func TestValidate_MissingRequiredField(t *testing.T) {
	issues := Validate(testSchema(), map[string]any{})
	if !hasIssue(issues, "prompt", "is required") {
		t.Fatalf("expected issue for missing prompt, got %+v", issues)
	}
}

func TestValidate_OptionalFieldMayBeAbsent(t *testing.T) {
	issues := Validate(testSchema(), map[string]any{"prompt": "hello"})
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestValidate_TypeMismatches(t *testing.T) {
	issues := Validate(testSchema(), map[string]any{
		"prompt":   float64(1),
		"maxWords": "ten",
		"strict":   "yes",
		"tags":     "not-an-array",
		"author":   "not-an-object",
	})

	for _, want := range []domain.Issue{
		{Field: "prompt", Message: "must be a string"},
		{Field: "maxWords", Message: "must be a number"},
		{Field: "strict", Message: "must be a boolean"},
		{Field: "tags", Message: "must be an array"},
		{Field: "author", Message: "must be an object"},
	} {
		if !hasIssue(issues, want.Field, want.Message) {
			t.Fatalf("missing issue %+v in %+v", want, issues)
		}
	}
}

func TestValidate_StringBounds(t *testing.T) {
	issues := Validate(testSchema(), map[string]any{"prompt": "this prompt is way past twenty characters"})
	if !hasIssue(issues, "prompt", "must be at most 20 characters") {
		t.Fatalf("expected max length issue, got %+v", issues)
	}

	issues = Validate(testSchema(), map[string]any{"prompt": ""})
	if !hasIssue(issues, "prompt", "must be at least 1 characters") {
		t.Fatalf("expected min length issue, got %+v", issues)
	}
}

func TestValidate_EnumMembership(t *testing.T) {
	issues := Validate(testSchema(), map[string]any{"prompt": "hi", "style": "sarcastic"})
	if !hasIssue(issues, "style", "must be one of: casual, formal") {
		t.Fatalf("expected enum issue, got %+v", issues)
	}
}

func TestValidate_NumericRangeAndIntegerness(t *testing.T) {
	issues := Validate(testSchema(), map[string]any{"prompt": "hi", "maxWords": float64(1000)})
	if !hasIssue(issues, "maxWords", "must be at most 100") {
		t.Fatalf("expected range issue, got %+v", issues)
	}

	issues = Validate(testSchema(), map[string]any{"prompt": "hi", "maxWords": 1.5})
	if !hasIssue(issues, "maxWords", "must be an integer") {
		t.Fatalf("expected integer issue, got %+v", issues)
	}
}

func TestValidate_ArrayItemsAndLength(t *testing.T) {
	issues := Validate(testSchema(), map[string]any{
		"prompt": "hi",
		"tags":   []any{"a", "b", "c", "d"},
	})
	if !hasIssue(issues, "tags", "must have at most 3 items") {
		t.Fatalf("expected array length issue, got %+v", issues)
	}

	issues = Validate(testSchema(), map[string]any{
		"prompt": "hi",
		"tags":   []any{"ok", "toolongtag"},
	})
	if !hasIssue(issues, "tags[1]", "must be at most 5 characters") {
		t.Fatalf("expected indexed item issue, got %+v", issues)
	}
}

func TestValidate_NestedObjectPath(t *testing.T) {
	issues := Validate(testSchema(), map[string]any{
		"prompt": "hi",
		"author": map[string]any{},
	})
	if !hasIssue(issues, "author.name", "is required") {
		t.Fatalf("expected dotted path issue, got %+v", issues)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	// todas as violações de uma vez, não só a primeira
	issues := Validate(testSchema(), map[string]any{
		"style":    "sarcastic",
		"maxWords": float64(0),
	})
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues (prompt, style, maxWords), got %+v", issues)
	}
}

func TestValidate_ValidPayloadPasses(t *testing.T) {
	payload := map[string]any{
		"prompt":   "hello there",
		"style":    "casual",
		"maxWords": float64(50),
		"strict":   true,
		"tags":     []any{"go", "http"},
		"author":   map[string]any{"name": "ana"},
	}
	if issues := Validate(testSchema(), payload); len(issues) != 0 {
		t.Fatalf("expected valid payload, got %+v", issues)
	}
}

func TestSanitize_StripsMarkupAndControlChars(t *testing.T) {
	out := Sanitize(map[string]any{
		"a": "hello <script>alert(1)</script>world",
		"b": "click javascript:alert(1) now",
		"c": "bad\x00chars\x1fhere",
		"d": "tabs\tand\nnewlines stay",
	})

	if out["a"] != "hello alert(1)world" {
		t.Fatalf("expected markup stripped, got %q", out["a"])
	}
	if out["b"] != "click alert(1) now" {
		t.Fatalf("expected scheme stripped, got %q", out["b"])
	}
	if out["c"] != "badcharshere" {
		t.Fatalf("expected control chars stripped, got %q", out["c"])
	}
	if out["d"] != "tabs\tand\nnewlines stay" {
		t.Fatalf("expected tab/newline preserved, got %q", out["d"])
	}
}

func TestSanitize_SplitTagCannotSurvive(t *testing.T) {
	// remover um trecho pode expor outro: o ponto fixo e a remoção de
	// colchetes soltos garantem que nenhum markup sobrevive
	if got := SanitizeString("<scr<script>ipt>alert(1)</script>"); got != "iptalert(1)" {
		t.Fatalf("expected nested tag fully stripped, got %q", got)
	}
	if got := SanitizeString("a < b, c > d"); got != "a  d" {
		t.Fatalf("expected bracketed span removed, got %q", got)
	}
	if got := SanitizeString("1 < 2"); got != "1  2" {
		t.Fatalf("expected stray bracket removed, got %q", got)
	}
}

func TestSanitize_IsIdempotent(t *testing.T) {
	in := map[string]any{
		"a": "hello <b>bold</b> javascript:x \x07",
		"nested": map[string]any{
			"b": []any{"<i>deep</i>", float64(3)},
		},
	}
	once := Sanitize(in)
	twice := Sanitize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected sanitize to be idempotent: %+v vs %+v", once, twice)
	}
}

func TestSanitize_NonStringsUntouched(t *testing.T) {
	in := map[string]any{
		"n":   float64(42),
		"b":   true,
		"nil": nil,
		"arr": []any{float64(1), "x<y>z"},
	}
	out := Sanitize(in)

	if out["n"] != float64(42) || out["b"] != true || out["nil"] != nil {
		t.Fatalf("expected non-strings untouched, got %+v", out)
	}
	arr := out["arr"].([]any)
	if arr[0] != float64(1) {
		t.Fatalf("expected numeric array item untouched")
	}
	if arr[1] != "xz" {
		t.Fatalf("expected string array item sanitized, got %q", arr[1])
	}
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"a": "<b>x</b>"}
	_ = Sanitize(in)
	if in["a"] != "<b>x</b>" {
		t.Fatalf("expected input payload untouched, got %q", in["a"])
	}
}
