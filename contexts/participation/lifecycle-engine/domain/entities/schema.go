package entities

import (
	"fmt"
	"strconv"
	"strings"
)

type FieldKind string

const (
	FieldKindChar FieldKind = "char"
	FieldKindText FieldKind = "text"
)

// FieldSpec declares one configurable policy content field.
type FieldSpec struct {
	Name      string
	Kind      FieldKind
	Required  bool
	MaxLength int // 0 means unbounded
}

// FieldSchema is the static record shape resolved from configuration at
// startup. Policies validate their Fields map against it; there is no
// runtime type synthesis.
type FieldSchema struct {
	specs  []FieldSpec
	byName map[string]FieldSpec
}

// ParseFieldSchema parses a comma-separated declaration of the form
// "name:kind:required|optional:maxlen". An empty input yields the default
// schema.
func ParseFieldSchema(raw string) (FieldSchema, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultFieldSchema(), nil
	}
	var specs []FieldSpec
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 4 {
			return FieldSchema{}, fmt.Errorf("field schema entry %q: want name:kind:required|optional:maxlen", entry)
		}
		kind := FieldKind(strings.TrimSpace(parts[1]))
		if kind != FieldKindChar && kind != FieldKindText {
			return FieldSchema{}, fmt.Errorf("field schema entry %q: unknown kind %q", entry, parts[1])
		}
		var required bool
		switch strings.TrimSpace(parts[2]) {
		case "required":
			required = true
		case "optional":
			required = false
		default:
			return FieldSchema{}, fmt.Errorf("field schema entry %q: want required or optional", entry)
		}
		maxLen, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil || maxLen < 0 {
			return FieldSchema{}, fmt.Errorf("field schema entry %q: bad max length", entry)
		}
		specs = append(specs, FieldSpec{
			Name:      strings.TrimSpace(parts[0]),
			Kind:      kind,
			Required:  required,
			MaxLength: maxLen,
		})
	}
	return NewFieldSchema(specs), nil
}

func NewFieldSchema(specs []FieldSpec) FieldSchema {
	byName := make(map[string]FieldSpec, len(specs))
	for _, spec := range specs {
		byName[spec.Name] = spec
	}
	return FieldSchema{specs: specs, byName: byName}
}

// DefaultFieldSchema mirrors the platform's standard policy record.
func DefaultFieldSchema() FieldSchema {
	return NewFieldSchema([]FieldSpec{
		{Name: "summary", Kind: FieldKindText, Required: true},
		{Name: "problem", Kind: FieldKindText, Required: true},
		{Name: "demand", Kind: FieldKindText, Required: true},
		{Name: "cost_estimate", Kind: FieldKindText, Required: true},
		{Name: "funding_proposal", Kind: FieldKindText, Required: true},
		{Name: "methodology", Kind: FieldKindText, Required: true},
		{Name: "category", Kind: FieldKindChar, Required: true, MaxLength: 50},
		{Name: "scope", Kind: FieldKindChar, Required: true, MaxLength: 100},
		{Name: "topic", Kind: FieldKindChar, Required: true, MaxLength: 60},
	})
}

func (s FieldSchema) Specs() []FieldSpec {
	return append([]FieldSpec(nil), s.specs...)
}

// Validate rejects unknown field names and values exceeding a declared
// maximum length. Missing required fields are allowed here; completeness is
// a readiness concern, not a write-time one.
func (s FieldSchema) Validate(fields map[string]string) error {
	for name, value := range fields {
		spec, ok := s.byName[name]
		if !ok {
			return fmt.Errorf("unknown policy field %q", name)
		}
		if spec.MaxLength > 0 && len([]rune(value)) > spec.MaxLength {
			return fmt.Errorf("policy field %q exceeds %d characters", name, spec.MaxLength)
		}
	}
	return nil
}

// RequiredComplete reports whether every required field has a non-blank
// value: a conjunction over presence, short-circuiting on the first empty
// field.
func (s FieldSchema) RequiredComplete(fields map[string]string) bool {
	for _, spec := range s.specs {
		if !spec.Required {
			continue
		}
		if strings.TrimSpace(fields[spec.Name]) == "" {
			return false
		}
	}
	return true
}
