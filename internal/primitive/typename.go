package primitive

import (
	"fmt"
	"strings"

	"github.com/OData/odata.net-sub101/internal/wire"
	"github.com/OData/odata.net-sub101/pkg/model"
)

// TypeName is a parsed type-hint attribute value.
type TypeName struct {
	// Name is the qualified element type name, for example "Edm.Int32".
	Name       string
	Primitive  model.PrimitiveKind
	Collection bool
}

// IsPrimitive reports whether the (element) type is a primitive type.
func (t TypeName) IsPrimitive() bool {
	return t.Primitive != model.PrimitiveNone
}

// QualifiedName returns the full type name, wrapping collections.
func (t TypeName) QualifiedName() string {
	if t.Collection {
		return "Collection(" + t.Name + ")"
	}
	return t.Name
}

// ParseTypeName parses "#NS.Type", "#Collection(NS.Type)", "Edm.Int32" or "Int32".
func ParseTypeName(raw string) (TypeName, error) {
	s := strings.TrimPrefix(TrimXMLWhitespace(raw), wire.TypeNamePrefix)
	if s == "" {
		return TypeName{}, fmt.Errorf("empty type name")
	}
	var out TypeName
	if strings.HasPrefix(s, wire.CollectionTypePrefix) {
		if !strings.HasSuffix(s, ")") {
			return TypeName{}, fmt.Errorf("invalid collection type name %q", raw)
		}
		s = s[len(wire.CollectionTypePrefix) : len(s)-1]
		out.Collection = true
		if s == "" || strings.HasPrefix(s, wire.CollectionTypePrefix) {
			return TypeName{}, fmt.Errorf("invalid collection type name %q", raw)
		}
	}
	if strings.ContainsAny(s, "()# \t\r\n") {
		return TypeName{}, fmt.Errorf("invalid type name %q", raw)
	}
	if kind, ok := model.LookupPrimitiveKind(s); ok {
		out.Primitive = kind
		out.Name = kind.QualifiedName()
		return out, nil
	}
	if strings.HasPrefix(s, wire.EdmNamespacePrefix) {
		return TypeName{}, fmt.Errorf("unknown primitive type %q", raw)
	}
	out.Name = s
	return out, nil
}

// FormatTypeName renders a qualified type name for a type-hint attribute.
// Primitive types use their short name; other names get the "#" prefix.
func FormatTypeName(qualified string) string {
	if qualified == "" {
		return ""
	}
	if kind, ok := model.LookupPrimitiveKind(qualified); ok {
		return kind.String()
	}
	if inner, ok := strings.CutPrefix(qualified, wire.CollectionTypePrefix); ok {
		inner = strings.TrimSuffix(inner, ")")
		if kind, ok := model.LookupPrimitiveKind(inner); ok {
			inner = kind.String()
		}
		return wire.TypeNamePrefix + wire.CollectionTypePrefix + inner + ")"
	}
	return wire.TypeNamePrefix + qualified
}
