package model

// Kind discriminates the shapes a Value can take.
type Kind uint8

const (
	KindNull Kind = iota
	KindPrimitive
	KindComplex
	KindCollection
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindPrimitive:
		return "Primitive"
	case KindComplex:
		return "Complex"
	case KindCollection:
		return "Collection"
	default:
		return "Unknown"
	}
}

// Value is a tagged union of null, primitive, complex and collection
// values. Exactly the field selected by Kind is meaningful.
// A collection item is never a Collection; collections appear only as
// property values of complex items.
type Value struct {
	Complex    *Complex
	Collection *Collection
	Primitive  Primitive
	Kind       Kind
}

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// PrimitiveValue wraps a primitive.
func PrimitiveValue(p Primitive) Value {
	return Value{Kind: KindPrimitive, Primitive: p}
}

// ComplexValue wraps a complex value. A nil pointer yields Null.
func ComplexValue(c *Complex) Value {
	if c == nil {
		return Null()
	}
	return Value{Kind: KindComplex, Complex: c}
}

// CollectionValue wraps a collection. A nil pointer yields Null.
func CollectionValue(c *Collection) Value {
	if c == nil {
		return Null()
	}
	return Value{Kind: KindCollection, Collection: c}
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// TypeName returns the declared type name carried by a value: the primitive
// kind name, or the type name of a complex value or collection.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindPrimitive:
		return v.Primitive.Kind.QualifiedName()
	case KindComplex:
		return v.Complex.TypeName
	case KindCollection:
		return v.Collection.TypeName
	default:
		return ""
	}
}

// Collection is an ordered list of items with an optional type name of
// the form Collection(T).
type Collection struct {
	TypeName string
	Items    []Value
}

// CollectionStart marks the start of a collection payload.
// Name is always empty for plain collections.
type CollectionStart struct {
	Name string
}
