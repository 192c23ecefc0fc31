package model

// TypeRef is a reference to a declared type with its nullability.
// Kind selects Primitive, Complex or Element (for collections).
type TypeRef struct {
	Complex   *ComplexType
	Element   *TypeRef
	Kind      Kind
	Primitive PrimitiveKind
	Nullable  bool
}

// ComplexType declares the properties of a structured type.
// Open types accept properties that are not declared.
type ComplexType struct {
	Name       string
	Properties []PropertyType
	Open       bool
}

// PropertyType declares one property of a complex type.
type PropertyType struct {
	Type TypeRef
	Name string
}

// PrimitiveType returns a reference to a primitive type.
func PrimitiveType(kind PrimitiveKind, nullable bool) *TypeRef {
	return &TypeRef{Kind: KindPrimitive, Primitive: kind, Nullable: nullable}
}

// ComplexTypeRef returns a reference to a complex type.
func ComplexTypeRef(ct *ComplexType, nullable bool) *TypeRef {
	return &TypeRef{Kind: KindComplex, Complex: ct, Nullable: nullable}
}

// CollectionType returns a reference to a collection of element.
func CollectionType(element *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindCollection, Element: element, Nullable: true}
}

// Name returns the qualified type name, for example "Edm.Int32",
// "NS.Address" or "Collection(Edm.String)".
func (t *TypeRef) Name() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive.QualifiedName()
	case KindComplex:
		if t.Complex == nil {
			return ""
		}
		return t.Complex.Name
	case KindCollection:
		return "Collection(" + t.Element.Name() + ")"
	default:
		return ""
	}
}

// IsNullable reports whether null is acceptable for t.
// A nil reference accepts null.
func (t *TypeRef) IsNullable() bool {
	return t == nil || t.Nullable
}

// Property returns the declaration of the named property.
func (c *ComplexType) Property(name string) (*PropertyType, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Properties {
		if c.Properties[i].Name == name {
			return &c.Properties[i], true
		}
	}
	return nil, false
}
