package model

// Complex is a structured value: an ordered list of named properties plus
// the instance annotations attached to it.
type Complex struct {
	TypeName    string
	Properties  []Property
	Annotations []InstanceAnnotation
}

// Property is one named field of a complex value.
type Property struct {
	Name  string
	Value Value
}

// NewComplex builds a complex value with the given properties.
func NewComplex(typeName string, props ...Property) *Complex {
	return &Complex{TypeName: typeName, Properties: props}
}

// Prop is shorthand for a Property literal.
func Prop(name string, value Value) Property {
	return Property{Name: name, Value: value}
}

// Get returns the first property named name.
func (c *Complex) Get(name string) (Value, bool) {
	if c == nil {
		return Value{}, false
	}
	for i := range c.Properties {
		if c.Properties[i].Name == name {
			return c.Properties[i].Value, true
		}
	}
	return Value{}, false
}

// InstanceAnnotation is a namespace-qualified term attached to the
// enclosing element. Target optionally names a property of that element.
type InstanceAnnotation struct {
	Term   string
	Target string
	Value  Value
}
