package main

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OData/odata.net-sub101/internal/primitive"
	"github.com/OData/odata.net-sub101/pkg/model"
)

// Items are rendered as a YAML sequence. Strings, booleans, Int64 and
// Double use the core YAML types; other primitives carry their kind as a
// local tag (!Int32 5). Complex values are mappings tagged with their type
// name, with instance annotations under "@Term" or "Property@Term" keys.
// Typed collections are sequences tagged !Collection(T).

func itemsToYAML(items []model.Value) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i, item := range items {
		n, err := valueToYAML(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		seq.Content = append(seq.Content, n)
	}
	return seq, nil
}

func valueToYAML(v model.Value) (*yaml.Node, error) {
	switch v.Kind {
	case model.KindNull:
		return scalar("!!null", "null"), nil
	case model.KindPrimitive:
		return primitiveToYAML(v.Primitive)
	case model.KindComplex:
		n := &yaml.Node{Kind: yaml.MappingNode}
		if v.Complex.TypeName != "" {
			n.Tag = "!" + v.Complex.TypeName
		}
		for _, ann := range v.Complex.Annotations {
			val, err := valueToYAML(ann.Value)
			if err != nil {
				return nil, fmt.Errorf("annotation %s: %w", ann.Term, err)
			}
			n.Content = append(n.Content, scalar("!!str", ann.Target+"@"+ann.Term), val)
		}
		for _, prop := range v.Complex.Properties {
			val, err := valueToYAML(prop.Value)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", prop.Name, err)
			}
			n.Content = append(n.Content, scalar("!!str", prop.Name), val)
		}
		return n, nil
	case model.KindCollection:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		if v.Collection.TypeName != "" {
			n.Tag = "!" + v.Collection.TypeName
		}
		for i, item := range v.Collection.Items {
			val, err := valueToYAML(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			n.Content = append(n.Content, val)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown value kind %s", v.Kind)
	}
}

func primitiveToYAML(p model.Primitive) (*yaml.Node, error) {
	text, err := primitive.Format(p)
	if err != nil {
		return nil, err
	}
	switch p.Kind {
	case model.PrimitiveString:
		return scalar("!!str", text), nil
	case model.PrimitiveBoolean:
		return scalar("!!bool", text), nil
	case model.PrimitiveInt64:
		return scalar("!!int", text), nil
	case model.PrimitiveDouble:
		f := p.Value.(float64)
		switch {
		case math.IsNaN(f):
			text = ".nan"
		case math.IsInf(f, 1):
			text = ".inf"
		case math.IsInf(f, -1):
			text = "-.inf"
		case !strings.ContainsAny(text, ".eE"):
			text += ".0"
		}
		return scalar("!!float", text), nil
	default:
		return scalar("!"+p.Kind.String(), text), nil
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// itemsFromYAML converts a YAML document holding a sequence into items,
// using itemType to type untagged scalars and mappings.
func itemsFromYAML(data []byte, itemType *model.TypeRef) ([]model.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: items must be a YAML sequence", root.Line)
	}
	items := make([]model.Value, 0, len(root.Content))
	for _, n := range root.Content {
		v, err := valueFromYAML(n, itemType)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func valueFromYAML(n *yaml.Node, expected *model.TypeRef) (model.Value, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	local, hasLocal := localTag(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarFromYAML(n, local, hasLocal, expected)
	case yaml.MappingNode:
		c := &model.Complex{}
		var declared *model.ComplexType
		if expected != nil && expected.Kind == model.KindComplex {
			declared = expected.Complex
			c.TypeName = expected.Name()
		}
		if hasLocal {
			c.TypeName = local
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			if target, term, ok := strings.Cut(key, "@"); ok {
				v, err := valueFromYAML(val, nil)
				if err != nil {
					return model.Value{}, err
				}
				c.Annotations = append(c.Annotations, model.InstanceAnnotation{Term: term, Target: target, Value: v})
				continue
			}
			var propType *model.TypeRef
			if decl, ok := declared.Property(key); ok {
				propType = &decl.Type
			}
			v, err := valueFromYAML(val, propType)
			if err != nil {
				return model.Value{}, fmt.Errorf("%s: %w", key, err)
			}
			c.Properties = append(c.Properties, model.Prop(key, v))
		}
		return model.ComplexValue(c), nil
	case yaml.SequenceNode:
		coll := &model.Collection{}
		var elem *model.TypeRef
		if expected != nil && expected.Kind == model.KindCollection {
			coll.TypeName = expected.Name()
			elem = expected.Element
		}
		if hasLocal {
			tn, err := primitive.ParseTypeName(local)
			if err != nil || !tn.Collection {
				return model.Value{}, fmt.Errorf("line %d: sequence tag !%s is not a collection type", n.Line, local)
			}
			coll.TypeName = tn.QualifiedName()
			if elem == nil && tn.IsPrimitive() {
				elem = model.PrimitiveType(tn.Primitive, true)
			}
		}
		for _, item := range n.Content {
			v, err := valueFromYAML(item, elem)
			if err != nil {
				return model.Value{}, err
			}
			coll.Items = append(coll.Items, v)
		}
		return model.CollectionValue(coll), nil
	default:
		return model.Value{}, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func scalarFromYAML(n *yaml.Node, local string, hasLocal bool, expected *model.TypeRef) (model.Value, error) {
	tag := n.ShortTag()
	if tag == "!!null" {
		return model.Null(), nil
	}
	kind := model.PrimitiveNone
	switch {
	case hasLocal:
		k, ok := model.LookupPrimitiveKind(local)
		if !ok {
			return model.Value{}, fmt.Errorf("line %d: !%s is not a primitive type", n.Line, local)
		}
		kind = k
	case expected != nil && expected.Kind == model.KindPrimitive:
		kind = expected.Primitive
	}
	if kind != model.PrimitiveNone {
		p, err := primitive.Parse(kind, n.Value)
		if err != nil {
			return model.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return model.PrimitiveValue(p), nil
	}

	switch tag {
	case "!!str":
		return model.String(n.Value), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return model.Value{}, err
		}
		return model.Boolean(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return model.Value{}, err
		}
		return model.Int64(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return model.Value{}, err
		}
		return model.Double(f), nil
	default:
		return model.Value{}, fmt.Errorf("line %d: unsupported scalar tag %s", n.Line, tag)
	}
}

// localTag returns the name of a "!Name" tag.
func localTag(n *yaml.Node) (string, bool) {
	if !strings.HasPrefix(n.Tag, "!") || strings.HasPrefix(n.Tag, "!!") || len(n.Tag) == 1 {
		return "", false
	}
	return n.Tag[1:], true
}
