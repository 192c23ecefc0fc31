package serializer

import (
	"encoding/xml"
	"fmt"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/internal/primitive"
	"github.com/OData/odata.net-sub101/internal/validation"
	"github.com/OData/odata.net-sub101/internal/wire"
	"github.com/OData/odata.net-sub101/pkg/model"
)

var (
	itemName       = xml.Name{Local: wire.Qualified(wire.MetadataPrefix, wire.ItemElement)}
	annotationName = xml.Name{Local: wire.Qualified(wire.MetadataPrefix, wire.AnnotationElement)}
	nullAttr       = xml.Attr{Name: xml.Name{Local: wire.Qualified(wire.MetadataPrefix, wire.NullAttribute)}, Value: "true"}
	typeAttrName   = xml.Name{Local: wire.Qualified(wire.MetadataPrefix, wire.TypeAttribute)}
	termAttrName   = xml.Name{Local: wire.TermAttribute}
	targetAttrName = xml.Name{Local: wire.TargetAttribute}
)

// ValueSerializer renders values into XML tokens. Rendering completes
// before anything is handed to the encoder, so a value that fails
// validation leaves no partial output.
type ValueSerializer struct {
	dup    *validation.DuplicateNameChecker
	tokens []xml.Token
	depth  int
}

// NewValueSerializer returns a serializer sharing dup across nested calls.
func NewValueSerializer(dup *validation.DuplicateNameChecker) *ValueSerializer {
	if dup == nil {
		dup = validation.NewDuplicateNameChecker()
	}
	return &ValueSerializer{dup: dup}
}

// Depth reports the nesting of complex values currently being rendered.
func (s *ValueSerializer) Depth() int {
	return s.depth
}

// RenderItem renders one collection item element. The caller has already
// checked the item against the expected type and the collection validator.
func (s *ValueSerializer) RenderItem(item model.Value, expected *model.TypeRef) ([]xml.Token, error) {
	s.tokens = s.tokens[:0]
	start := xml.StartElement{Name: itemName}
	switch item.Kind {
	case model.KindNull:
		start.Attr = append(start.Attr, nullAttr)
		s.emit(start, start.End())
	case model.KindPrimitive:
		// Primitive items carry no type attribute; readers take the kind
		// from the expected item type.
		if err := s.renderPrimitive(start, item.Primitive); err != nil {
			return nil, err
		}
	case model.KindComplex:
		if name := item.Complex.TypeName; name != "" && (expected == nil || name != expected.Name()) {
			start.Attr = append(start.Attr, typeAttr(name))
		}
		if err := s.renderComplex(start, item.Complex, complexDecl(expected)); err != nil {
			return nil, err
		}
	default:
		return nil, xmlerrors.NewValidationf(xmlerrors.ErrNestedCollectionItem, "collection item cannot be a collection")
	}
	return s.tokens, nil
}

func (s *ValueSerializer) renderPrimitive(start xml.StartElement, p model.Primitive) error {
	text, err := primitive.Format(p)
	if err != nil {
		return xmlerrors.Wrap(xmlerrors.KindValidation, xmlerrors.ErrIncompatibleType, err, "cannot format primitive value")
	}
	s.emit(start)
	if text != "" {
		s.emit(xml.CharData(text))
	}
	s.emit(start.End())
	return nil
}

func (s *ValueSerializer) renderComplex(start xml.StartElement, c *model.Complex, declared *model.ComplexType) error {
	s.depth++
	defer func() { s.depth-- }()

	s.emit(start)
	for _, ann := range c.Annotations {
		if err := s.renderAnnotation(ann); err != nil {
			return err
		}
	}
	for _, prop := range c.Properties {
		if err := s.renderProperty(prop, declared); err != nil {
			return err
		}
	}
	s.emit(start.End())
	return nil
}

func (s *ValueSerializer) renderProperty(prop model.Property, declared *model.ComplexType) error {
	if err := validation.CheckPropertyName(prop.Name); err != nil {
		return err
	}
	if err := s.dup.Add(prop.Name); err != nil {
		return err
	}
	var propType *model.TypeRef
	if declared != nil {
		decl, ok := declared.Property(prop.Name)
		switch {
		case ok:
			propType = &decl.Type
		case !declared.Open:
			return xmlerrors.NewValidationf(xmlerrors.ErrUndeclaredProperty,
				"property %q is not declared on type %s", prop.Name, declared.Name).WithActual(prop.Name)
		}
	}
	start := xml.StartElement{Name: xml.Name{Local: wire.Qualified(wire.DataPrefix, prop.Name)}}
	s.dup.Enter()
	defer s.dup.Leave()
	if err := s.renderNested(start, prop.Value, propType); err != nil {
		return fmt.Errorf("property %s: %w", prop.Name, err)
	}
	return nil
}

// renderNested renders a property, nested collection item or annotation
// value. Type attributes are written unless the declared type implies them.
func (s *ValueSerializer) renderNested(start xml.StartElement, v model.Value, declared *model.TypeRef) error {
	if v.Kind == model.KindNull {
		if err := validation.CheckNull(declared); err != nil {
			return err
		}
		start.Attr = append(start.Attr, nullAttr)
		s.emit(start, start.End())
		return nil
	}
	if err := validation.CheckType(declared, v); err != nil {
		return err
	}
	switch v.Kind {
	case model.KindPrimitive:
		if declared == nil && v.Primitive.Kind != model.PrimitiveString {
			start.Attr = append(start.Attr, typeAttr(v.Primitive.Kind.QualifiedName()))
		}
		return s.renderPrimitive(start, v.Primitive)
	case model.KindComplex:
		if name := v.Complex.TypeName; name != "" && declared == nil {
			start.Attr = append(start.Attr, typeAttr(name))
		}
		return s.renderComplex(start, v.Complex, complexDecl(declared))
	case model.KindCollection:
		return s.renderCollection(start, v.Collection, declared)
	default:
		return fmt.Errorf("unknown value kind %s", v.Kind)
	}
}

func (s *ValueSerializer) renderCollection(start xml.StartElement, c *model.Collection, declared *model.TypeRef) error {
	if declared == nil {
		if name := collectionTypeName(c); name != "" {
			start.Attr = append(start.Attr, typeAttr(name))
		}
	}
	var elemType *model.TypeRef
	if declared != nil {
		elemType = declared.Element
	}
	var validator *validation.CollectionValidator
	if elemType == nil {
		validator = validation.NewCollectionValidator()
	}
	s.emit(start)
	for _, item := range c.Items {
		if item.Kind == model.KindCollection {
			return xmlerrors.NewValidationf(xmlerrors.ErrNestedCollectionItem, "collection item cannot be a collection")
		}
		if err := validator.Validate(item); err != nil {
			return err
		}
		s.dup.Enter()
		err := s.renderNested(xml.StartElement{Name: itemName}, item, elemType)
		s.dup.Leave()
		if err != nil {
			return err
		}
	}
	s.emit(start.End())
	return nil
}

func (s *ValueSerializer) renderAnnotation(ann model.InstanceAnnotation) error {
	if ann.Term == "" {
		return xmlerrors.NewValidationf(xmlerrors.ErrAnnotationMissingTerm, "instance annotation has no term")
	}
	start := xml.StartElement{Name: annotationName, Attr: []xml.Attr{{Name: termAttrName, Value: ann.Term}}}
	if ann.Target != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: targetAttrName, Value: ann.Target})
	}
	s.dup.Enter()
	defer s.dup.Leave()
	if err := s.renderNested(start, ann.Value, nil); err != nil {
		return fmt.Errorf("annotation %s: %w", ann.Term, err)
	}
	return nil
}

func (s *ValueSerializer) emit(tokens ...xml.Token) {
	s.tokens = append(s.tokens, tokens...)
}

func typeAttr(qualified string) xml.Attr {
	return xml.Attr{Name: typeAttrName, Value: primitive.FormatTypeName(qualified)}
}

// collectionTypeName returns the collection's type name, or one derived
// from its first typed item.
func collectionTypeName(c *model.Collection) string {
	if c.TypeName != "" {
		return c.TypeName
	}
	for _, item := range c.Items {
		if name := item.TypeName(); name != "" {
			return "Collection(" + name + ")"
		}
		if item.Kind != model.KindNull {
			return ""
		}
	}
	return ""
}

func complexDecl(t *model.TypeRef) *model.ComplexType {
	if t == nil || t.Kind != model.KindComplex {
		return nil
	}
	return t.Complex
}
