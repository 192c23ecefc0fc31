package deserializer

import (
	"fmt"
	"strings"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/internal/primitive"
	"github.com/OData/odata.net-sub101/internal/validation"
	"github.com/OData/odata.net-sub101/pkg/model"
	"github.com/OData/odata.net-sub101/pkg/xmlcursor"
)

// ValueParser reads one value element: a collection item, a property or an
// annotation value. The cursor starts on the value's start tag and ends on
// its end tag, or stays on the start tag when the element is empty.
type ValueParser struct {
	cur         *xmlcursor.Cursor
	names       *names
	annotations *AnnotationReader
}

type resolvedType struct {
	ref       *model.TypeRef
	name      string
	kind      model.Kind
	primitive model.PrimitiveKind
}

// ParseValue parses the value element under the cursor. expected may be
// nil when no type is declared. validator, when non-nil, checks the value's
// shape against earlier collection items. validateNull rejects null for a
// non-nullable expected type.
func (p *ValueParser) ParseValue(expected *model.TypeRef, dup *validation.DuplicateNameChecker, validator *validation.CollectionValidator, validateNull bool) (model.Value, error) {
	if p.cur.NodeKind() != xmlcursor.KindElement {
		return model.Value{}, p.unexpected("value element")
	}
	isNull, err := p.readNull()
	if err != nil {
		return model.Value{}, err
	}
	if isNull {
		if validateNull {
			if err := validation.CheckNull(expected); err != nil {
				return model.Value{}, p.at(err)
			}
		}
		if err := p.skipToEndTag(); err != nil {
			return model.Value{}, err
		}
		return model.Null(), nil
	}

	rt, err := p.resolveType(expected)
	if err != nil {
		return model.Value{}, err
	}
	if err := validator.ValidateShape(rt.kind, rt.name); err != nil {
		return model.Value{}, p.at(err)
	}

	switch rt.kind {
	case model.KindPrimitive:
		return p.parsePrimitive(rt.primitive)
	case model.KindComplex:
		return p.parseComplex(rt, dup)
	case model.KindCollection:
		return p.parseCollection(rt, dup)
	default:
		return model.Value{}, p.formatf(xmlerrors.ErrInvalidTypeName, "cannot resolve value kind")
	}
}

func (p *ValueParser) readNull() (bool, error) {
	raw, ok := p.cur.GetAttribute(p.names.null, p.names.metadataNS)
	if !ok {
		return false, nil
	}
	switch primitive.TrimXMLWhitespace(raw) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, p.formatf(xmlerrors.ErrInvalidNullValue, "invalid null attribute value").WithActual(raw)
	}
}

func (p *ValueParser) resolveType(expected *model.TypeRef) (resolvedType, error) {
	raw, hasType := p.cur.GetAttribute(p.names.typ, p.names.metadataNS)
	if !hasType {
		if expected != nil {
			return resolvedType{
				ref:       expected,
				kind:      expected.Kind,
				primitive: expected.Primitive,
				name:      expected.Name(),
			}, nil
		}
		return p.detectUntyped()
	}

	tn, err := primitive.ParseTypeName(raw)
	if err != nil {
		return resolvedType{}, p.wrapFormat(xmlerrors.ErrInvalidTypeName, err, "invalid type attribute")
	}
	rt := resolvedType{name: tn.QualifiedName()}
	switch {
	case tn.Collection:
		rt.kind = model.KindCollection
		rt.ref = model.CollectionType(elementTypeRef(tn))
	case tn.IsPrimitive():
		rt.kind = model.KindPrimitive
		rt.primitive = tn.Primitive
		rt.ref = model.PrimitiveType(tn.Primitive, true)
	default:
		rt.kind = model.KindComplex
		rt.ref = &model.TypeRef{Kind: model.KindComplex, Nullable: true}
	}
	if err := validation.CheckKind(expected, rt.kind, rt.primitive, rt.name); err != nil {
		return resolvedType{}, p.at(err)
	}
	if expected != nil {
		// The declared type carries property declarations the wire name lacks.
		rt.ref = expected
	}
	return rt, nil
}

func elementTypeRef(tn primitive.TypeName) *model.TypeRef {
	if tn.IsPrimitive() {
		return model.PrimitiveType(tn.Primitive, true)
	}
	return model.ComplexTypeRef(&model.ComplexType{Name: tn.Name, Open: true}, true)
}

// detectUntyped looks ahead without moving the cursor: a child item element
// makes the value a collection, any other child element makes it complex,
// and text alone makes it a string.
func (p *ValueParser) detectUntyped() (resolvedType, error) {
	str := resolvedType{kind: model.KindPrimitive, primitive: model.PrimitiveString, name: model.PrimitiveString.QualifiedName()}
	if p.cur.IsEmptyElement() {
		return str, nil
	}
	if err := p.cur.StartBuffering(); err != nil {
		return resolvedType{}, err
	}
	depth := p.cur.Depth()
	kind := model.KindPrimitive
	var readErr error
	for {
		ok, err := p.cur.Read()
		if err != nil {
			readErr = err
			break
		}
		if !ok {
			break
		}
		if p.cur.NodeKind() == xmlcursor.KindElement {
			kind = model.KindComplex
			if p.cur.Is(p.names.item, p.names.metadataNS) {
				kind = model.KindCollection
			}
			break
		}
		if p.cur.NodeKind() == xmlcursor.KindEndElement && p.cur.Depth() == depth {
			break
		}
	}
	if err := p.cur.StopBuffering(); err != nil {
		return resolvedType{}, err
	}
	if readErr != nil {
		return resolvedType{}, readErr
	}
	if kind != model.KindPrimitive {
		return resolvedType{kind: kind}, nil
	}
	return str, nil
}

func (p *ValueParser) parsePrimitive(kind model.PrimitiveKind) (model.Value, error) {
	line, column := p.cur.Pos()
	text, err := p.readText()
	if err != nil {
		return model.Value{}, err
	}
	prim, err := primitive.Parse(kind, text)
	if err != nil {
		return model.Value{}, xmlerrors.Wrap(xmlerrors.KindFormat, xmlerrors.ErrInvalidPrimitive, err,
			fmt.Sprintf("cannot parse %s value", kind.QualifiedName())).At(line, column)
	}
	return model.PrimitiveValue(prim), nil
}

// readText concatenates the character content of the current element and
// leaves the cursor on its end tag.
func (p *ValueParser) readText() (string, error) {
	if p.cur.IsEmptyElement() {
		return "", nil
	}
	depth := p.cur.Depth()
	var b strings.Builder
	for {
		if err := p.mustRead(); err != nil {
			return "", err
		}
		switch p.cur.NodeKind() {
		case xmlcursor.KindText, xmlcursor.KindWhitespace:
			b.WriteString(p.cur.Value())
		case xmlcursor.KindElement:
			return "", p.formatf(xmlerrors.ErrElementInPrimitive,
				"element %s found in primitive value", p.cur.LocalNameString()).WithActual(p.cur.LocalNameString())
		case xmlcursor.KindEndElement:
			if p.cur.Depth() == depth {
				return b.String(), nil
			}
		}
	}
}

func (p *ValueParser) parseComplex(rt resolvedType, dup *validation.DuplicateNameChecker) (model.Value, error) {
	c := &model.Complex{}
	if rt.name != "" {
		c.TypeName = rt.name
	}
	var declared *model.ComplexType
	if rt.ref != nil && rt.ref.Kind == model.KindComplex {
		declared = rt.ref.Complex
	}
	if p.cur.IsEmptyElement() {
		return model.ComplexValue(c), nil
	}
	depth := p.cur.Depth()
	for {
		if err := p.mustRead(); err != nil {
			return model.Value{}, err
		}
		switch p.cur.NodeKind() {
		case xmlcursor.KindEndElement:
			if p.cur.Depth() == depth {
				return model.ComplexValue(c), nil
			}
		case xmlcursor.KindElement:
			if err := p.readComplexChild(c, declared, dup); err != nil {
				return model.Value{}, err
			}
		}
	}
}

func (p *ValueParser) readComplexChild(c *model.Complex, declared *model.ComplexType, dup *validation.DuplicateNameChecker) error {
	switch {
	case p.cur.NamespaceURI() == p.names.dataNS:
		name := p.cur.LocalNameString()
		if err := dup.Add(name); err != nil {
			return p.at(err)
		}
		var propType *model.TypeRef
		if declared != nil {
			decl, ok := declared.Property(name)
			switch {
			case ok:
				propType = &decl.Type
			case !declared.Open:
				return p.at(xmlerrors.NewValidationf(xmlerrors.ErrUndeclaredProperty,
					"property %q is not declared on type %s", name, declared.Name).WithActual(name))
			}
		}
		dup.Enter()
		value, err := p.ParseValue(propType, dup, nil, true)
		dup.Leave()
		if err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		c.Properties = append(c.Properties, model.Property{Name: name, Value: value})
		return nil
	case p.cur.Is(p.names.annotation, p.names.metadataNS):
		ann, ok, err := p.annotations.TryReadAnnotation()
		if err != nil {
			return err
		}
		if ok {
			c.Annotations = append(c.Annotations, ann)
			return nil
		}
		return p.skipToEndTag()
	default:
		return p.skipToEndTag()
	}
}

func (p *ValueParser) parseCollection(rt resolvedType, dup *validation.DuplicateNameChecker) (model.Value, error) {
	coll := &model.Collection{TypeName: rt.name}
	var elemType *model.TypeRef
	if rt.ref != nil {
		elemType = rt.ref.Element
	}
	var validator *validation.CollectionValidator
	if elemType == nil {
		validator = validation.NewCollectionValidator()
	}
	if p.cur.IsEmptyElement() {
		return model.CollectionValue(coll), nil
	}
	depth := p.cur.Depth()
	for {
		if err := p.mustRead(); err != nil {
			return model.Value{}, err
		}
		switch p.cur.NodeKind() {
		case xmlcursor.KindEndElement:
			if p.cur.Depth() == depth {
				return model.CollectionValue(coll), nil
			}
		case xmlcursor.KindElement:
			if !p.cur.Is(p.names.item, p.names.metadataNS) {
				if err := p.skipToEndTag(); err != nil {
					return model.Value{}, err
				}
				continue
			}
			dup.Enter()
			item, err := p.ParseValue(elemType, dup, validator, true)
			dup.Leave()
			if err != nil {
				return model.Value{}, err
			}
			if item.Kind == model.KindCollection {
				return model.Value{}, p.at(xmlerrors.NewValidationf(xmlerrors.ErrNestedCollectionItem, "collection item cannot be a collection"))
			}
			coll.Items = append(coll.Items, item)
		}
	}
}

// skipToEndTag consumes the content of the current element and leaves the
// cursor on its end tag. Empty elements are left as they are.
func (p *ValueParser) skipToEndTag() error {
	if p.cur.NodeKind() != xmlcursor.KindElement || p.cur.IsEmptyElement() {
		return nil
	}
	depth := p.cur.Depth()
	for {
		if err := p.mustRead(); err != nil {
			return err
		}
		if p.cur.NodeKind() == xmlcursor.KindEndElement && p.cur.Depth() == depth {
			return nil
		}
	}
}

func (p *ValueParser) mustRead() error {
	ok, err := p.cur.Read()
	if err != nil {
		return err
	}
	if !ok {
		return p.formatf(xmlerrors.ErrXMLSyntax, "unexpected end of input")
	}
	return nil
}

func (p *ValueParser) formatf(code xmlerrors.ErrorCode, format string, args ...any) *xmlerrors.Fault {
	line, column := p.cur.Pos()
	return xmlerrors.NewFormatf(code, format, args...).At(line, column)
}

func (p *ValueParser) wrapFormat(code xmlerrors.ErrorCode, err error, msg string) *xmlerrors.Fault {
	line, column := p.cur.Pos()
	return xmlerrors.Wrap(xmlerrors.KindFormat, code, err, msg).At(line, column)
}

func (p *ValueParser) unexpected(want string) *xmlerrors.Fault {
	return p.formatf(xmlerrors.ErrUnexpectedNode, "expected %s", want).WithActual(p.cur.NodeKind().String())
}

// at attaches the cursor position to a fault without one.
func (p *ValueParser) at(err error) error {
	f, ok := xmlerrors.AsFault(err)
	if !ok || f.Line > 0 {
		return err
	}
	line, column := p.cur.Pos()
	return f.At(line, column)
}
