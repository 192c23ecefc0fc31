package deserializer

import (
	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/internal/primitive"
	"github.com/OData/odata.net-sub101/internal/validation"
	"github.com/OData/odata.net-sub101/pkg/model"
	"github.com/OData/odata.net-sub101/pkg/xmlcursor"
)

// AnnotationReader recognizes instance-annotation elements.
type AnnotationReader struct {
	cur    *xmlcursor.Cursor
	names  *names
	filter *AnnotationFilter
	values *ValueParser
	dup    *validation.DuplicateNameChecker
}

var shorthandKinds = [...]model.PrimitiveKind{
	model.PrimitiveString,
	model.PrimitiveInt64,
	model.PrimitiveBoolean,
	model.PrimitiveDouble,
	model.PrimitiveDecimal,
}

// TryReadAnnotation reads the annotation element under the cursor. It
// returns false and leaves the cursor untouched when the element is not an
// annotation or the filter does not select its term. On success the cursor
// ends on the annotation's end tag, or on its start tag when empty.
func (r *AnnotationReader) TryReadAnnotation() (model.InstanceAnnotation, bool, error) {
	if r.filter == nil || r.cur.NodeKind() != xmlcursor.KindElement {
		return model.InstanceAnnotation{}, false, nil
	}
	if !r.cur.Is(r.names.annotation, r.names.metadataNS) {
		return model.InstanceAnnotation{}, false, nil
	}
	term, ok := r.cur.GetAttribute(r.names.term, r.names.noNS)
	if !ok || primitive.TrimXMLWhitespace(term) == "" {
		return model.InstanceAnnotation{}, false, r.values.formatf(xmlerrors.ErrAnnotationMissingTerm, "annotation element has no term")
	}
	term = primitive.TrimXMLWhitespace(term)
	if !r.filter.Matches(term) {
		return model.InstanceAnnotation{}, false, nil
	}

	ann := model.InstanceAnnotation{Term: term}
	if target, ok := r.cur.GetAttribute(r.names.target, r.names.noNS); ok {
		ann.Target = target
	}

	value, handled, err := r.readShorthand()
	if err != nil {
		return model.InstanceAnnotation{}, false, err
	}
	if !handled {
		r.dup.Reset()
		value, err = r.values.ParseValue(nil, r.dup, nil, false)
		r.dup.Reset()
		if err != nil {
			return model.InstanceAnnotation{}, false, err
		}
	}
	ann.Value = value
	return ann, true, nil
}

// readShorthand handles the attribute forms such as int="5". At most one
// shorthand attribute is allowed and the element must have no content.
func (r *AnnotationReader) readShorthand() (model.Value, bool, error) {
	found := -1
	var raw string
	for i, sh := range r.names.shorthands {
		v, ok := r.cur.GetAttribute(sh.name, r.names.noNS)
		if !ok {
			continue
		}
		if found >= 0 {
			return model.Value{}, false, r.values.formatf(xmlerrors.ErrAnnotationValue,
				"annotation has both %s and %s attributes", r.names.shorthands[found].attr, sh.attr)
		}
		found = i
		raw = v
	}
	if found < 0 {
		return model.Value{}, false, nil
	}
	if _, hasType := r.cur.GetAttribute(r.names.typ, r.names.metadataNS); hasType {
		return model.Value{}, false, r.values.formatf(xmlerrors.ErrAnnotationValue,
			"annotation has both a type attribute and a %s attribute", r.names.shorthands[found].attr)
	}
	kind := shorthandKinds[found]
	line, column := r.cur.Pos()
	prim, err := primitive.Parse(kind, raw)
	if err != nil {
		return model.Value{}, false, xmlerrors.Wrap(xmlerrors.KindFormat, xmlerrors.ErrAnnotationValue, err,
			"invalid "+r.names.shorthands[found].attr+" annotation value").At(line, column)
	}
	text, err := r.values.readText()
	if err != nil {
		return model.Value{}, false, err
	}
	if primitive.TrimXMLWhitespace(text) != "" {
		return model.Value{}, false, r.values.formatf(xmlerrors.ErrAnnotationValue,
			"annotation with a %s attribute must not have content", r.names.shorthands[found].attr)
	}
	return model.PrimitiveValue(prim), true, nil
}
