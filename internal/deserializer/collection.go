package deserializer

import (
	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/internal/validation"
	"github.com/OData/odata.net-sub101/internal/wire"
	"github.com/OData/odata.net-sub101/pkg/model"
	"github.com/OData/odata.net-sub101/pkg/xmlcursor"
)

// CollectionDeserializer reads the payload wrapper and its items. Every
// method requires the cursor to be out of lookahead mode on entry and
// leaves it that way on return.
type CollectionDeserializer struct {
	cur         *xmlcursor.Cursor
	names       *names
	values      *ValueParser
	annotations *AnnotationReader
	dup         *validation.DuplicateNameChecker
}

// NewCollectionDeserializer builds a deserializer over cur. Wire names are
// interned into the cursor's name table once, here. A nil filter disables
// annotation materialization.
func NewCollectionDeserializer(cur *xmlcursor.Cursor, filter *AnnotationFilter) *CollectionDeserializer {
	n := newNames(cur.NameTable())
	values := &ValueParser{cur: cur, names: n}
	annotations := &AnnotationReader{
		cur:    cur,
		names:  n,
		filter: filter,
		values: values,
		dup:    validation.NewDuplicateNameChecker(),
	}
	values.annotations = annotations
	return &CollectionDeserializer{
		cur:         cur,
		names:       n,
		values:      values,
		annotations: annotations,
		dup:         validation.NewDuplicateNameChecker(),
	}
}

// Annotations returns the annotation recognizer bound to this deserializer.
func (d *CollectionDeserializer) Annotations() *AnnotationReader {
	return d.annotations
}

// Values returns the value parser bound to this deserializer.
func (d *CollectionDeserializer) Values() *ValueParser {
	return d.values
}

// ReadPayloadStart moves from the start of input to the root element,
// skipping the prolog.
func (d *CollectionDeserializer) ReadPayloadStart() error {
	return d.guard(func() error {
		for {
			if d.cur.NodeKind() == xmlcursor.KindElement {
				return nil
			}
			if d.cur.NodeKind() == xmlcursor.KindText {
				return d.values.unexpected("root element")
			}
			ok, err := d.cur.Read()
			if err != nil {
				return err
			}
			if !ok {
				return d.values.formatf(xmlerrors.ErrMissingRoot, "payload has no root element")
			}
		}
	})
}

// ReadCollectionStart validates the payload wrapper element and advances
// past its start tag. An empty wrapper leaves the cursor on it.
func (d *CollectionDeserializer) ReadCollectionStart() (model.CollectionStart, bool, error) {
	var isEmpty bool
	err := d.guard(func() error {
		if d.cur.NodeKind() != xmlcursor.KindElement {
			return d.values.unexpected("collection element")
		}
		if d.cur.NamespaceURI() != d.names.metadataNS {
			return d.values.formatf(xmlerrors.ErrInvalidCollectionNamespace,
				"collection element %s is not in the metadata namespace", d.cur.LocalNameString()).
				WithExpected(wire.MetadataNamespace).WithActual(d.cur.NamespaceURIString())
		}
		if _, ok := d.cur.GetAttribute(d.names.typ, d.names.metadataNS); ok {
			return d.values.formatf(xmlerrors.ErrTypeOnCollection,
				"collection element must not have a %s attribute", wire.Qualified(wire.MetadataPrefix, wire.TypeAttribute))
		}
		if _, ok := d.cur.GetAttribute(d.names.null, d.names.metadataNS); ok {
			return d.values.formatf(xmlerrors.ErrNullOnCollection,
				"collection element must not have a %s attribute", wire.Qualified(wire.MetadataPrefix, wire.NullAttribute))
		}
		isEmpty = d.cur.IsEmptyElement()
		if isEmpty {
			return nil
		}
		_, err := d.cur.Read()
		return err
	})
	if err != nil {
		return model.CollectionStart{}, false, err
	}
	return model.CollectionStart{}, isEmpty, nil
}

// ReadCollectionItem reads one item element and advances past it.
// validator may be nil; it is used when no item type is declared.
func (d *CollectionDeserializer) ReadCollectionItem(expected *model.TypeRef, validator *validation.CollectionValidator) (model.Value, error) {
	var item model.Value
	err := d.guard(func() error {
		if d.cur.NodeKind() != xmlcursor.KindElement {
			return d.values.unexpected("collection item element")
		}
		if d.cur.LocalName() != d.names.item || d.cur.NamespaceURI() != d.names.metadataNS {
			actual := d.cur.LocalNameString()
			return d.values.formatf(xmlerrors.ErrInvalidItemElement,
				"invalid collection item element %s in namespace %q", actual, d.cur.NamespaceURIString()).
				WithExpected(wire.MetadataNamespace).WithActual(actual)
		}
		value, err := d.values.ParseValue(expected, d.dup, validator, true)
		d.dup.Reset()
		if err != nil {
			return err
		}
		if value.Kind == model.KindCollection {
			return d.values.at(xmlerrors.NewValidationf(xmlerrors.ErrNestedCollectionItem, "collection item cannot be a collection"))
		}
		item = value
		_, err = d.cur.Read()
		return err
	})
	return item, err
}

// SkipToNextRelevantElement discards nodes outside the metadata namespace.
// It reports true when it stops on an end tag or at end of input, meaning
// no items remain.
func (d *CollectionDeserializer) SkipToNextRelevantElement() (bool, error) {
	var atEnd bool
	err := d.guard(func() error {
		for {
			switch d.cur.NodeKind() {
			case xmlcursor.KindElement:
				if d.cur.NamespaceURI() == d.names.metadataNS {
					return nil
				}
				if err := d.cur.Skip(); err != nil {
					return err
				}
				continue
			case xmlcursor.KindEndElement, xmlcursor.KindEOF:
				atEnd = true
				return nil
			}
			ok, err := d.cur.Read()
			if err != nil {
				return err
			}
			if !ok {
				atEnd = true
				return nil
			}
		}
	})
	return atEnd, err
}

// ReadCollectionEnd advances past the wrapper's end tag, or past its start
// tag when the wrapper was empty.
func (d *CollectionDeserializer) ReadCollectionEnd() error {
	return d.guard(func() error {
		switch {
		case d.cur.NodeKind() == xmlcursor.KindEndElement:
		case d.cur.NodeKind() == xmlcursor.KindElement && d.cur.IsEmptyElement():
		default:
			return d.values.unexpected("end of collection")
		}
		_, err := d.cur.Read()
		return err
	})
}

// ReadPayloadEnd verifies that only ignorable content follows the wrapper.
func (d *CollectionDeserializer) ReadPayloadEnd() error {
	return d.guard(func() error {
		for {
			switch d.cur.NodeKind() {
			case xmlcursor.KindEOF:
				return nil
			case xmlcursor.KindWhitespace, xmlcursor.KindComment, xmlcursor.KindProcInst:
			default:
				return d.values.formatf(xmlerrors.ErrContentAfterRoot, "unexpected content after the collection element").
					WithActual(d.cur.NodeKind().String())
			}
			ok, err := d.cur.Read()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
	})
}

// guard runs fn between two non-buffering checks.
func (d *CollectionDeserializer) guard(fn func() error) error {
	if err := d.cur.AssertNotBuffering(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return d.cur.AssertNotBuffering()
}
