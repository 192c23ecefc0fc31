package validation

import (
	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/pkg/model"
)

// CollectionValidator keeps the items of an untyped collection consistent:
// the first non-null item fixes the item kind and, once known, the type name.
// Null items are always accepted.
type CollectionValidator struct {
	typeName string
	kind     model.Kind
	seen     bool
}

// NewCollectionValidator returns a validator with no observed items.
func NewCollectionValidator() *CollectionValidator {
	return &CollectionValidator{}
}

// Validate checks value against the items seen so far and records it.
func (v *CollectionValidator) Validate(value model.Value) error {
	if v == nil {
		return nil
	}
	return v.ValidateShape(value.Kind, value.TypeName())
}

// ValidateShape checks an item by kind and type name. An empty type name is
// compatible with any recorded name.
func (v *CollectionValidator) ValidateShape(kind model.Kind, typeName string) error {
	if v == nil {
		return nil
	}
	switch kind {
	case model.KindNull:
		return nil
	case model.KindCollection:
		return xmlerrors.NewValidationf(xmlerrors.ErrNestedCollectionItem, "collection item cannot be a collection")
	}
	if !v.seen {
		v.seen = true
		v.kind = kind
		v.typeName = typeName
		return nil
	}
	if kind != v.kind {
		return xmlerrors.NewValidationf(xmlerrors.ErrIncompatibleItemKind,
			"%s item is incompatible with previous %s items", kind, v.kind).
			WithExpected(v.kind.String()).WithActual(kind.String())
	}
	if typeName == "" {
		return nil
	}
	if v.typeName == "" {
		v.typeName = typeName
		return nil
	}
	if typeName != v.typeName {
		return xmlerrors.NewValidationf(xmlerrors.ErrIncompatibleItemType,
			"item type %s is incompatible with previous items", typeName).
			WithExpected(v.typeName).WithActual(typeName)
	}
	return nil
}

// Reset forgets every observed item.
func (v *CollectionValidator) Reset() {
	*v = CollectionValidator{}
}
