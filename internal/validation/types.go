package validation

import (
	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/pkg/model"
)

// CheckNull rejects null for a non-nullable expected type.
func CheckNull(expected *model.TypeRef) error {
	if expected.IsNullable() {
		return nil
	}
	return xmlerrors.NewValidationf(xmlerrors.ErrNullNotAllowed,
		"null value not allowed for non-nullable type %s", expected.Name())
}

// CheckType verifies that value is compatible with expected. Null values
// pass; callers check nullability with CheckNull. A nil expected type
// accepts any value.
func CheckType(expected *model.TypeRef, value model.Value) error {
	if expected == nil || value.Kind == model.KindNull {
		return nil
	}
	if value.Kind != expected.Kind {
		return incompatible(expected, value)
	}
	switch value.Kind {
	case model.KindPrimitive:
		if value.Primitive.Kind != expected.Primitive {
			return incompatible(expected, value)
		}
	case model.KindComplex:
		if expected.Complex != nil && value.Complex.TypeName != "" && value.Complex.TypeName != expected.Complex.Name {
			return incompatible(expected, value)
		}
	case model.KindCollection:
		name := value.Collection.TypeName
		if name != "" && name != expected.Name() {
			return incompatible(expected, value)
		}
	}
	return nil
}

// CheckKind verifies a resolved kind against the expected type before the
// value itself is materialized.
func CheckKind(expected *model.TypeRef, kind model.Kind, primitive model.PrimitiveKind, typeName string) error {
	if expected == nil {
		return nil
	}
	actual := model.Value{Kind: kind}
	switch kind {
	case model.KindPrimitive:
		actual.Primitive = model.Primitive{Kind: primitive}
	case model.KindComplex:
		actual.Complex = &model.Complex{TypeName: typeName}
	case model.KindCollection:
		actual.Collection = &model.Collection{TypeName: typeName}
	}
	return CheckType(expected, actual)
}

func incompatible(expected *model.TypeRef, value model.Value) error {
	actual := value.TypeName()
	if actual == "" {
		actual = value.Kind.String()
	}
	return xmlerrors.NewValidationf(xmlerrors.ErrIncompatibleType,
		"value of type %s is incompatible with expected type %s", actual, expected.Name()).
		WithExpected(expected.Name()).WithActual(actual)
}
