package validation

import (
	"testing"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/pkg/model"
)

func TestDuplicateNameChecker(t *testing.T) {
	c := NewDuplicateNameChecker()
	if err := c.Add("Name"); err != nil {
		t.Fatalf("Add(Name) error = %v", err)
	}
	if err := c.Add("Name"); !xmlerrors.HasCode(err, xmlerrors.ErrDuplicateProperty) {
		t.Fatalf("second Add(Name) error = %v, want duplicate-property", err)
	}

	c.Enter()
	if err := c.Add("Name"); err != nil {
		t.Fatalf("Add(Name) in nested scope error = %v", err)
	}
	if c.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", c.Depth())
	}
	c.Leave()
	if c.Depth() != 0 {
		t.Fatalf("Depth() after Leave() = %d, want 0", c.Depth())
	}

	c.Enter()
	c.Reset()
	if c.Depth() != 0 {
		t.Fatalf("Depth() after Reset() = %d, want 0", c.Depth())
	}
	if err := c.Add("Name"); err != nil {
		t.Fatalf("Add(Name) after Reset() error = %v", err)
	}
}

func TestCollectionValidator(t *testing.T) {
	addr := model.ComplexValue(model.NewComplex("NS.Address"))
	tests := []struct {
		name  string
		code  xmlerrors.ErrorCode
		items []model.Value
	}{
		{name: "same primitive kind", items: []model.Value{model.Int32(1), model.Int32(2)}},
		{name: "nulls accepted", items: []model.Value{model.Null(), model.String("a"), model.Null()}},
		{name: "primitive then complex", items: []model.Value{model.String("a"), addr}, code: xmlerrors.ErrIncompatibleItemKind},
		{name: "different primitive kinds", items: []model.Value{model.Int32(1), model.String("a")}, code: xmlerrors.ErrIncompatibleItemType},
		{name: "untyped complex fits named", items: []model.Value{addr, model.ComplexValue(model.NewComplex(""))}},
		{
			name:  "different complex names",
			items: []model.Value{addr, model.ComplexValue(model.NewComplex("NS.Other"))},
			code:  xmlerrors.ErrIncompatibleItemType,
		},
		{
			name:  "nested collection",
			items: []model.Value{model.CollectionValue(&model.Collection{})},
			code:  xmlerrors.ErrNestedCollectionItem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewCollectionValidator()
			var err error
			for _, item := range tt.items {
				if err = v.Validate(item); err != nil {
					break
				}
			}
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !xmlerrors.HasCode(err, tt.code) || !xmlerrors.IsValidation(err) {
				t.Fatalf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCheckNullAndType(t *testing.T) {
	if err := CheckNull(nil); err != nil {
		t.Fatalf("CheckNull(nil) error = %v", err)
	}
	if err := CheckNull(model.PrimitiveType(model.PrimitiveInt32, false)); !xmlerrors.HasCode(err, xmlerrors.ErrNullNotAllowed) {
		t.Fatalf("CheckNull(non-nullable) error = %v", err)
	}

	addrType := &model.ComplexType{Name: "NS.Address"}
	tests := []struct {
		expected *model.TypeRef
		name     string
		value    model.Value
		wantErr  bool
	}{
		{name: "matching primitive", expected: model.PrimitiveType(model.PrimitiveInt32, true), value: model.Int32(1)},
		{name: "wrong primitive", expected: model.PrimitiveType(model.PrimitiveInt32, true), value: model.String("1"), wantErr: true},
		{name: "complex for primitive", expected: model.PrimitiveType(model.PrimitiveInt32, true), value: model.ComplexValue(model.NewComplex("")), wantErr: true},
		{name: "untyped complex", expected: model.ComplexTypeRef(addrType, true), value: model.ComplexValue(model.NewComplex(""))},
		{name: "other complex", expected: model.ComplexTypeRef(addrType, true), value: model.ComplexValue(model.NewComplex("NS.Other")), wantErr: true},
		{name: "null passes", expected: model.PrimitiveType(model.PrimitiveInt32, false), value: model.Null()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckType(tt.expected, tt.value)
			if tt.wantErr != (err != nil) {
				t.Fatalf("CheckType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !xmlerrors.HasCode(err, xmlerrors.ErrIncompatibleType) {
				t.Fatalf("CheckType() code = %v, want incompatible-type", err)
			}
		})
	}
}

func TestCheckPropertyName(t *testing.T) {
	for _, name := range []string{"Name", "_x", "a.b-c", "Ünïcode"} {
		if err := CheckPropertyName(name); err != nil {
			t.Fatalf("CheckPropertyName(%q) error = %v", name, err)
		}
	}
	for _, name := range []string{"", "1a", "a:b", "a b"} {
		if err := CheckPropertyName(name); !xmlerrors.HasCode(err, xmlerrors.ErrInvalidPropertyName) {
			t.Fatalf("CheckPropertyName(%q) error = %v, want property-name", name, err)
		}
	}
}
