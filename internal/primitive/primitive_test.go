package primitive

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/OData/odata.net-sub101/pkg/model"
)

func TestParseFormatRoundTrip(t *testing.T) {
	guid := uuid.MustParse("38cf68c2-4010-4ccc-8922-868217f03ddc")
	tests := []struct {
		value   any
		lexical string
		kind    model.PrimitiveKind
	}{
		{kind: model.PrimitiveBinary, lexical: "AQID", value: []byte{1, 2, 3}},
		{kind: model.PrimitiveBoolean, lexical: "true", value: true},
		{kind: model.PrimitiveByte, lexical: "255", value: uint8(255)},
		{kind: model.PrimitiveSByte, lexical: "-128", value: int8(-128)},
		{kind: model.PrimitiveInt16, lexical: "-300", value: int16(-300)},
		{kind: model.PrimitiveInt32, lexical: "42", value: int32(42)},
		{kind: model.PrimitiveInt64, lexical: "9223372036854775807", value: int64(math.MaxInt64)},
		{kind: model.PrimitiveSingle, lexical: "1.5", value: float32(1.5)},
		{kind: model.PrimitiveDouble, lexical: "-INF", value: math.Inf(-1)},
		{kind: model.PrimitiveDouble, lexical: "1E+21", value: 1e21},
		{kind: model.PrimitiveDecimal, lexical: "-12.50", value: model.Decimal("-12.50")},
		{kind: model.PrimitiveGuid, lexical: guid.String(), value: guid},
		{kind: model.PrimitiveDate, lexical: "2024-02-29", value: model.Date{Year: 2024, Month: time.February, Day: 29}},
		{kind: model.PrimitiveDateTimeOffset, lexical: "2024-01-02T03:04:05.5Z", value: time.Date(2024, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{kind: model.PrimitiveDuration, lexical: "-P1DT2H3M4.25S", value: -(26*time.Hour + 3*time.Minute + 4250*time.Millisecond)},
		{kind: model.PrimitiveDuration, lexical: "PT0S", value: time.Duration(0)},
		{kind: model.PrimitiveTimeOfDay, lexical: "13:20:05.125", value: model.TimeOfDay{Hour: 13, Minute: 20, Second: 5, Nanosecond: 125000000}},
		{kind: model.PrimitiveString, lexical: "  spaced  ", value: "  spaced  "},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.lexical, func(t *testing.T) {
			got, err := Parse(tt.kind, tt.lexical)
			if err != nil {
				t.Fatalf("Parse(%s, %q) error = %v", tt.kind, tt.lexical, err)
			}
			want := model.Primitive{Kind: tt.kind, Value: tt.value}
			if !Equal(got, want) {
				t.Fatalf("Parse(%s, %q) = %#v, want %#v", tt.kind, tt.lexical, got.Value, tt.value)
			}
			text, err := Format(got)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if text != tt.lexical {
				t.Fatalf("Format() = %q, want %q", text, tt.lexical)
			}
		})
	}
}

func TestParseTrimsWhitespaceForNonStrings(t *testing.T) {
	got, err := Parse(model.PrimitiveInt32, "\n  7 \t")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Value != int32(7) {
		t.Fatalf("Parse() = %#v, want int32(7)", got.Value)
	}
}

func TestParseRejectsInvalidLexicalForms(t *testing.T) {
	tests := []struct {
		kind    model.PrimitiveKind
		lexical string
		want    string
	}{
		{kind: model.PrimitiveBoolean, lexical: "yes", want: "invalid Boolean"},
		{kind: model.PrimitiveByte, lexical: "256", want: "invalid Byte"},
		{kind: model.PrimitiveInt32, lexical: "2147483648", want: "invalid Int32"},
		{kind: model.PrimitiveInt16, lexical: "", want: "empty string"},
		{kind: model.PrimitiveDouble, lexical: "Infinity", want: "invalid Double"},
		{kind: model.PrimitiveDouble, lexical: "0x10", want: "invalid Double"},
		{kind: model.PrimitiveDecimal, lexical: "1e5", want: "invalid Decimal"},
		{kind: model.PrimitiveGuid, lexical: "not-a-guid", want: "invalid Guid"},
		{kind: model.PrimitiveDate, lexical: "2023-02-29", want: "invalid Date"},
		{kind: model.PrimitiveDateTimeOffset, lexical: "2024-01-02T03:04:05", want: "invalid DateTimeOffset"},
		{kind: model.PrimitiveDuration, lexical: "P1Y", want: "invalid Duration"},
		{kind: model.PrimitiveDuration, lexical: "PT", want: "invalid Duration"},
		{kind: model.PrimitiveTimeOfDay, lexical: "24:00:00", want: "invalid TimeOfDay"},
		{kind: model.PrimitiveBinary, lexical: "!!", want: "invalid Binary"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.lexical, func(t *testing.T) {
			_, err := Parse(tt.kind, tt.lexical)
			if err == nil {
				t.Fatalf("Parse(%s, %q) error = nil", tt.kind, tt.lexical)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse(%s, %q) error = %v, want %q", tt.kind, tt.lexical, err, tt.want)
			}
		})
	}
}

func TestFormatRejectsMismatchedGoType(t *testing.T) {
	if _, err := Format(model.Primitive{Kind: model.PrimitiveInt32, Value: int64(1)}); err == nil {
		t.Fatalf("Format(Int32 holding int64) error = nil")
	}
	if _, err := Format(model.Primitive{Kind: model.PrimitiveDecimal, Value: model.Decimal("abc")}); err == nil {
		t.Fatalf("Format(Decimal abc) error = nil")
	}
}

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		raw  string
		want TypeName
	}{
		{raw: "Int32", want: TypeName{Name: "Edm.Int32", Primitive: model.PrimitiveInt32}},
		{raw: "Edm.String", want: TypeName{Name: "Edm.String", Primitive: model.PrimitiveString}},
		{raw: "#NS.Address", want: TypeName{Name: "NS.Address"}},
		{raw: "#Collection(NS.Address)", want: TypeName{Name: "NS.Address", Collection: true}},
		{raw: "#Collection(Int32)", want: TypeName{Name: "Edm.Int32", Primitive: model.PrimitiveInt32, Collection: true}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTypeName(tt.raw)
			if err != nil {
				t.Fatalf("ParseTypeName(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseTypeName(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}

	for _, raw := range []string{"", "#", "#Collection(NS.T", "#Collection(Collection(Int32))", "Edm.Unknown", "#A B"} {
		if _, err := ParseTypeName(raw); err == nil {
			t.Fatalf("ParseTypeName(%q) error = nil", raw)
		}
	}
}

func TestFormatTypeName(t *testing.T) {
	tests := map[string]string{
		"Edm.Int32":              "Int32",
		"NS.Address":             "#NS.Address",
		"Collection(Edm.String)": "#Collection(String)",
		"Collection(NS.Address)": "#Collection(NS.Address)",
		"":                       "",
	}
	for in, want := range tests {
		if got := FormatTypeName(in); got != want {
			t.Fatalf("FormatTypeName(%q) = %q, want %q", in, got, want)
		}
	}
}
