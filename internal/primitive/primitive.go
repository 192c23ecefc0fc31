package primitive

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/OData/odata.net-sub101/pkg/model"
)

// Parse converts the lexical form of kind into a primitive value.
// String values are kept verbatim; other kinds ignore surrounding XML
// whitespace.
func Parse(kind model.PrimitiveKind, lexical string) (model.Primitive, error) {
	if kind == model.PrimitiveString {
		return model.Primitive{Kind: kind, Value: lexical}, nil
	}
	s := TrimXMLWhitespace(lexical)
	var (
		v   any
		err error
	)
	switch kind {
	case model.PrimitiveBinary:
		var b []byte
		b, err = base64.StdEncoding.DecodeString(s)
		if err != nil {
			err = fmt.Errorf("invalid Binary: %w", err)
		}
		v = b
	case model.PrimitiveBoolean:
		v, err = parseBoolean(s)
	case model.PrimitiveByte:
		v, err = parseByte(s)
	case model.PrimitiveSByte:
		var n int64
		n, err = parseInt(s, 8, "SByte")
		v = int8(n)
	case model.PrimitiveInt16:
		var n int64
		n, err = parseInt(s, 16, "Int16")
		v = int16(n)
	case model.PrimitiveInt32:
		var n int64
		n, err = parseInt(s, 32, "Int32")
		v = int32(n)
	case model.PrimitiveInt64:
		v, err = parseInt(s, 64, "Int64")
	case model.PrimitiveSingle:
		var f float64
		f, err = parseFloat(s, 32, "Single")
		v = float32(f)
	case model.PrimitiveDouble:
		v, err = parseFloat(s, 64, "Double")
	case model.PrimitiveDecimal:
		var d string
		d, err = parseDecimal(s)
		v = model.Decimal(d)
	case model.PrimitiveGuid:
		var id uuid.UUID
		id, err = uuid.Parse(s)
		if err != nil {
			err = fmt.Errorf("invalid Guid: %s", s)
		}
		v = id
	case model.PrimitiveDate:
		v, err = parseDate(s)
	case model.PrimitiveDateTimeOffset:
		v, err = parseDateTimeOffset(s)
	case model.PrimitiveDuration:
		v, err = parseDuration(s)
	case model.PrimitiveTimeOfDay:
		v, err = parseTimeOfDay(s)
	default:
		return model.Primitive{}, fmt.Errorf("unsupported primitive kind %s", kind)
	}
	if err != nil {
		return model.Primitive{}, err
	}
	return model.Primitive{Kind: kind, Value: v}, nil
}

// Format returns the lexical form of p.
func Format(p model.Primitive) (string, error) {
	if err := p.Check(); err != nil {
		return "", err
	}
	switch v := p.Value.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32), nil
	case float64:
		return formatFloat(v, 64), nil
	case model.Decimal:
		if _, err := parseDecimal(string(v)); err != nil {
			return "", err
		}
		return string(v), nil
	case uuid.UUID:
		return v.String(), nil
	case model.Date:
		if _, err := parseDate(v.String()); err != nil {
			return "", err
		}
		return v.String(), nil
	case time.Time:
		return formatDateTimeOffset(v), nil
	case time.Duration:
		return formatDuration(v), nil
	case model.TimeOfDay:
		if !validTimeOfDay(v) {
			return "", fmt.Errorf("invalid TimeOfDay: %s", v)
		}
		return v.String(), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("unsupported primitive value %T", p.Value)
	}
}

// Equal reports whether two primitives hold the same kind and value.
// NaN compares equal to NaN so decoded payloads can be compared.
func Equal(a, b model.Primitive) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch av := a.Value.(type) {
	case float64:
		bv, ok := b.Value.(float64)
		return ok && (av == bv || (math.IsNaN(av) && math.IsNaN(bv)))
	case float32:
		bv, ok := b.Value.(float32)
		return ok && (av == bv || (math.IsNaN(float64(av)) && math.IsNaN(float64(bv))))
	case time.Time:
		bv, ok := b.Value.(time.Time)
		return ok && av.Equal(bv)
	case []byte:
		bv, ok := b.Value.([]byte)
		return ok && string(av) == string(bv)
	default:
		return a.Value == b.Value
	}
}
