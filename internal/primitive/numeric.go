package primitive

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var (
	// decimalPattern matches Edm.Decimal lexical values, which have no exponent.
	decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

	// floatPattern matches finite Edm.Double and Edm.Single lexical values.
	floatPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

func parseBoolean(s string) (bool, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid Boolean: %s", s)
	}
}

func parseInt(s string, bits int, label string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid %s: empty string", label)
	}
	v, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", label, s)
	}
	return v, nil
}

func parseByte(s string) (uint8, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid Byte: empty string")
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid Byte: %s", s)
	}
	return uint8(v), nil
}

func parseFloat(s string, bits int, label string) (float64, error) {
	switch s {
	case "":
		return 0, fmt.Errorf("invalid %s: empty string", label)
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	if !floatPattern.MatchString(s) {
		return 0, fmt.Errorf("invalid %s: %s", label, s)
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", label, s)
	}
	return v, nil
}

func formatFloat(v float64, bits int) string {
	switch {
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'G', -1, bits)
}

func parseDecimal(s string) (string, error) {
	if !decimalPattern.MatchString(s) {
		return "", fmt.Errorf("invalid Decimal: %s", s)
	}
	return s, nil
}
