package catalog

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Request values are coerced the way the dashboard's JavaScript client
// expects: numbers are read from the longest numeric prefix of the value's
// string form, and anything without one becomes NULL.

var (
	errUnbindable  = errors.New("value cannot be stored in a text column")
	errNotANumber  = errors.New("value is not a number")
	floatPrefixRE  = regexp.MustCompile(`^[+-]?(?:Infinity|\d+\.?\d*(?:[eE][+-]?\d+)?|\.\d+(?:[eE][+-]?\d+)?)`)
	decimalDigits  = regexp.MustCompile(`^\d+`)
	hexDigits      = regexp.MustCompile(`^[0-9a-fA-F]+`)
	jsonNullLit    = []byte("null")
	exponentZeroRE = regexp.MustCompile(`e([+-])0+(\d)`)
)

// textValue maps a JSON value onto a text column. Absent and null store NULL;
// booleans, objects and arrays are rejected.
func textValue(raw json.RawMessage) (sql.NullString, error) {
	v, present, err := decodeRaw(raw)
	if err != nil {
		return sql.NullString{}, err
	}
	if !present || v == nil {
		return sql.NullString{}, nil
	}

	switch x := v.(type) {
	case string:
		return sql.NullString{String: x, Valid: true}, nil
	case json.Number:
		return sql.NullString{String: jsNumber(x), Valid: true}, nil
	default:
		return sql.NullString{}, errUnbindable
	}
}

// floatValue applies parseFloat to the value's string form. Non-finite
// results are stored as NULL.
func floatValue(raw json.RawMessage) sql.NullFloat64 {
	f, ok := parseFloatPrefix(jsString(raw))
	if !ok || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// intValue applies parseInt to the value's string form. Results outside
// int64 are stored as NULL.
func intValue(raw json.RawMessage) sql.NullInt64 {
	n, ok := parseIntPrefix(jsString(raw))
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

// echoValue re-emits a request value for the response. Numbers are
// reformatted to their shortest form and non-finite ones become null; any
// other value is returned as sent.
func echoValue(raw json.RawMessage) json.RawMessage {
	v, present, err := decodeRaw(raw)
	if err != nil || !present {
		return raw
	}
	n, ok := v.(json.Number)
	if !ok {
		return raw
	}

	s := jsNumber(n)
	if s == "Infinity" || s == "-Infinity" {
		return json.RawMessage(jsonNullLit)
	}
	return json.RawMessage(s)
}

func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := floatPrefixRE.FindString(s)
	if m == "" {
		return 0, false
	}

	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	// overflow yields ±Inf with ErrRange, which is the value we want
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func parseIntPrefix(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base, re := 10, decimalDigits
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, re, s = 16, hexDigits, s[2:]
	}

	digits := re.FindString(s)
	if digits == "" {
		return 0, false
	}
	if neg {
		digits = "-" + digits
	}

	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// jsString renders a JSON value the way JavaScript's String() would.
// An absent value renders as "undefined".
func jsString(raw json.RawMessage) string {
	v, present, err := decodeRaw(raw)
	if err != nil {
		return ""
	}
	if !present {
		return "undefined"
	}
	if v == nil {
		return "null"
	}
	return jsStringOf(v)
}

func jsStringOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return jsNumber(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = jsStringOf(e)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

func jsNumber(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		if math.IsInf(f, 1) {
			return "Infinity"
		}
		if math.IsInf(f, -1) {
			return "-Infinity"
		}
		return n.String()
	}
	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	return exponentZeroRE.ReplaceAllString(s, "e$1$2")
}

func decodeRaw(raw json.RawMessage) (v any, present bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), jsonNullLit) {
		return nil, true, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, true, err
	}
	return v, true, nil
}
