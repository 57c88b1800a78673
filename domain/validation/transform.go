package validation

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// transform canonicalizes a value that already passed validation for
// tag. Integers become int64, numbers float64, datetimes time.Time and
// phone numbers "+<country>-<national>". Every other tag is identity.
// Transforms are idempotent: feeding a canonical value back through
// returns it unchanged.
func transform(tag TypeTag, value any) any {
	switch tag {
	case TypeInteger:
		return toInt64(value)
	case TypeNumber:
		return toFloat64(value)
	case TypeDateTime:
		return toTime(value)
	case TypePhone:
		return toCanonicalPhone(value)
	default:
		return value
	}
}

func toInt64(value any) any {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return value
}

func toFloat64(value any) any {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return value
}

func toTime(value any) any {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		if t, ok := parseDateTime(v); ok {
			return t
		}
	}
	return value
}

// toCanonicalPhone rewrites a valid phone number as
// "+<countryCode>-<nationalNumber>". Already-canonical input parses to
// the same components, so the rewrite is a fixed point.
func toCanonicalPhone(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return value
	}
	return "+" + strconv.Itoa(int(num.GetCountryCode())) + "-" +
		phonenumbers.GetNationalSignificantNumber(num)
}
