package validation

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nyaruka/phonenumbers"

	"github.com/openshelf/openshelf/pkg/apperr"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Both name checks strip spaces first; pure names are letters only,
	// alpha names add digits and the allowed punctuation set.
	pureNameRe  = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNameRe = regexp.MustCompile(`^[a-zA-Z0-9'#$@!_*&^%(){}|/\\-]+$`)
)

// PasswordPolicy describes the strength requirements applied to
// password fields. The zero value is not usable; use DefaultPasswordPolicy.
type PasswordPolicy struct {
	MinLength  int
	MinLower   int
	MinUpper   int
	MinDigits  int
	MinSymbols int
}

// DefaultPasswordPolicy requires 8+ characters with at least one
// lowercase, one uppercase, one digit and one symbol.
var DefaultPasswordPolicy = PasswordPolicy{
	MinLength:  8,
	MinLower:   1,
	MinUpper:   1,
	MinDigits:  1,
	MinSymbols: 1,
}

// Satisfies reports whether s meets the policy.
func (p PasswordPolicy) Satisfies(s string) bool {
	if len(s) < p.MinLength {
		return false
	}
	var lower, upper, digits, symbols int
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower++
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
			digits++
		default:
			if !unicode.IsSpace(r) {
				symbols++
			}
		}
	}
	return lower >= p.MinLower && upper >= p.MinUpper &&
		digits >= p.MinDigits && symbols >= p.MinSymbols
}

// IsEmail reports whether value is a plausible email address.
func IsEmail(value any) bool {
	s, ok := value.(string)
	return ok && emailRe.MatchString(s)
}

// IsStrongPassword reports whether value meets the default password policy.
func IsStrongPassword(value any) bool {
	s, ok := value.(string)
	return ok && DefaultPasswordPolicy.Satisfies(s)
}

// IsPureName reports whether value is a human-name string: letters and
// spaces only.
func IsPureName(value any) bool {
	s, ok := value.(string)
	return ok && pureNameRe.MatchString(strings.ReplaceAll(s, " ", ""))
}

// IsAlphaName reports whether value is an alphanumeric name string,
// allowing the punctuation set - ' # $ @ ! _ * & ^ % ( ) { } | \ /
// alongside letters, digits and spaces.
func IsAlphaName(value any) bool {
	s, ok := value.(string)
	return ok && alphaNameRe.MatchString(strings.ReplaceAll(s, " ", ""))
}

// IsPhone reports whether value is a valid phone number in
// international format (leading country code).
func IsPhone(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// IsJSON reports whether value is structured data: an already-decoded
// object or array, or a string that parses as JSON.
func IsJSON(value any) bool {
	switch v := value.(type) {
	case map[string]any, []any:
		return true
	case string:
		return json.Valid([]byte(v))
	default:
		return false
	}
}

// IsInteger reports whether value represents a whole number. Decoded
// JSON numbers arrive as float64, so integral floats are accepted, as
// are numeric strings.
func IsInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return v == float64(int64(v))
	case float32:
		return float64(v) == float64(int64(v))
	case json.Number:
		_, err := v.Int64()
		return err == nil
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return err == nil
	default:
		return false
	}
}

// IsNumber reports whether value represents a numeric value,
// integral or fractional.
func IsNumber(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	default:
		return false
	}
}

// IsString reports whether value is a string.
func IsString(value any) bool {
	_, ok := value.(string)
	return ok
}

// IsArray reports whether value is a slice. Decoded JSON arrays are
// []any but stores may hand back typed slices.
func IsArray(value any) bool {
	if value == nil {
		return false
	}
	k := reflect.TypeOf(value).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// IsObject reports whether value is a decoded JSON object.
func IsObject(value any) bool {
	_, ok := value.(map[string]any)
	return ok
}

// IsBoolean reports whether value is a bool.
func IsBoolean(value any) bool {
	_, ok := value.(bool)
	return ok
}

// dateTimeLayouts are the accepted textual date formats, most
// specific first.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// IsDateTime reports whether value is a time.Time or a string in one
// of the accepted layouts.
func IsDateTime(value any) bool {
	switch v := value.(type) {
	case time.Time:
		return true
	case string:
		_, ok := parseDateTime(v)
		return ok
	default:
		return false
	}
}

func parseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// validateType dispatches value over the closed tag set and returns
// the field's failure, or nil when the value conforms. TypeCustom is
// handled by the walker and never reaches this switch.
func validateType(tag TypeTag, field string, value any) *apperr.Error {
	switch tag {
	case TypeEmail:
		if !IsEmail(value) {
			return apperr.Newf(400, "Invalid %s", field)
		}
	case TypePassword:
		if !IsStrongPassword(value) {
			return apperr.Newf(400, "Provide a strong %s", field)
		}
	case TypePureName:
		if !IsPureName(value) {
			return apperr.Newf(400, "Enter a valid %s", field)
		}
	case TypeAlphaName:
		if !IsAlphaName(value) {
			return apperr.Newf(400, "Enter a valid alphanumeric %s field", field)
		}
	case TypePhone:
		if !IsPhone(value) {
			return apperr.New(400, "Enter a valid phone number with country code")
		}
	case TypeJSON:
		if !IsJSON(value) {
			return apperr.New(400, "Provide a valid JSON body")
		}
	case TypeInteger:
		if !IsInteger(value) {
			return apperr.Newf(400, "Provide a valid Integer value for %s", field)
		}
	case TypeNumber:
		if !IsNumber(value) {
			return apperr.New(400, "Provide a valid number")
		}
	case TypeString:
		if !IsString(value) {
			return apperr.Newf(400, "Provide a valid string for %s", field)
		}
	case TypeArray:
		if !IsArray(value) {
			return apperr.New(400, "Provide a valid array")
		}
	case TypeDateTime:
		if !IsDateTime(value) {
			return apperr.New(400, "Provide a valid date")
		}
	case TypeObject:
		if !IsObject(value) {
			return apperr.New(400, "Provide a valid object")
		}
	case TypeBoolean:
		if !IsBoolean(value) {
			return apperr.New(400, "Provide a valid boolean value")
		}
	default:
		return unsupportedTypeError(field)
	}
	return nil
}
