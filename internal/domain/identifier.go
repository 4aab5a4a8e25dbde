package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is returned when raw input carries neither a finite
// numeric id nor a non-empty key
var ErrInvalidIdentifier = errors.New("invalid identifier")

// IdentifierKind tags the active variant of an Identifier
type IdentifierKind int

const (
	IdentifierInvalid IdentifierKind = iota
	IdentifierNumeric
	IdentifierKey
)

func (k IdentifierKind) String() string {
	switch k {
	case IdentifierNumeric:
		return "id"
	case IdentifierKey:
		return "key"
	default:
		return "invalid"
	}
}

// Identifier is the canonical form of a collection reference: either a
// numeric id or an opaque key. The zero value is invalid.
type Identifier struct {
	kind IdentifierKind
	id   int64
	key  string
}

// NumericID builds a numeric identifier
func NumericID(id int64) Identifier {
	return Identifier{kind: IdentifierNumeric, id: id}
}

// Key builds a key identifier. The key is trimmed; an empty key yields the
// invalid zero value.
func Key(key string) Identifier {
	key = strings.TrimSpace(key)
	if key == "" {
		return Identifier{}
	}
	return Identifier{kind: IdentifierKey, key: key}
}

// Kind returns the active variant
func (i Identifier) Kind() IdentifierKind { return i.kind }

// IsValid reports whether the identifier was built from usable input
func (i Identifier) IsValid() bool { return i.kind != IdentifierInvalid }

// ID returns the numeric id and true for numeric identifiers
func (i Identifier) ID() (int64, bool) {
	return i.id, i.kind == IdentifierNumeric
}

// KeyValue returns the key and true for key identifiers
func (i Identifier) KeyValue() (string, bool) {
	return i.key, i.kind == IdentifierKey
}

// AsKey degrades a numeric identifier to the key spelled by its decimal form.
// Catalog keys may consist of digits only, so an id that misses can still hit
// as a key.
func (i Identifier) AsKey() Identifier {
	switch i.kind {
	case IdentifierNumeric:
		return Key(strconv.FormatInt(i.id, 10))
	default:
		return i
	}
}

func (i Identifier) String() string {
	switch i.kind {
	case IdentifierNumeric:
		return strconv.FormatInt(i.id, 10)
	case IdentifierKey:
		return i.key
	default:
		return "<invalid>"
	}
}

// IDCarrier is implemented by structured wrappers that carry a raw id
type IDCarrier interface {
	RawID() any
}

// Normalize coerces a raw UI value into an Identifier.
//
// Wrappers ({"id": ...} maps, IDCarrier values) are unwrapped first. Finite
// integral numbers become numeric ids, other non-empty strings become keys.
// nil, empty strings, NaN, infinities and fractional numbers are rejected.
func Normalize(raw any) (Identifier, error) {
	switch v := raw.(type) {
	case map[string]any:
		inner, ok := v["id"]
		if !ok {
			return Identifier{}, invalid(raw)
		}
		return normalizeScalar(inner)
	case *CollectionRecord:
		if v == nil {
			return Identifier{}, invalid(raw)
		}
		return normalizeScalar(v.ID)
	case IDCarrier:
		return normalizeScalar(v.RawID())
	}
	return normalizeScalar(raw)
}

func normalizeScalar(raw any) (Identifier, error) {
	switch v := raw.(type) {
	case nil:
		return Identifier{}, invalid(raw)
	case Identifier:
		if !v.IsValid() {
			return Identifier{}, invalid(raw)
		}
		return v, nil
	case int:
		return NumericID(int64(v)), nil
	case int8:
		return NumericID(int64(v)), nil
	case int16:
		return NumericID(int64(v)), nil
	case int32:
		return NumericID(int64(v)), nil
	case int64:
		return NumericID(v), nil
	case uint:
		return fromUint(uint64(v), raw)
	case uint8:
		return NumericID(int64(v)), nil
	case uint16:
		return NumericID(int64(v)), nil
	case uint32:
		return NumericID(int64(v)), nil
	case uint64:
		return fromUint(v, raw)
	case float32:
		return fromFloat(float64(v), raw)
	case float64:
		return fromFloat(v, raw)
	case json.Number:
		return fromString(v.String(), raw)
	case string:
		return fromString(v, raw)
	case *string:
		if v == nil {
			return Identifier{}, invalid(raw)
		}
		return fromString(*v, raw)
	case fmt.Stringer:
		return fromString(v.String(), raw)
	default:
		return Identifier{}, invalid(raw)
	}
}

func fromUint(v uint64, raw any) (Identifier, error) {
	if v > math.MaxInt64 {
		return Identifier{}, invalid(raw)
	}
	return NumericID(int64(v)), nil
}

func fromFloat(f float64, raw any) (Identifier, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Identifier{}, invalid(raw)
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return Identifier{}, invalid(raw)
	}
	return NumericID(int64(f)), nil
}

func fromString(s string, raw any) (Identifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identifier{}, invalid(raw)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NumericID(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Identifier{}, invalid(raw)
		}
		// Fractional numerals can never be ids; keep them as keys so the
		// store lookup gets a chance before NotFound.
		if f == math.Trunc(f) && f < math.MaxInt64 && f >= math.MinInt64 {
			return NumericID(int64(f)), nil
		}
	}
	if isNonFiniteWord(s) {
		return Identifier{}, invalid(raw)
	}
	return Key(s), nil
}

// isNonFiniteWord catches the placeholder spellings a mis-read option value
// turns into once stringified.
func isNonFiniteWord(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity", "undefined", "null":
		return true
	}
	return false
}

func invalid(raw any) error {
	return fmt.Errorf("%w: %s", ErrInvalidIdentifier, Describe(raw))
}

// Describe renders a raw value for diagnostic traces: its text, Go type and
// whether it coerces to a finite number.
func Describe(raw any) string {
	text := fmt.Sprintf("%v", raw)
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	finite := err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	return fmt.Sprintf("val=%q type=%T finite=%t", text, raw, finite)
}
