package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wrapped struct{ id any }

func (w wrapped) RawID() any { return w.id }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		wantKind IdentifierKind
		wantID   int64
		wantKey  string
		wantErr  bool
	}{
		{name: "int", raw: 42, wantKind: IdentifierNumeric, wantID: 42},
		{name: "int64", raw: int64(7), wantKind: IdentifierNumeric, wantID: 7},
		{name: "integral float", raw: 12.0, wantKind: IdentifierNumeric, wantID: 12},
		{name: "numeric string", raw: "15", wantKind: IdentifierNumeric, wantID: 15},
		{name: "numeric string with spaces", raw: "  15 ", wantKind: IdentifierNumeric, wantID: 15},
		{name: "json number", raw: json.Number("99"), wantKind: IdentifierNumeric, wantID: 99},
		{name: "key string", raw: "ABCD1234", wantKind: IdentifierKey, wantKey: "ABCD1234"},
		{name: "key string trimmed", raw: " WXYZ9876\n", wantKind: IdentifierKey, wantKey: "WXYZ9876"},
		{name: "map wrapper with id", raw: map[string]any{"id": 5}, wantKind: IdentifierNumeric, wantID: 5},
		{name: "map wrapper with key", raw: map[string]any{"id": "ABCD1234"}, wantKind: IdentifierKey, wantKey: "ABCD1234"},
		{name: "carrier wrapper", raw: wrapped{id: "8"}, wantKind: IdentifierNumeric, wantID: 8},
		{name: "record", raw: CollectionRecord{ID: 3}, wantKind: IdentifierNumeric, wantID: 3},
		{name: "record pointer", raw: &CollectionRecord{ID: 4}, wantKind: IdentifierNumeric, wantID: 4},
		{name: "identifier passthrough", raw: Key("K1"), wantKind: IdentifierKey, wantKey: "K1"},
		{name: "fractional string stays a key", raw: "1.5", wantKind: IdentifierKey, wantKey: "1.5"},

		{name: "nil", raw: nil, wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
		{name: "blank string", raw: "   ", wantErr: true},
		{name: "NaN", raw: math.NaN(), wantErr: true},
		{name: "positive infinity", raw: math.Inf(1), wantErr: true},
		{name: "negative infinity", raw: math.Inf(-1), wantErr: true},
		{name: "NaN string", raw: "NaN", wantErr: true},
		{name: "Infinity string", raw: "Infinity", wantErr: true},
		{name: "undefined string", raw: "undefined", wantErr: true},
		{name: "fractional float", raw: 1.5, wantErr: true},
		{name: "map without id", raw: map[string]any{"key": "X"}, wantErr: true},
		{name: "map with nil id", raw: map[string]any{"id": nil}, wantErr: true},
		{name: "nil record pointer", raw: (*CollectionRecord)(nil), wantErr: true},
		{name: "bool", raw: true, wantErr: true},
		{name: "zero identifier", raw: Identifier{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidIdentifier)
				assert.False(t, got.IsValid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind())
			switch got.Kind() {
			case IdentifierNumeric:
				id, ok := got.ID()
				assert.True(t, ok)
				assert.Equal(t, tt.wantID, id)
			case IdentifierKey:
				key, ok := got.KeyValue()
				assert.True(t, ok)
				assert.Equal(t, tt.wantKey, key)
			default:
				t.Fatalf("unexpected kind %v", got.Kind())
			}
		})
	}
}

func TestIdentifier_AsKey(t *testing.T) {
	assert.Equal(t, Key("23456789"), NumericID(23456789).AsKey())
	assert.Equal(t, Key("ABC"), Key("ABC").AsKey())
}

func TestKey_EmptyIsInvalid(t *testing.T) {
	assert.False(t, Key("  ").IsValid())
	assert.Equal(t, "<invalid>", Key("").String())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, `val="12" type=string finite=true`, Describe("12"))
	assert.Equal(t, `val="abc" type=string finite=false`, Describe("abc"))
}
