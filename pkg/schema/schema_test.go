package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in       string
		name     string
		optional bool
		wantErr  bool
	}{
		{in: "int", name: "int"},
		{in: " string ", name: "string"},
		{in: "[int]", name: "[int]"},
		{in: "[[bool]]", name: "[[bool]]"},
		{in: "float?", name: "float?", optional: true},
		{in: "[string]?", name: "[string]?", optional: true},
		{in: "any", name: "any"},
		{in: "decimal", wantErr: true},
		{in: "[]", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			typ, err := schema.ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, typ.Name())
			assert.Equal(t, tt.optional, schema.IsOptional(typ))
		})
	}
}

func TestTypes_Validate(t *testing.T) {
	tests := []struct {
		name  string
		typ   schema.Type
		value any
		ok    bool
	}{
		{"int accepts int", schema.Int(), 3, true},
		{"int accepts whole float", schema.Int(), float64(3), true},
		{"int rejects fraction", schema.Int(), 3.5, false},
		{"int rejects string", schema.Int(), "3", false},
		{"float accepts int", schema.Float(), 2, true},
		{"bool", schema.Bool(), true, true},
		{"string rejects nil", schema.String(), nil, false},
		{"slice of strings", schema.Slice(schema.String()), []any{"a", "b"}, true},
		{"slice element mismatch", schema.Slice(schema.String()), []any{"a", 1}, false},
		{"slice rejects nil", schema.Slice(schema.Int()), nil, false},
		{"optional accepts nil", schema.Optional(schema.Int()), nil, true},
		{"any accepts nil", schema.Any(), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Validate(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSchema_ValidateReportsEveryKeyInOrder(t *testing.T) {
	s, err := schema.Parse(map[string]string{
		"ordersFailed":  "int",
		"cartsCanceled": "int",
		"coupon":        "string?",
		"tags":          "[string]",
	})
	require.NoError(t, err)

	err = s.Validate(map[string]any{"cartsCanceled": "zero", "extra": true})
	require.Error(t, err)

	fields := schema.FieldErrors(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "cartsCanceled", fields[0].Key)
	assert.Equal(t, "ordersFailed", fields[1].Key)
	assert.Equal(t, "required", fields[1].Reason)
	assert.Equal(t, "tags", fields[2].Key)
	assert.Contains(t, err.Error(), "3 validation errors")

	ctx := domain.NewContext(map[string]any{"cartsCanceled": 0, "ordersFailed": 1, "tags": []any{}})
	assert.NoError(t, s.ValidateContext(ctx))
}

func TestSchema_Decoding(t *testing.T) {
	var doc struct {
		Schema schema.Schema `yaml:"contextSchema"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("contextSchema: {n: int, tags: '[string]'}"), &doc))
	assert.Equal(t, "{n: int, tags: [string]}", doc.Schema.String())

	data, err := json.Marshal(doc.Schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":"int","tags":"[string]"}`, string(data))

	var back schema.Schema
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc.Schema.Keys(), back.Keys())

	err = yaml.Unmarshal([]byte("contextSchema: {n: decimal}"), &doc)
	assert.ErrorContains(t, err, `key "n"`)
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, schema.FieldErrors(assert.AnError))
}
