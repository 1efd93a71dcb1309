package recognizer

import (
	"encoding/json"
	"testing"

	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleInt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FlexibleInt
		wantErr bool
	}{
		{name: "number", input: `3`, want: FlexibleInt{Value: 3, Valid: true}},
		{name: "quoted number", input: `"12"`, want: FlexibleInt{Value: 12, Valid: true}},
		{name: "padded string", input: `" 7 "`, want: FlexibleInt{Value: 7, Valid: true}},
		{name: "whole float", input: `4.0`, want: FlexibleInt{Value: 4, Valid: true}},
		{name: "null", input: `null`, want: FlexibleInt{}},
		{name: "empty string", input: `""`, want: FlexibleInt{}},
		{name: "fraction", input: `2.5`, wantErr: true},
		{name: "name instead of id", input: `"Tanaka"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexibleInt
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		res, err := ParseResponse(`{"success":true,"salesPersonId":3,"deliveryDate":"2025-03-10","taxRateId":1,
			"details":[{"productId":5,"quantity":2,"unitPrice":1200},{"productId":"6","quantity":"1"}]}`)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, int64(3), res.SalesPersonID)
		assert.Equal(t, int64(1), res.TaxRateID)
		assert.True(t, types.SameDate(types.NewCalendarDate(2025, 3, 10), res.DeliveryDate.Time))
		require.Len(t, res.Lines, 2)
		assert.Equal(t, int64(1200), res.Lines[0].UnitPrice)
		assert.Equal(t, int64(6), res.Lines[1].ProductID)
		assert.Zero(t, res.Lines[1].UnitPrice)
		assert.NotEmpty(t, res.Raw)
	})

	t.Run("fenced json", func(t *testing.T) {
		res, err := ParseResponse("```json\n{\"success\":true,\"salesPersonId\":\"2\",\"deliveryDate\":\"2025-01-05\",\"taxRateId\":1,\"details\":[{\"productId\":1,\"quantity\":1}]}\n```")
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.SalesPersonID)
	})

	t.Run("prose around json", func(t *testing.T) {
		res, err := ParseResponse(`Here is the result: {"success":false,"failureReason":"blurred"} hope it helps`)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "blurred", res.FailureReason)
	})

	t.Run("unmatched products are dropped", func(t *testing.T) {
		res, err := ParseResponse(`{"success":true,"salesPersonId":1,"deliveryDate":"2025-01-05","taxRateId":1,
			"details":[{"productId":null,"quantity":3},{"productId":4,"quantity":1}]}`)
		require.NoError(t, err)
		require.Len(t, res.Lines, 1)
		assert.Equal(t, int64(4), res.Lines[0].ProductID)
	})

	failures := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `I could not read this`},
		{name: "unknown sales person", input: `{"success":true,"salesPersonId":null,"deliveryDate":"2025-01-05","taxRateId":1,"details":[{"productId":1,"quantity":1}]}`},
		{name: "non integer id", input: `{"success":true,"salesPersonId":"Sato","deliveryDate":"2025-01-05","taxRateId":1,"details":[{"productId":1,"quantity":1}]}`},
		{name: "bad date", input: `{"success":true,"salesPersonId":1,"deliveryDate":"March 5","taxRateId":1,"details":[{"productId":1,"quantity":1}]}`},
		{name: "zero quantity", input: `{"success":true,"salesPersonId":1,"deliveryDate":"2025-01-05","taxRateId":1,"details":[{"productId":1,"quantity":0}]}`},
		{name: "no lines", input: `{"success":true,"salesPersonId":1,"deliveryDate":"2025-01-05","taxRateId":1,"details":[]}`},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.input)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("image-a"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint([]byte("image-a")))
	assert.NotEqual(t, a, Fingerprint([]byte("image-b")))
}

func TestResultSchema(t *testing.T) {
	schema, err := resultSchema()
	require.NoError(t, err)
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "salesPersonId")
	assert.Contains(t, props, "details")
	sp := props["salesPersonId"].(map[string]any)
	assert.Equal(t, "integer", sp["type"])
}
