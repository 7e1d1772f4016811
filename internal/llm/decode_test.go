package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adel-hamdan/purchases-tracker/internal/common"
)

func TestDecodeRecords(t *testing.T) {
	raw := []byte(`[
		{"product":"كولا","price":23,"notes":"بارد"},
		{"product":" شاي ","price":"15.5"},
		{"product":"خبز","price":"5","notes":"  "}
	]`)

	records, err := DecodeRecords(raw)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "كولا", records[0].Product)
	assert.Equal(t, 23.0, *records[0].Price)
	assert.Equal(t, "بارد", records[0].Notes)

	// String prices and surrounding whitespace are tolerated.
	assert.Equal(t, "شاي", records[1].Product)
	assert.Equal(t, 15.5, *records[1].Price)
	assert.Equal(t, "", records[1].Notes)

	assert.Equal(t, "", records[2].Notes)
}

func TestDecodeRecords_WholeBatchFails(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty array", `[]`},
		{"empty product", `[{"product":"كولا","price":23},{"product":"  ","price":5}]`},
		{"non numeric price", `[{"product":"كولا","price":"abc"}]`},
		{"not an array", `{"product":"كولا","price":23}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrExtraction))
		})
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildRecordsJSONSchema()

	valid := [][]byte{
		[]byte(`[{"product":"كولا","price":23}]`),
		[]byte(`[{"product":"كولا","price":"23.5","notes":"بارد"}]`),
	}
	for _, raw := range valid {
		assert.NoError(t, ValidateJSONAgainstSchema(schema, raw), "input %s", raw)
	}

	invalid := [][]byte{
		[]byte(`[]`),
		[]byte(`[{"price":23}]`),
		[]byte(`[{"product":"","price":23}]`),
		[]byte(`[{"product":"كولا","price":"not a number"}]`),
		[]byte(`[{"product":"كولا","price":23,"extra":true}]`),
	}
	for _, raw := range invalid {
		assert.Error(t, ValidateJSONAgainstSchema(schema, raw), "input %s", raw)
	}
}
