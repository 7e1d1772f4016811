package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adel-hamdan/purchases-tracker/internal/entity"
)

func TestParseBatch_AllLinesParsed(t *testing.T) {
	p := newTestParser(t)

	res := p.ParseBatch("كولا ٢٣\nشاي ١٥\nخبز ٥")
	require.True(t, res.Complete())
	require.Len(t, res.Records, 3)
	assert.Equal(t, "كولا", res.Records[0].Product)
	assert.Equal(t, 23.0, *res.Records[0].Price)
	assert.Equal(t, "شاي", res.Records[1].Product)
	assert.Equal(t, "خبز", res.Records[2].Product)
}

func TestParseBatch_MixedLines(t *testing.T) {
	p := newTestParser(t)

	res := p.ParseBatch("كولا 23\nتفاح\n\nريال")
	assert.False(t, res.Complete())
	require.Len(t, res.Records, 1)
	assert.Equal(t, []string{"تفاح", "ريال"}, res.Unparsed)
}

func TestParseBatch_Empty(t *testing.T) {
	p := newTestParser(t)

	res := p.ParseBatch("  \n\n ")
	assert.False(t, res.Complete())
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Unparsed)
}

func TestMergeDedup(t *testing.T) {
	parsed := []entity.ParsedRecord{
		{Product: "كولا", Price: entity.Float64(23)},
	}
	ai := []entity.ParsedRecord{
		{Product: "كولا", Price: entity.Float64(23), Notes: "بارد"}, // dup of parsed
		{Product: "شاي", Price: entity.Float64(15)},
		{Product: "شاي", Price: entity.Float64(15)}, // dup within ai
		{Product: "شاي", Price: entity.Float64(20)}, // same product, new price
	}

	merged := MergeDedup(parsed, ai)
	require.Len(t, merged, 3)
	assert.Equal(t, "كولا", merged[0].Product)
	assert.Equal(t, 15.0, *merged[1].Price)
	assert.Equal(t, 20.0, *merged[2].Price)
}

func TestMergeDedup_EmptyInputs(t *testing.T) {
	assert.Empty(t, MergeDedup(nil, nil))

	ai := []entity.ParsedRecord{{Product: "شاي", Price: entity.Float64(15)}}
	assert.Len(t, MergeDedup(nil, ai), 1)
}
