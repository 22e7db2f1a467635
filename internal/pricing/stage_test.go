package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

func TestBuildStages_SkipsMissingSources(t *testing.T) {
	stages := buildStages(DefaultLadder(), nil, activeSource())
	require.Len(t, stages, 1)
	assert.Equal(t, model.StageActive, stages[0].name)
	assert.Equal(t, DefaultActiveMin, stages[0].minCount)
}

func TestBuildStages_Order(t *testing.T) {
	stages := buildStages(DefaultLadder(), soldSource(), activeSource())
	require.Len(t, stages, 3)
	for i, want := range model.AllStages() {
		assert.Equal(t, want, stages[i].name)
	}
	assert.False(t, stages[0].eligible(request{series: "X"}))
	assert.True(t, stages[0].eligible(request{series: "X", year: 1990}))
	assert.True(t, stages[1].eligible(request{series: "X"}))
}

func TestFloorValue(t *testing.T) {
	d := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

	got := floorValue(model.PriceValue{Soft: d(50), Typical: d(40), Slabs: d(30)})
	assert.True(t, got.Typical.Decimal.Equal(decimal.NewFromInt(50)))
	assert.True(t, got.Slabs.Decimal.Equal(decimal.NewFromInt(50)))

	got = floorValue(model.PriceValue{Soft: d(10), Typical: d(20)})
	assert.True(t, got.Typical.Decimal.Equal(decimal.NewFromInt(20)))
	assert.False(t, got.Slabs.Valid)
}

func TestSoldResult_SlabsOnly(t *testing.T) {
	slabs := []model.ClassifiedListing{
		{Listing: model.Listing{Title: "a", Price: decimal.NewFromInt(100)}, Category: model.CategorySlab},
		{Listing: model.Listing{Title: "b", Price: decimal.NewFromInt(200)}, Category: model.CategorySlab},
		{Listing: model.Listing{Title: "c", Price: decimal.NewFromInt(300)}, Category: model.CategorySlab},
	}
	res := soldResult(nil, slabs)
	assert.Equal(t, 3, res.count)
	assert.False(t, res.value.Typical.Valid)
	assert.True(t, res.value.Slabs.Decimal.Equal(decimal.NewFromInt(200)))
	assert.Nil(t, res.imageURL)
}
