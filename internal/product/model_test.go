package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice(t *testing.T) {
	p := Product{BasePrice: decimal.NewFromInt(500)}
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(500)))

	offer := decimal.NewFromInt(450)
	p.OfferPrice = &offer
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(450)))
}

func TestFindVariant(t *testing.T) {
	p := Product{
		Variants: []Variant{
			{Color: "Red", Size: "M", Stock: 3},
			{Color: "Black", Size: "XL", Stock: 1},
		},
	}

	v := p.FindVariant("red", "m")
	require.NotNil(t, v)
	assert.Equal(t, 3, v.Stock)

	assert.Nil(t, p.FindVariant("Red", "XL"))
	assert.Nil(t, p.FindVariant("Blue", "M"))
}
