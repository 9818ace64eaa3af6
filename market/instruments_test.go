package market

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsWellFormed(t *testing.T) {
	t.Parallel()

	for sym, inst := range Instruments {
		assert.Equal(t, sym, inst.Symbol)
		assert.NoError(t, inst.Validate(), sym)
		assert.NotEmpty(t, inst.QuoteCurrency, sym)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	eu, ok := Lookup("EUR/USD")
	require.True(t, ok)
	assert.Equal(t, 0.0001, eu.PipSize)
	assert.Equal(t, 100_000.0, eu.ContractSize)
	assert.Equal(t, Forex, eu.Category)

	_, ok = Lookup("NOPE")
	assert.False(t, ok)
}

func TestSymbolsSorted(t *testing.T) {
	t.Parallel()

	syms := Symbols()
	assert.Len(t, syms, len(Instruments))
	assert.True(t, sort.StringsAreSorted(syms))
}

func TestByCategory(t *testing.T) {
	t.Parallel()

	metals := ByCategory(Metal)
	require.Len(t, metals, 2)
	assert.Equal(t, "XAG/USD", metals[0].Symbol)
	assert.Equal(t, "XAU/USD", metals[1].Symbol)
}

func TestValidateMalformed(t *testing.T) {
	t.Parallel()

	assert.Error(t, Instrument{}.Validate())
	assert.Error(t, Instrument{Symbol: "X", ContractSize: 1}.Validate())
	assert.Error(t, Instrument{Symbol: "X", PipSize: 1}.Validate())
}
