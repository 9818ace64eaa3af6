package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	tr := pendingTrade()
	tr.ID = "01HX2Y3Z4A5B6C7D8E9F0GHJKM"
	tr.Outcome = Profit
	tr.RealizedPL = Float(150)
	tr.RMultiple = 1.5
	tr.Checklist = []int{0, 2}
	tr.Notes = "clean retest"

	result := FormatTradeOrg(tr, nil)

	assert.Contains(t, result, "** BUY EUR/USD PROFIT (9F0GHJKM)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":ID: 01HX2Y3Z4A5B6C7D8E9F0GHJKM")
	assert.Contains(t, result, ":ENTRY_PRICE: 1.10000")
	assert.Contains(t, result, ":STOP_LOSS: 1.09500")
	assert.Contains(t, result, ":TAKE_PROFIT: 1.11000")
	assert.Contains(t, result, ":PLANNED_RR: 2.00")
	assert.Contains(t, result, ":TRADE_TIME: 2024-03-01T09:00:00Z")
	assert.Contains(t, result, ":REALIZED_PL: 150.00")
	assert.Contains(t, result, ":R_MULTIPLE: 1.50")
	assert.Contains(t, result, ":RATING: 4/5")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, "- [X] "+DefaultChecklist[0])
	assert.Contains(t, result, "- [ ] "+DefaultChecklist[1])
	assert.Contains(t, result, "*** Notes\nclean retest")
}

func TestFormatTradeOrgPending(t *testing.T) {
	t.Parallel()

	tr := pendingTrade()
	tr.StopLoss = 0
	result := FormatTradeOrg(tr, nil)

	assert.Contains(t, result, "(T1)")
	assert.NotContains(t, result, ":REALIZED_PL:")
	assert.NotContains(t, result, ":STOP_LOSS:")
	assert.NotContains(t, result, ":PLANNED_RR:")
}

func TestFormatTradeOrgConfiguredChecklist(t *testing.T) {
	t.Parallel()

	labels := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	tr := pendingTrade()
	tr.Checklist = []int{1, 7}

	result := FormatTradeOrg(tr, labels)

	assert.Contains(t, result, "- [ ] A\n")
	assert.Contains(t, result, "- [X] B\n")
	assert.Contains(t, result, "- [X] H\n")
	assert.NotContains(t, result, DefaultChecklist[0])
	assert.Equal(t, len(labels), strings.Count(result, "- ["))
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	a := pendingTrade()
	b := pendingTrade()
	b.ID = "T2"

	result := FormatTradesOrg([]Trade{a, b}, nil)
	assert.Equal(t, 2, strings.Count(result, ":PROPERTIES:"))
	assert.Contains(t, result, "\n\n\n** BUY EUR/USD PENDING (T2)")
	assert.Equal(t, "", FormatTradesOrg(nil, nil))
}
