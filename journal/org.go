package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a Trade as an Org-mode block suitable for pasting into a journal.
// Structured facts go in the PROPERTIES drawer; the checklist and notes follow as text.
// checklist holds the labels t.Checklist indexes into; nil means DefaultChecklist.
func FormatTradeOrg(t Trade, checklist []string) string {
	if len(checklist) == 0 {
		checklist = DefaultChecklist
	}

	heading := fmt.Sprintf("** %s %s %s (%s)", t.Direction, t.Symbol, t.Outcome, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", t.Direction))
	b.WriteString(fmt.Sprintf(":LOTS: %.2f\n", t.Lots))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.5f\n", t.EntryPrice))
	if t.StopLoss > 0 {
		b.WriteString(fmt.Sprintf(":STOP_LOSS: %.5f\n", t.StopLoss))
	}
	if t.TakeProfit > 0 {
		b.WriteString(fmt.Sprintf(":TAKE_PROFIT: %.5f\n", t.TakeProfit))
	}
	if rr := t.PlannedRR(); rr > 0 {
		b.WriteString(fmt.Sprintf(":PLANNED_RR: %.2f\n", rr))
	}
	b.WriteString(fmt.Sprintf(":TRADE_TIME: %s\n", t.TradeTime.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":OUTCOME: %s\n", t.Outcome))
	if t.RealizedPL != nil {
		b.WriteString(fmt.Sprintf(":REALIZED_PL: %.2f\n", *t.RealizedPL))
		b.WriteString(fmt.Sprintf(":R_MULTIPLE: %.2f\n", t.RMultiple))
	}
	b.WriteString(fmt.Sprintf(":RATING: %d/5\n", t.Rating))
	b.WriteString(fmt.Sprintf(":FOLLOWED_PLAN: %t\n", t.FollowedPlan))
	b.WriteString(":END:\n")
	b.WriteString("\n")

	b.WriteString("*** Checklist\n")
	done := make(map[int]bool, len(t.Checklist))
	for _, i := range t.Checklist {
		done[i] = true
	}
	for i, item := range checklist {
		mark := " "
		if done[i] {
			mark = "X"
		}
		b.WriteString(fmt.Sprintf("- [%s] %s\n", mark, item))
	}
	b.WriteString("\n*** Notes\n")
	if t.Notes == "" {
		b.WriteString("- \n")
	} else {
		b.WriteString(t.Notes)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade, checklist []string) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t, checklist))
	}
	return b.String()
}

// shortID keeps the random tail; a ULID prefix is only the timestamp.
func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
