package stats

import (
	"bytes"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

var orgFuncs = template.FuncMap{
	"money": fixed,
	"pct":   func(x float64) string { return fixed(x) + "%" },
}

func fixed(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

var orgTemplate = template.Must(template.New("stats").Funcs(orgFuncs).Parse(statsOrgTemplate))

type orgView struct {
	Snapshot
	Generated time.Time
}

// FormatOrg renders s as an org-mode section.
func FormatOrg(s Snapshot, generated time.Time) (string, error) {
	var buf bytes.Buffer
	if err := orgTemplate.Execute(&buf, orgView{Snapshot: s, Generated: generated}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const statsOrgTemplate = `* STATS {{.Generated.Format "2006-01-02"}}
:PROPERTIES:
:TRADES:       {{.TotalTrades}}
:CLOSED:       {{.ClosedTrades}}
:OPEN:         {{.OpenTrades}}
:BREAKEVEN:    {{.BreakevenTrades}}
:WINS:         {{.Wins}}
:LOSSES:       {{.Losses}}
:WIN_RATE:     {{pct .WinRate}}
:NET_PL:       {{money .TotalPL}}
:PROFIT_FAC:   {{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}--{{end}}
:EXPECTANCY:   {{money .Expectancy}}
:AVG_R:        {{printf "%.2f" .AvgRMultiple}}
:START_BAL:    {{money .StartingBalance}}
:MAX_DD_PCT:   {{pct .MaxDrawdownPct}}
:MAX_DD:       {{money .MaxDrawdownAmount}}
:DISCIPLINE:   {{pct .DisciplineScore}}
:FOLLOWED:     {{pct .FollowedPlanRate}}
:CREATED:      [{{.Generated.Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:        *{{money .TotalPL}}*
- This Month:     *{{money .MonthPL}}*
- Avg Win:        *{{money .AvgWin}}*
- Avg Loss:       *{{money .AvgLoss}}*
- Best Trade:     *{{money .BestTrade}}*
- Worst Trade:    *{{money .WorstTrade}}*
- Streaks:        *{{.MaxWinStreak}}W / {{.MaxLossStreak}}L (current {{.CurrentStreak}})*
{{- if .Monthly }}

** Monthly P/L
| Month   | Trades | P/L |
|---------+--------+-----|
{{- range .Monthly }}
| {{.Month}} | {{.Trades}} | {{money .PL}} |
{{- end }}
{{- end }}
{{- if .TopPairs }}

** Pairs
| Symbol | Trades | Wins | Win % | P/L |
|--------+--------+------+-------+-----|
{{- range .TopPairs }}
| {{.Symbol}} | {{.Trades}} | {{.Wins}} | {{pct .WinRate}} | {{money .PL}} |
{{- end }}
{{- end }}
`
