package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"id", "symbol", "direction", "entry_price", "stop_loss", "take_profit", "lots", "outcome",
	"realized_pl", "rating", "checklist", "trade_time", "r_multiple", "followed_plan", "notes",
}

// WriteCSV writes trades with a header row. Checklist indices are ';' separated
// and a pending P/L is left empty.
func WriteCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range trades {
		pl := ""
		if t.RealizedPL != nil {
			pl = f(*t.RealizedPL)
		}
		items := make([]string, len(t.Checklist))
		for i, c := range t.Checklist {
			items[i] = strconv.Itoa(c)
		}
		err := cw.Write([]string{
			t.ID,
			t.Symbol,
			string(t.Direction),
			f(t.EntryPrice),
			f(t.StopLoss),
			f(t.TakeProfit),
			f(t.Lots),
			string(t.Outcome),
			pl,
			strconv.Itoa(t.Rating),
			strings.Join(items, ";"),
			t.TradeTime.UTC().Format(time.RFC3339),
			f(t.RMultiple),
			strconv.FormatBool(t.FollowedPlan),
			t.Notes,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV. Columns are matched by header name,
// so extra or reordered columns are fine.
func ReadCSV(r io.Reader) ([]Trade, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, need := range []string{"symbol", "direction", "entry_price"} {
		if _, ok := col[need]; !ok {
			return nil, fmt.Errorf("missing column %q", need)
		}
	}

	var out []Trade
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseRow(rec, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseRow(rec []string, col map[string]int) (Trade, error) {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(name string) (float64, error) {
		s := get(name)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return v, nil
	}

	t := Trade{
		ID:        get("id"),
		Symbol:    get("symbol"),
		Direction: Direction(strings.ToUpper(get("direction"))),
		Outcome:   Outcome(strings.ToUpper(get("outcome"))),
		Notes:     get("notes"),
	}
	var err error
	if t.EntryPrice, err = num("entry_price"); err != nil {
		return Trade{}, err
	}
	if t.StopLoss, err = num("stop_loss"); err != nil {
		return Trade{}, err
	}
	if t.TakeProfit, err = num("take_profit"); err != nil {
		return Trade{}, err
	}
	if t.Lots, err = num("lots"); err != nil {
		return Trade{}, err
	}
	if t.RMultiple, err = num("r_multiple"); err != nil {
		return Trade{}, err
	}
	if get("realized_pl") != "" {
		pl, err := num("realized_pl")
		if err != nil {
			return Trade{}, err
		}
		t.RealizedPL = Float(pl)
	}
	if s := get("rating"); s != "" {
		if t.Rating, err = strconv.Atoi(s); err != nil {
			return Trade{}, fmt.Errorf("rating: %w", err)
		}
	}
	if s := get("checklist"); s != "" {
		for _, part := range strings.Split(s, ";") {
			i, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return Trade{}, fmt.Errorf("checklist: %w", err)
			}
			t.Checklist = append(t.Checklist, i)
		}
	}
	if s := get("trade_time"); s != "" {
		if t.TradeTime, err = time.Parse(time.RFC3339, s); err != nil {
			return Trade{}, fmt.Errorf("trade_time: %w", err)
		}
	}
	if s := get("followed_plan"); s != "" {
		if t.FollowedPlan, err = strconv.ParseBool(s); err != nil {
			return Trade{}, fmt.Errorf("followed_plan: %w", err)
		}
	}
	if t.Outcome == "" {
		t.Outcome = Pending
	}
	return t, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
