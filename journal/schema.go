// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL DEFAULT 0,
	take_profit REAL NOT NULL DEFAULT 0,
	lots REAL NOT NULL DEFAULT 0,
	outcome TEXT NOT NULL,
	realized_pl REAL,
	rating INTEGER NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	checklist TEXT NOT NULL DEFAULT '[]',
	trade_time DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	r_multiple REAL NOT NULL DEFAULT 0,
	followed_plan INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_trades_trade_time ON trades(trade_time);

CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	starting_balance REAL NOT NULL,
	current_balance REAL NOT NULL,
	currency TEXT NOT NULL,
	default_risk_percent REAL NOT NULL,
	default_lots REAL NOT NULL,
	leverage REAL NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const tradeColumns = `id, symbol, direction, entry_price, stop_loss, take_profit, lots, outcome,
	realized_pl, rating, notes, checklist, trade_time, created_at, updated_at, r_multiple, followed_plan`
