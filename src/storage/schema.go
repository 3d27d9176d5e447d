package storage

// schemaSQL creates the seven core tables and their indexes. Every statement
// is idempotent so bootstrap can run on each open, including for :memory:
// instances.
const schemaSQL = `
-- Core transactions table (unified across all sources)
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	source_id TEXT NOT NULL,
	type TEXT NOT NULL,
	created_at TEXT NOT NULL,
	account_id TEXT,
	raw_data TEXT NOT NULL,
	UNIQUE(source, source_id)
);

CREATE TABLE IF NOT EXISTS option_orders (
	id TEXT PRIMARY KEY,
	chain_symbol TEXT NOT NULL,
	opening_strategy TEXT,
	closing_strategy TEXT,
	direction TEXT,
	premium REAL,
	net_amount REAL,
	FOREIGN KEY (id) REFERENCES transactions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS option_legs (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	strike_price REAL NOT NULL,
	expiration_date TEXT NOT NULL,
	option_type TEXT NOT NULL,
	side TEXT NOT NULL,
	position_effect TEXT NOT NULL,
	ratio_quantity INTEGER NOT NULL,
	FOREIGN KEY (order_id) REFERENCES option_orders(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	leg_id TEXT,
	price REAL NOT NULL,
	quantity REAL NOT NULL,
	timestamp TEXT NOT NULL,
	settlement_date TEXT,
	FOREIGN KEY (order_id) REFERENCES transactions(id) ON DELETE CASCADE,
	FOREIGN KEY (leg_id) REFERENCES option_legs(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS stock_orders (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL,
	average_price REAL,
	FOREIGN KEY (id) REFERENCES transactions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS positions (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	account_id TEXT,
	symbol TEXT NOT NULL,
	quantity REAL NOT NULL,
	cost_basis REAL,
	current_price REAL,
	unrealized_pnl REAL,
	last_updated TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transaction_links (
	id TEXT PRIMARY KEY,
	opening_transaction_id TEXT NOT NULL,
	closing_transaction_id TEXT NOT NULL,
	link_type TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (opening_transaction_id) REFERENCES transactions(id) ON DELETE CASCADE,
	FOREIGN KEY (closing_transaction_id) REFERENCES transactions(id) ON DELETE CASCADE
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_transactions_source ON transactions(source);
CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
CREATE INDEX IF NOT EXISTS idx_option_legs_order_id ON option_legs(order_id);
CREATE INDEX IF NOT EXISTS idx_executions_order_id ON executions(order_id);
CREATE INDEX IF NOT EXISTS idx_positions_source ON positions(source);
CREATE INDEX IF NOT EXISTS idx_positions_symbol ON positions(symbol);
CREATE INDEX IF NOT EXISTS idx_positions_account_id ON positions(account_id);
CREATE INDEX IF NOT EXISTS idx_transaction_links_opening ON transaction_links(opening_transaction_id);
CREATE INDEX IF NOT EXISTS idx_transaction_links_closing ON transaction_links(closing_transaction_id);
`
