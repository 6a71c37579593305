package sqlite

import "database/sql"

// schema sets up the database. Money columns hold integer cents.
// Child rows are read back in rowid order, which is insertion order.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS outings (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    date INTEGER NOT NULL,
    created_by TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    outing_id TEXT NOT NULL,
    name TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (outing_id) REFERENCES outings(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    outing_id TEXT NOT NULL,
    vendor_name TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    subtotal INTEGER NOT NULL,
    tax INTEGER NOT NULL,
    tip INTEGER NOT NULL,
    total INTEGER NOT NULL,
    paid_by TEXT NOT NULL,
    split_method TEXT NOT NULL,
    processed_at INTEGER NOT NULL,
    FOREIGN KEY (outing_id) REFERENCES outings(id) ON DELETE CASCADE,
    FOREIGN KEY (paid_by) REFERENCES people(id)
);

CREATE TABLE IF NOT EXISTS receipt_items (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL,
    name TEXT NOT NULL,
    price INTEGER NOT NULL,
    quantity INTEGER NOT NULL,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_assignees (
    item_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    PRIMARY KEY (item_id, person_id),
    FOREIGN KEY (item_id) REFERENCES receipt_items(id) ON DELETE CASCADE,
    FOREIGN KEY (person_id) REFERENCES people(id)
);

CREATE TABLE IF NOT EXISTS receipt_people (
    receipt_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    PRIMARY KEY (receipt_id, person_id),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE,
    FOREIGN KEY (person_id) REFERENCES people(id)
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    outing_id TEXT NOT NULL,
    from_person TEXT NOT NULL,
    to_person TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    paid INTEGER NOT NULL DEFAULT 0,
    paid_at INTEGER,
    FOREIGN KEY (outing_id) REFERENCES outings(id) ON DELETE CASCADE,
    FOREIGN KEY (from_person) REFERENCES people(id),
    FOREIGN KEY (to_person) REFERENCES people(id)
);

CREATE INDEX IF NOT EXISTS idx_outings_created_by ON outings(created_by);
CREATE INDEX IF NOT EXISTS idx_people_outing_id ON people(outing_id);
CREATE INDEX IF NOT EXISTS idx_receipts_outing_id ON receipts(outing_id);
CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt_id ON receipt_items(receipt_id);
CREATE INDEX IF NOT EXISTS idx_item_assignees_item_id ON item_assignees(item_id);
CREATE INDEX IF NOT EXISTS idx_receipt_people_receipt_id ON receipt_people(receipt_id);
CREATE INDEX IF NOT EXISTS idx_settlements_outing_id ON settlements(outing_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
