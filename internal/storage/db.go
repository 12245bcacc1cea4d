package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"prozon/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  path TEXT NOT NULL,
  filename TEXT NOT NULL,
  source TEXT NOT NULL,
  hash TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'fetched',
  error TEXT NOT NULL DEFAULT '',
  receivedAt TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  documentId INTEGER NOT NULL UNIQUE,
  numeroCommande TEXT,
  refCommande TEXT,
  dateLivraison TEXT,
  orderJson TEXT NOT NULL,
  itemCount INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  documentId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// RegisterDocument inserts a document row keyed by content hash. A hash
// already present is not re-registered; the existing row is returned with
// inserted=false.
func (d *DB) RegisterDocument(path, filename, source, hash, receivedAt string) (internal.DocumentRow, bool, error) {
	existing, err := d.GetDocumentByHash(hash)
	if err != nil {
		return internal.DocumentRow{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	_, err = d.conn.Exec(`
INSERT INTO documents (path, filename, source, hash, receivedAt)
VALUES (?, ?, ?, ?, ?)
`, path, filename, source, hash, receivedAt)
	if err != nil {
		return internal.DocumentRow{}, false, err
	}

	row, err := d.GetDocumentByHash(hash)
	if err != nil {
		return internal.DocumentRow{}, false, err
	}
	if row == nil {
		return internal.DocumentRow{}, false, errors.New("failed to register document")
	}
	return *row, true, nil
}

func (d *DB) GetDocumentByHash(hash string) (*internal.DocumentRow, error) {
	var row internal.DocumentRow
	err := d.conn.QueryRow(`
SELECT id, path, filename, source, hash, status, error, COALESCE(receivedAt, '')
FROM documents WHERE hash = ?
`, hash).Scan(&row.ID, &row.Path, &row.Filename, &row.Source, &row.Hash, &row.Status, &row.Error, &row.ReceivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListDocumentsByStatus(status string, limit int) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`
SELECT id, path, filename, source, hash, status, error, COALESCE(receivedAt, '')
FROM documents WHERE status = ? ORDER BY createdAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		var row internal.DocumentRow
		if err := rows.Scan(&row.ID, &row.Path, &row.Filename, &row.Source, &row.Hash, &row.Status, &row.Error, &row.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateDocumentStatus(documentID int, status, errorText string) error {
	_, err := d.conn.Exec(`
UPDATE documents SET status = ?, error = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, status, errorText, documentID)
	return err
}

// SaveOrder stores the enriched order snapshot for a document, replacing
// any earlier snapshot from a previous processing pass.
func (d *DB) SaveOrder(documentID int, order internal.Order) error {
	blob, err := json.Marshal(order)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`
INSERT INTO orders (documentId, numeroCommande, refCommande, dateLivraison, orderJson, itemCount)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(documentId) DO UPDATE SET
  numeroCommande=excluded.numeroCommande,
  refCommande=excluded.refCommande,
  dateLivraison=excluded.dateLivraison,
  orderJson=excluded.orderJson,
  itemCount=excluded.itemCount
`, documentID, order.Number, order.Reference, order.Date, string(blob), len(order.Items))
	return err
}

type StoredOrder struct {
	DocumentID int
	Filename   string
	Order      internal.Order
}

// ListOrdersByDocumentStatus returns stored orders whose document carries
// the given status, oldest first.
func (d *DB) ListOrdersByDocumentStatus(status string, limit int) ([]StoredOrder, error) {
	rows, err := d.conn.Query(`
SELECT o.documentId, d.filename, o.orderJson
FROM orders o
JOIN documents d ON d.id = o.documentId
WHERE d.status = ?
ORDER BY o.createdAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredOrder
	for rows.Next() {
		var stored StoredOrder
		var blob string
		if err := rows.Scan(&stored.DocumentID, &stored.Filename, &blob); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(blob), &stored.Order); err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, documentID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, documentId, timingsJson, countsJson) VALUES (?, ?, ?, ?)
`, traceID, documentID, string(timingsJSON), string(countsJSON))
	return err
}
