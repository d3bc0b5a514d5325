package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lnd-gateway/internal/gateway/models"
)

// ============================================================
// SQLite Repository
// ============================================================

// ErrNotFound signals a missing row.
var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies the schema migration.
func (r *Repository) Init(migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.Exec(string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// ============================================================
// Nodes
// ============================================================

// SaveNode persists a node connection, removing any prior rows for the
// same host so the table mirrors the one-session-per-host rule.
func (r *Repository) SaveNode(ctx context.Context, n models.Node) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE host = ?`, n.Host); err != nil {
		return fmt.Errorf("delete stale node rows: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO nodes (token, host, cert, macaroon, pubkey)
        VALUES (?, ?, ?, ?, ?)
    `, n.Token, n.Host, n.Cert, n.Macaroon, n.Pubkey)
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	return nil
}

// ListNodes returns every persisted node record, for startup reconnect.
func (r *Repository) ListNodes(ctx context.Context) ([]models.Node, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT token, host, cert, macaroon, pubkey, created_at
        FROM nodes
        ORDER BY created_at
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []models.Node
	for rows.Next() {
		var n models.Node
		if err := rows.Scan(&n.Token, &n.Host, &n.Cert, &n.Macaroon, &n.Pubkey, &n.CreatedAt); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// ============================================================
// Invoices
// ============================================================

func (r *Repository) SaveInvoice(ctx context.Context, inv models.Invoice) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO invoices (hash, payment_request, amount, memo, settled, creation_date, settle_date, expiry)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(hash) DO UPDATE SET
            settled = excluded.settled,
            settle_date = excluded.settle_date
    `, inv.Hash, inv.PaymentRequest, inv.Amount, inv.Memo, inv.Settled, inv.CreationDate, inv.SettleDate, inv.Expiry)
	if err != nil {
		return fmt.Errorf("save invoice: %w", err)
	}
	return nil
}

func (r *Repository) UpdateInvoice(ctx context.Context, hash string, settled bool, settleDate int64) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE invoices SET settled = ?, settle_date = ? WHERE hash = ?
    `, settled, settleDate, hash)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

func (r *Repository) GetInvoice(ctx context.Context, hash string) (*models.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT hash, payment_request, amount, memo, settled, creation_date, settle_date, expiry
        FROM invoices
        WHERE hash = ?
    `, hash)

	var inv models.Invoice
	if err := row.Scan(&inv.Hash, &inv.PaymentRequest, &inv.Amount, &inv.Memo, &inv.Settled, &inv.CreationDate, &inv.SettleDate, &inv.Expiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *Repository) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT hash, payment_request, amount, memo, settled, creation_date, settle_date, expiry
        FROM invoices
        ORDER BY creation_date DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.Hash, &inv.PaymentRequest, &inv.Amount, &inv.Memo, &inv.Settled, &inv.CreationDate, &inv.SettleDate, &inv.Expiry); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// ============================================================
// Payments
// ============================================================

func (r *Repository) SavePayment(ctx context.Context, p models.Payment) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO payments (payment_hash, payment_request, destination, amount, fee, status, description, creation_date)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(payment_hash) DO UPDATE SET
            status = excluded.status,
            fee = excluded.fee
    `, p.PaymentHash, p.PaymentRequest, p.Destination, p.Amount, p.Fee, p.Status, p.Description, p.CreationDate)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePayment(ctx context.Context, hash string, status int, fee int64) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE payments SET status = ?, fee = ? WHERE payment_hash = ?
    `, status, fee, hash)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

func (r *Repository) GetPayment(ctx context.Context, hash string) (*models.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT payment_hash, payment_request, destination, amount, fee, status, description, creation_date
        FROM payments
        WHERE payment_hash = ?
    `, hash)

	var p models.Payment
	if err := row.Scan(&p.PaymentHash, &p.PaymentRequest, &p.Destination, &p.Amount, &p.Fee, &p.Status, &p.Description, &p.CreationDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListPayments(ctx context.Context) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT payment_hash, payment_request, destination, amount, fee, status, description, creation_date
        FROM payments
        ORDER BY creation_date DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.PaymentHash, &p.PaymentRequest, &p.Destination, &p.Amount, &p.Fee, &p.Status, &p.Description, &p.CreationDate); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ============================================================
// Connection
// ============================================================

// OpenSQLite opens the sqlite database at dbPath, creating the parent
// directory if needed.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
