package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lnd-gateway/internal/gateway/models"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "gateway.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	if err := repo.Init("../../../migrations/001_init.sql"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return repo
}

func TestRepository_SaveNodeReplacesSameHost(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := models.Node{Token: "tok-1", Host: "127.0.0.1:10001", Cert: "c1", Macaroon: "m1", Pubkey: "pk1"}
	second := models.Node{Token: "tok-2", Host: "127.0.0.1:10001", Cert: "c2", Macaroon: "m2", Pubkey: "pk2"}
	other := models.Node{Token: "tok-3", Host: "127.0.0.1:10002", Cert: "c3", Macaroon: "m3", Pubkey: "pk3"}

	for _, n := range []models.Node{first, second, other} {
		if err := repo.SaveNode(ctx, n); err != nil {
			t.Fatalf("SaveNode(%s): %v", n.Token, err)
		}
	}

	nodes, err := repo.ListNodes(ctx)
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("len = %d, want 2 (same-host row replaced)", len(nodes))
	}
	for _, n := range nodes {
		if n.Token == "tok-1" {
			t.Error("stale row for replaced host still present")
		}
	}
}

func TestRepository_InvoiceRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inv := models.Invoice{
		Hash:           "aabbcc",
		PaymentRequest: "lnbc1...",
		Amount:         1000,
		Memo:           "coffee",
		CreationDate:   1678886400,
		Expiry:         3600,
	}
	if err := repo.SaveInvoice(ctx, inv); err != nil {
		t.Fatalf("SaveInvoice: %v", err)
	}

	got, err := repo.GetInvoice(ctx, "aabbcc")
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Amount != 1000 || got.Memo != "coffee" || got.Settled {
		t.Errorf("invoice = %+v", got)
	}

	if err := repo.UpdateInvoice(ctx, "aabbcc", true, 1678890000); err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	got, err = repo.GetInvoice(ctx, "aabbcc")
	if err != nil {
		t.Fatalf("GetInvoice after update: %v", err)
	}
	if !got.Settled || got.SettleDate != 1678890000 {
		t.Errorf("invoice after update = %+v", got)
	}
}

func TestRepository_GetInvoiceNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetInvoice(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRepository_ListInvoicesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.SaveInvoice(ctx, models.Invoice{Hash: "old", PaymentRequest: "p1", Amount: 1, CreationDate: 100})
	repo.SaveInvoice(ctx, models.Invoice{Hash: "new", PaymentRequest: "p2", Amount: 2, CreationDate: 200})

	invoices, err := repo.ListInvoices(ctx)
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(invoices) != 2 || invoices[0].Hash != "new" {
		t.Errorf("invoices = %+v, want newest first", invoices)
	}
}

func TestRepository_PaymentRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := models.Payment{
		PaymentHash:    "pay-hash",
		PaymentRequest: "lnbc1...",
		Destination:    "dest",
		Amount:         500,
		Status:         models.PaymentStatusInFlight,
		Description:    "rent",
		CreationDate:   1678886400,
	}
	if err := repo.SavePayment(ctx, p); err != nil {
		t.Fatalf("SavePayment: %v", err)
	}

	if err := repo.UpdatePayment(ctx, "pay-hash", models.PaymentStatusSucceeded, 3); err != nil {
		t.Fatalf("UpdatePayment: %v", err)
	}

	got, err := repo.GetPayment(ctx, "pay-hash")
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if got.Status != models.PaymentStatusSucceeded || got.Fee != 3 {
		t.Errorf("payment = %+v", got)
	}

	if _, err := repo.GetPayment(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
