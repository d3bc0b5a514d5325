package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"

	"lnd-gateway/internal/gateway/models"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// History Handlers
// ============================================================

// Transactions returns the merged invoice/payment history, newest
// first.
func (h *Handler) Transactions(c fiber.Ctx) error {
	ctx := context.Background()

	invoices, err := h.store.ListInvoices(ctx)
	if err != nil {
		log.Printf("[GATEWAY] list invoices error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read transactions"})
	}
	payments, err := h.store.ListPayments(ctx)
	if err != nil {
		log.Printf("[GATEWAY] list payments error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read transactions"})
	}

	txs := make([]models.Transaction, 0, len(invoices)+len(payments))
	for _, inv := range invoices {
		txs = append(txs, models.InvoiceTransaction(inv))
	}
	for _, p := range payments {
		txs = append(txs, models.PaymentTransaction(p))
	}

	sort.Slice(txs, func(i, j int) bool {
		return txs[i].CreationDate > txs[j].CreationDate
	})

	return c.JSON(txs)
}

// Balance derives the wallet balance from the mirrored history:
// invoices received minus payments sent.
func (h *Handler) Balance(c fiber.Ctx) error {
	ctx := context.Background()

	invoices, err := h.store.ListInvoices(ctx)
	if err != nil {
		log.Printf("[GATEWAY] list invoices error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read balance"})
	}
	payments, err := h.store.ListPayments(ctx)
	if err != nil {
		log.Printf("[GATEWAY] list payments error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read balance"})
	}

	var totalInvoices, totalPayments int64
	for _, inv := range invoices {
		totalInvoices += inv.Amount
	}
	for _, p := range payments {
		totalPayments += p.Amount
	}

	return c.JSON(fiber.Map{
		"balance":       totalInvoices - totalPayments,
		"totalInvoices": totalInvoices,
		"totalPayments": totalPayments,
	})
}
