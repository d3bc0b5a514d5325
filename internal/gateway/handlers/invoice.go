package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lnd-gateway/internal/gateway/models"
	"lnd-gateway/internal/gateway/repository"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Invoice Handlers
// ============================================================

type createInvoiceRequest struct {
	Amount int64  `json:"amount"`
	Memo   string `json:"memo"`
}

// CreateInvoice creates an invoice on the session's node, mirrors it
// into the database and returns the full invoice.
func (h *Handler) CreateInvoice(c fiber.Ctx) error {
	client, errResp := h.sessionClient(c)
	if client == nil {
		return errResp
	}

	var req createInvoiceRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.Amount <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
	}

	ctx := context.Background()
	added, err := client.AddInvoice(ctx, req.Amount, req.Memo)
	if err != nil {
		log.Printf("[GATEWAY] add invoice error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "failed to create invoice"})
	}

	// the lookup fills in creation date and expiry, which AddInvoice
	// does not return
	lookedUp, err := client.LookupInvoice(ctx, added.Hash)
	if err != nil {
		log.Printf("[GATEWAY] lookup invoice error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "failed to look up invoice"})
	}

	inv := models.Invoice{
		Hash:           added.Hash,
		PaymentRequest: added.PaymentRequest,
		Amount:         req.Amount,
		Memo:           req.Memo,
		Settled:        false,
		CreationDate:   lookedUp.CreationDate,
		SettleDate:     lookedUp.SettleDate,
		Expiry:         lookedUp.Expiry,
	}
	if err := h.store.SaveInvoice(ctx, inv); err != nil {
		log.Printf("[GATEWAY] save invoice error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save invoice"})
	}

	return c.JSON(inv)
}

// InvoiceStatus returns the invoice for a payment hash. Unsettled
// mirror rows are refreshed from the node so a paid invoice shows up
// as settled without a subscription.
func (h *Handler) InvoiceStatus(c fiber.Ctx) error {
	client, errResp := h.sessionClient(c)
	if client == nil {
		return errResp
	}

	ctx := context.Background()
	hash := c.Params("payment_hash")

	inv, err := h.store.GetInvoice(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "No invoice found"})
		}
		log.Printf("[GATEWAY] get invoice error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read invoice"})
	}

	if !inv.Settled {
		lookedUp, err := client.LookupInvoice(ctx, hash)
		if err != nil {
			log.Printf("[GATEWAY] refresh invoice %s error: %v", hash, err)
		} else if lookedUp.Settled {
			if err := h.store.UpdateInvoice(ctx, hash, true, lookedUp.SettleDate); err != nil {
				log.Printf("[GATEWAY] update invoice error: %v", err)
			}
			inv.Settled = true
			inv.SettleDate = lookedUp.SettleDate
		}
	}

	return c.JSON(inv)
}
