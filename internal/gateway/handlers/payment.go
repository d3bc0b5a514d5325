package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"lnd-gateway/internal/gateway/models"
	"lnd-gateway/internal/gateway/repository"
	"lnd-gateway/internal/lnd"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Payment Handlers
// ============================================================

type payRequest struct {
	PaymentRequest string `json:"paymentRequest"`
}

// PayInvoice decodes the payment request, records an in-flight payment
// and starts streaming the send through the node's router. The stream
// is consumed in the background; callers poll GET /api/payment for the
// outcome.
func (h *Handler) PayInvoice(c fiber.Ctx) error {
	client, errResp := h.sessionClient(c)
	if client == nil {
		return errResp
	}

	var req payRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.PaymentRequest == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "paymentRequest is required"})
	}

	ctx := context.Background()
	decoded, err := client.DecodePayReq(ctx, req.PaymentRequest)
	if err != nil {
		log.Printf("[GATEWAY] decode payreq error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid payment request"})
	}

	existing, err := h.store.GetPayment(ctx, decoded.PaymentHash)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("[GATEWAY] get payment error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read payment"})
	}
	if existing != nil && existing.Status == models.PaymentStatusSucceeded {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Payment already done"})
	}

	payment := models.Payment{
		PaymentHash:    decoded.PaymentHash,
		PaymentRequest: req.PaymentRequest,
		Destination:    decoded.Destination,
		Amount:         decoded.Amount,
		Status:         models.PaymentStatusInFlight,
		Description:    decoded.Description,
		CreationDate:   decoded.Timestamp,
	}
	if err := h.store.SavePayment(ctx, payment); err != nil {
		log.Printf("[GATEWAY] save payment error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save payment"})
	}

	stream, err := client.SendPayment(ctx, req.PaymentRequest)
	if err != nil {
		log.Printf("[GATEWAY] send payment error: %v", err)
		if uerr := h.store.UpdatePayment(ctx, decoded.PaymentHash, models.PaymentStatusFailed, 0); uerr != nil {
			log.Printf("[GATEWAY] update payment error: %v", uerr)
		}
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "failed to send payment"})
	}

	go h.trackPayment(decoded.PaymentHash, stream)

	return c.JSON(payment)
}

// trackPayment drains a payment stream to completion, persisting each
// status change. The stream is finite and non-restartable; a transport
// error is recorded as a failed payment.
func (h *Handler) trackPayment(hash string, stream lnd.PaymentStream) {
	ctx := context.Background()

	for {
		update, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("[GATEWAY] payment %s stream error: %v", hash, err)
				if uerr := h.store.UpdatePayment(ctx, hash, models.PaymentStatusFailed, 0); uerr != nil {
					log.Printf("[GATEWAY] update payment error: %v", uerr)
				}
			}
			return
		}

		status := int(update.Status)
		if err := h.store.UpdatePayment(ctx, hash, status, update.FeeSat); err != nil {
			log.Printf("[GATEWAY] update payment error: %v", err)
		}

		if status == models.PaymentStatusSucceeded || status == models.PaymentStatusFailed {
			log.Printf("[GATEWAY] payment %s finished with status %d", hash, status)
			return
		}
	}
}

// PaymentStatus returns the mirrored payment row for a payment hash.
func (h *Handler) PaymentStatus(c fiber.Ctx) error {
	hash := c.Params("payment_hash")

	p, err := h.store.GetPayment(context.Background(), hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "No payment found"})
		}
		log.Printf("[GATEWAY] get payment error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read payment"})
	}

	return c.JSON(p)
}
