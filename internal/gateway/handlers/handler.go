package handlers

import (
	"context"
	"net/http"

	"lnd-gateway/internal/gateway/models"
	"lnd-gateway/internal/gateway/service"
	"lnd-gateway/internal/lnd"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Gateway Handler
// ============================================================

// Store is the slice of the persistence adapter the handlers use.
type Store interface {
	SaveNode(ctx context.Context, n models.Node) error
	SaveInvoice(ctx context.Context, inv models.Invoice) error
	UpdateInvoice(ctx context.Context, hash string, settled bool, settleDate int64) error
	GetInvoice(ctx context.Context, hash string) (*models.Invoice, error)
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	SavePayment(ctx context.Context, p models.Payment) error
	UpdatePayment(ctx context.Context, hash string, status int, fee int64) error
	GetPayment(ctx context.Context, hash string) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
}

type Handler struct {
	manager *service.Manager
	store   Store
}

func NewHandler(manager *service.Manager, store Store) *Handler {
	return &Handler{
		manager: manager,
		store:   store,
	}
}

// Routes registers the API surface on app.
func (h *Handler) Routes(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/connect", h.Connect)
	api.Post("/invoice", h.CreateInvoice)
	api.Get("/invoice/:payment_hash", h.InvoiceStatus)
	api.Post("/payment", h.PayInvoice)
	api.Get("/payment/:payment_hash", h.PaymentStatus)
	api.Get("/transactions", h.Transactions)
	api.Get("/balance", h.Balance)
}

// ============================================================
// Helpers
// ============================================================

// sessionClient resolves the X-Token header to a live node client. On
// failure it writes the error response and returns a nil client.
func (h *Handler) sessionClient(c fiber.Ctx) (lnd.Client, error) {
	token := c.Get("X-Token")
	if token == "" {
		return nil, c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Missing token"})
	}

	client, err := h.manager.Resolve(token)
	if err != nil {
		return nil, c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown session"})
	}
	return client, nil
}
