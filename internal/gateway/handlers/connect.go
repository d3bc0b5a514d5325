package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"lnd-gateway/internal/gateway/models"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Connect Handler
// ============================================================

type connectRequest struct {
	Host     string `json:"host"`
	Cert     string `json:"cert"`
	Macaroon string `json:"macaroon"`
}

// Connect establishes a verified session to a node and returns the
// bearer token for subsequent calls.
func (h *Handler) Connect(c fiber.Ctx) error {
	var req connectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	result, err := h.manager.Connect(context.Background(), req.Host, req.Cert, req.Macaroon)
	if err != nil {
		log.Printf("[GATEWAY] connect failed: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	node := models.Node{
		Token:    result.Token,
		Host:     req.Host,
		Cert:     req.Cert,
		Macaroon: req.Macaroon,
		Pubkey:   result.Pubkey,
	}
	if err := h.store.SaveNode(context.Background(), node); err != nil {
		// the session works even if the mirror row is lost; the only
		// cost is no reconnect after a restart
		log.Printf("[GATEWAY] save node error: %v", err)
	}

	return c.JSON(result)
}
