package models

// ============================================================
// Node Model
// ============================================================

// Node is a persisted node connection record. Cert and Macaroon are
// secrets kept only for reconnecting on startup; they are never
// serialized into API responses.
type Node struct {
	Token     string `json:"token"`
	Host      string `json:"host"`
	Cert      string `json:"-"`
	Macaroon  string `json:"-"`
	Pubkey    string `json:"pubkey"`
	CreatedAt string `json:"created_at"`
}
