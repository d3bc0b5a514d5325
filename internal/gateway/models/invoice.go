package models

// ============================================================
// Invoice Model
// ============================================================

type Invoice struct {
	Hash           string `json:"hash"`
	PaymentRequest string `json:"paymentRequest"`
	Amount         int64  `json:"amount"`
	Memo           string `json:"memo"`
	Settled        bool   `json:"settled"`
	CreationDate   int64  `json:"creationDate"`
	SettleDate     int64  `json:"settleDate"`
	Expiry         int64  `json:"expiry"`
}
