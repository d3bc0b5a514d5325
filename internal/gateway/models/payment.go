package models

// ============================================================
// Payment Model
// ============================================================

// Payment status values follow the node's payment state machine:
// 0 unknown, 1 in flight, 2 succeeded, 3 failed.
const (
	PaymentStatusUnknown   = 0
	PaymentStatusInFlight  = 1
	PaymentStatusSucceeded = 2
	PaymentStatusFailed    = 3
)

type Payment struct {
	PaymentHash    string `json:"paymentHash"`
	PaymentRequest string `json:"paymentRequest"`
	Destination    string `json:"destination"`
	Amount         int64  `json:"amount"`
	Fee            int64  `json:"fee"`
	Status         int    `json:"status"`
	Description    string `json:"description"`
	CreationDate   int64  `json:"creationDate"`
}

// ============================================================
// Transactions
// ============================================================

// Transaction is one row of the merged invoice/payment history.
type Transaction struct {
	Type         string `json:"type"`
	Hash         string `json:"hash"`
	Amount       int64  `json:"amount"`
	Memo         string `json:"memo"`
	Settled      bool   `json:"settled"`
	Status       int    `json:"status"`
	CreationDate int64  `json:"creationDate"`
}

func InvoiceTransaction(inv Invoice) Transaction {
	return Transaction{
		Type:         "invoice",
		Hash:         inv.Hash,
		Amount:       inv.Amount,
		Memo:         inv.Memo,
		Settled:      inv.Settled,
		CreationDate: inv.CreationDate,
	}
}

func PaymentTransaction(p Payment) Transaction {
	return Transaction{
		Type:         "payment",
		Hash:         p.PaymentHash,
		Amount:       p.Amount,
		Memo:         p.Description,
		Settled:      p.Status == PaymentStatusSucceeded,
		Status:       p.Status,
		CreationDate: p.CreationDate,
	}
}
