package lnd

import "context"

// ============================================================
// Node Client
// ============================================================

// PaymentStatus mirrors the node's payment state machine.
type PaymentStatus int32

const (
	PaymentStatusUnknown   PaymentStatus = 0
	PaymentStatusInFlight  PaymentStatus = 1
	PaymentStatusSucceeded PaymentStatus = 2
	PaymentStatusFailed    PaymentStatus = 3
)

// NodeInfo is the identity returned by the GetInfo probe.
type NodeInfo struct {
	Pubkey string
	Alias  string
}

// AddedInvoice is the result of creating an invoice on the node.
type AddedInvoice struct {
	Hash           string
	PaymentRequest string
}

// Invoice is a node-side invoice as returned by LookupInvoice.
type Invoice struct {
	Hash           string
	PaymentRequest string
	Amount         int64
	Memo           string
	Settled        bool
	CreationDate   int64
	SettleDate     int64
	Expiry         int64
}

// PayReq is a decoded payment request.
type PayReq struct {
	Destination string
	PaymentHash string
	Amount      int64
	Description string
	Timestamp   int64
	Expiry      int64
}

// PaymentUpdate is a single message from a payment stream.
type PaymentUpdate struct {
	PaymentHash string
	Status      PaymentStatus
	FeeSat      int64
}

// PaymentStream is a finite stream of payment updates. Recv returns
// io.EOF (or a transport error) once the node closes the stream.
type PaymentStream interface {
	Recv() (*PaymentUpdate, error)
}

// Client is the subset of the node's RPC surface the gateway calls.
type Client interface {
	GetInfo(ctx context.Context) (*NodeInfo, error)
	AddInvoice(ctx context.Context, amount int64, memo string) (*AddedInvoice, error)
	LookupInvoice(ctx context.Context, hash string) (*Invoice, error)
	DecodePayReq(ctx context.Context, payReq string) (*PayReq, error)
	SendPayment(ctx context.Context, payReq string) (PaymentStream, error)
	Close() error
}

// Dialer establishes a Client against host using the given TLS cert
// and macaroon credentials. Injected so tests can substitute a mock.
type Dialer func(ctx context.Context, host, cert, macaroon string) (Client, error)
