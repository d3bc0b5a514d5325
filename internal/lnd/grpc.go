package lnd

import (
	"context"
	"crypto/x509"
	"encoding/hex"
	"fmt"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/macaroons"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	macaroon "gopkg.in/macaroon.v2"
)

// ============================================================
// gRPC Client
// ============================================================

// grpcClient wraps the lnrpc Lightning and Router services behind the
// Client interface so nothing above this package touches proto types.
type grpcClient struct {
	conn   *grpc.ClientConn
	ln     lnrpc.LightningClient
	router routerrpc.RouterClient
}

// Dial connects to an LND node at host. cert is the node's TLS
// certificate and mac its admin macaroon, both hex encoded (raw PEM is
// accepted for the cert as well).
func Dial(ctx context.Context, host, cert, mac string) (Client, error) {
	tlsCreds, err := transportCredentials(cert)
	if err != nil {
		return nil, fmt.Errorf("tls credentials: %w", err)
	}

	macCred, err := macaroonCredentials(mac)
	if err != nil {
		return nil, fmt.Errorf("macaroon credentials: %w", err)
	}

	conn, err := grpc.DialContext(ctx, host,
		grpc.WithTransportCredentials(tlsCreds),
		grpc.WithPerRPCCredentials(macCred),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", host, err)
	}

	return &grpcClient{
		conn:   conn,
		ln:     lnrpc.NewLightningClient(conn),
		router: routerrpc.NewRouterClient(conn),
	}, nil
}

func transportCredentials(cert string) (credentials.TransportCredentials, error) {
	pem := []byte(cert)
	if decoded, err := hex.DecodeString(cert); err == nil {
		pem = decoded
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		// hex-encoded DER without PEM armor
		parsed, err := x509.ParseCertificate(pem)
		if err != nil {
			return nil, fmt.Errorf("invalid tls certificate")
		}
		pool.AddCert(parsed)
	}
	return credentials.NewClientTLSFromCert(pool, ""), nil
}

func macaroonCredentials(mac string) (credentials.PerRPCCredentials, error) {
	raw, err := hex.DecodeString(mac)
	if err != nil {
		return nil, fmt.Errorf("macaroon is not hex: %w", err)
	}

	m := &macaroon.Macaroon{}
	if err := m.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("unmarshal macaroon: %w", err)
	}
	return macaroons.NewMacaroonCredential(m)
}

func (c *grpcClient) GetInfo(ctx context.Context) (*NodeInfo, error) {
	resp, err := c.ln.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return nil, err
	}
	return &NodeInfo{
		Pubkey: resp.IdentityPubkey,
		Alias:  resp.Alias,
	}, nil
}

func (c *grpcClient) AddInvoice(ctx context.Context, amount int64, memo string) (*AddedInvoice, error) {
	resp, err := c.ln.AddInvoice(ctx, &lnrpc.Invoice{
		Value: amount,
		Memo:  memo,
	})
	if err != nil {
		return nil, err
	}
	return &AddedInvoice{
		Hash:           hex.EncodeToString(resp.RHash),
		PaymentRequest: resp.PaymentRequest,
	}, nil
}

func (c *grpcClient) LookupInvoice(ctx context.Context, hash string) (*Invoice, error) {
	rHash, err := hex.DecodeString(hash)
	if err != nil {
		return nil, fmt.Errorf("payment hash is not hex: %w", err)
	}

	resp, err := c.ln.LookupInvoice(ctx, &lnrpc.PaymentHash{RHash: rHash})
	if err != nil {
		return nil, err
	}
	return &Invoice{
		Hash:           hex.EncodeToString(resp.RHash),
		PaymentRequest: resp.PaymentRequest,
		Amount:         resp.Value,
		Memo:           resp.Memo,
		Settled:        resp.State == lnrpc.Invoice_SETTLED,
		CreationDate:   resp.CreationDate,
		SettleDate:     resp.SettleDate,
		Expiry:         resp.Expiry,
	}, nil
}

func (c *grpcClient) DecodePayReq(ctx context.Context, payReq string) (*PayReq, error) {
	resp, err := c.ln.DecodePayReq(ctx, &lnrpc.PayReqString{PayReq: payReq})
	if err != nil {
		return nil, err
	}
	return &PayReq{
		Destination: resp.Destination,
		PaymentHash: resp.PaymentHash,
		Amount:      resp.NumSatoshis,
		Description: resp.Description,
		Timestamp:   resp.Timestamp,
		Expiry:      resp.Expiry,
	}, nil
}

func (c *grpcClient) SendPayment(ctx context.Context, payReq string) (PaymentStream, error) {
	stream, err := c.router.SendPaymentV2(ctx, &routerrpc.SendPaymentRequest{
		PaymentRequest: payReq,
		TimeoutSeconds: 60,
	})
	if err != nil {
		return nil, err
	}
	return &grpcPaymentStream{stream: stream}, nil
}

func (c *grpcClient) Close() error {
	return c.conn.Close()
}

type grpcPaymentStream struct {
	stream routerrpc.Router_SendPaymentV2Client
}

func (s *grpcPaymentStream) Recv() (*PaymentUpdate, error) {
	payment, err := s.stream.Recv()
	if err != nil {
		return nil, err
	}
	return &PaymentUpdate{
		PaymentHash: payment.PaymentHash,
		Status:      PaymentStatus(payment.Status),
		FeeSat:      payment.FeeSat,
	}, nil
}
