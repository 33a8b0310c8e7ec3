package grpcledger

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"landlock.dev/landlock/ledger"
	"landlock.dev/landlock/model"
)

// Client implements ledger.Ledger over the Ledger gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client LedgerClient

	// Timeout applies per unary RPC when non-zero. Watch streams are
	// bounded by the caller's context instead.
	Timeout time.Duration
}

var _ ledger.Ledger = (*Client)(nil)

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration
}

func Dial(target string, opts DialOptions) (*Client, error) {
	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, errors.Join(ledger.ErrUnreachable, err)
	}
	return &Client{cc: cc, client: NewLedgerClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

func (c *Client) CurrentOwner(parent context.Context, token model.TokenID) (model.Address, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.CurrentOwner(ctx, mustStruct(map[string]interface{}{"token": encodeToken(token)}))
	if err != nil {
		return "", mapRPC(err)
	}
	return fieldAddress(out, "owner")
}

func (c *Client) BalanceOf(parent context.Context, owner model.Address) (int, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.BalanceOf(ctx, mustStruct(map[string]interface{}{"owner": string(owner)}))
	if err != nil {
		return 0, mapRPC(err)
	}
	v, ok := out.GetFields()["balance"]
	if !ok {
		return 0, errors.New("grpcledger: malformed balance reply")
	}
	return int(v.GetNumberValue()), nil
}

func (c *Client) TokenOfOwnerByIndex(parent context.Context, owner model.Address, index int) (model.TokenID, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.TokenOfOwnerByIndex(ctx, mustStruct(map[string]interface{}{
		"owner": string(owner),
		"index": float64(index),
	}))
	if err != nil {
		return 0, mapRPC(err)
	}
	return fieldToken(out, "token")
}

func (c *Client) TokenURI(parent context.Context, token model.TokenID) (string, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.TokenURI(ctx, mustStruct(map[string]interface{}{"token": encodeToken(token)}))
	if err != nil {
		return "", mapRPC(err)
	}
	return fieldString(out, "pointer")
}

func (c *Client) PendingBuyer(parent context.Context, token model.TokenID) (model.Address, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.PendingBuyer(ctx, mustStruct(map[string]interface{}{"token": encodeToken(token)}))
	if err != nil {
		return "", mapRPC(err)
	}
	return fieldAddress(out, "buyer")
}

func (c *Client) Mint(parent context.Context, caller model.Address, pointer string) (model.TokenID, ledger.Confirmation, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.Mint(ctx, mustStruct(map[string]interface{}{
		"caller":  string(caller),
		"pointer": pointer,
	}))
	if err != nil {
		return 0, ledger.Confirmation{}, mapRPC(err)
	}
	token, err := fieldToken(out, "minted")
	if err != nil {
		return 0, ledger.Confirmation{}, err
	}
	conf, err := decodeConfirmation(out)
	if err != nil {
		return 0, ledger.Confirmation{}, err
	}
	return token, conf, nil
}

func (c *Client) RequestPurchase(parent context.Context, caller model.Address, token model.TokenID) (ledger.Confirmation, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.RequestPurchase(ctx, mustStruct(map[string]interface{}{
		"caller": string(caller),
		"token":  encodeToken(token),
	}))
	if err != nil {
		return ledger.Confirmation{}, mapRPC(err)
	}
	return decodeConfirmation(out)
}

func (c *Client) ApprovePurchase(parent context.Context, caller model.Address, token model.TokenID) (ledger.Confirmation, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.ApprovePurchase(ctx, mustStruct(map[string]interface{}{
		"caller": string(caller),
		"token":  encodeToken(token),
	}))
	if err != nil {
		return ledger.Confirmation{}, mapRPC(err)
	}
	return decodeConfirmation(out)
}

func (c *Client) Watch(ctx context.Context, addr model.Address) (<-chan ledger.TransferEvent, error) {
	stream, err := c.client.Watch(ctx, mustStruct(map[string]interface{}{"address": string(addr)}))
	if err != nil {
		return nil, mapRPC(err)
	}

	out := make(chan ledger.TransferEvent)
	go func() {
		defer close(out)
		for {
			msg, err := stream.Recv()
			if err != nil {
				// EOF, cancellation, or transport failure all end the
				// subscription; consumers re-subscribe on next load.
				return
			}
			ev, err := decodeEvent(msg)
			if err != nil {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
