package grpccustody

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"landlock.dev/landlock/custody"
	"landlock.dev/landlock/model"
)

// Client implements custody.Custody over the Custody gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client CustodyClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ custody.Custody = (*Client)(nil)

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
		return nil, errors.Join(custody.ErrChallengeUnavailable, err)
	}
	return &Client{cc: cc, client: NewCustodyClient(cc)}, nil
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

func (c *Client) Challenge(parent context.Context, subject model.Address) (model.AuthChallenge, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.Challenge(ctx, mustStruct(map[string]interface{}{"subject": string(subject)}))
	if err != nil {
		err = mapRPC(err)
		if !errors.Is(err, custody.ErrChallengeUnavailable) {
			err = errors.Join(custody.ErrChallengeUnavailable, err)
		}
		return model.AuthChallenge{}, err
	}
	return decodeChallenge(out)
}

func (c *Client) Register(parent context.Context, pointer string, owner model.Address, keyMaterial []byte, sig model.Signature) error {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	_, err := c.client.Register(ctx, mustStruct(map[string]interface{}{
		"pointer":     pointer,
		"owner":       string(owner),
		"keyMaterial": base64.StdEncoding.EncodeToString(keyMaterial),
		"signature":   sig.Encode(),
	}))
	return mapRPC(err)
}

func (c *Client) Release(parent context.Context, pointer string, holder model.Address, sig model.Signature) ([]byte, error) {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	out, err := c.client.Release(ctx, mustStruct(map[string]interface{}{
		"pointer":   pointer,
		"holder":    string(holder),
		"signature": sig.Encode(),
	}))
	if err != nil {
		return nil, mapRPC(err)
	}
	return fieldBytes(out, "keyMaterial")
}

func (c *Client) Transfer(parent context.Context, from model.Address, pointer string, to model.Address, sig model.Signature, attestConfirmed bool) error {
	ctx, cancel := c.ctx(parent)
	defer cancel()

	_, err := c.client.Transfer(ctx, mustStruct(map[string]interface{}{
		"pointer":         pointer,
		"from":            string(from),
		"to":              string(to),
		"signature":       sig.Encode(),
		"attestConfirmed": attestConfirmed,
	}))
	return mapRPC(err)
}
