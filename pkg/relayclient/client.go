// Package relayclient implements the relayer's two chain-facing clients
// (spec §4.H–I): a thin JSON-RPC-over-websocket client exposing the
// runtime-API surface spec §6.5 lists (best_finalized, is_known_header,
// message_details, and friends), grounded on the WSClient request/response
// correlation and subscription shape of pkg/rpcclient's
// wsclient_test.go — NewWS/Init/Close, one goroutine reading frames and
// dispatching them to either a pending call or a live subscription
// channel, one mutex-guarded map of in-flight requests keyed by request
// id.
package relayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSOptions configures a Client's dial and request behavior.
type WSOptions struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
}

func (o WSOptions) withDefaults() WSOptions {
	if o.DialTimeout == 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.RequestTimeout == 0 {
		o.RequestTimeout = 30 * time.Second
	}
	return o
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	// Method/Params are set instead of ID/Result on a subscription push.
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("relayclient: rpc error %d: %s", e.Code, e.Message)
}

type pendingCall struct {
	result chan json.RawMessage
	err    chan error
}

// Client is a JSON-RPC-over-websocket connection to one chain's node. It
// satisfies both SourceClient and TargetClient, since both roles expose the
// same runtime-API surface (spec §6.5) against their own chain.
type Client struct {
	conn *websocket.Conn
	opts WSOptions

	nextID  uint64
	mu      sync.Mutex
	pending map[uint64]*pendingCall
	subs    map[string]chan json.RawMessage

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial opens a websocket JSON-RPC connection to endpoint and starts the
// background read loop. Cancel ctx to abort an in-progress dial.
func Dial(ctx context.Context, endpoint string, opts WSOptions) (*Client, error) {
	opts = opts.withDefaults()
	dialCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("relayclient: dialing %s: %w", endpoint, err)
	}

	c := &Client{
		conn:    conn,
		opts:    opts,
		pending: make(map[uint64]*pendingCall),
		subs:    make(map[string]chan json.RawMessage),
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close shuts down the connection and unblocks every in-flight call.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
		close(c.closed)
	})
	return err
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		for _, p := range c.pending {
			p.err <- fmt.Errorf("relayclient: connection closed")
		}
		for _, ch := range c.subs {
			close(ch)
		}
		c.mu.Unlock()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var resp rpcResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			continue
		}

		if resp.Method != "" {
			c.dispatchSubscription(resp)
			continue
		}

		c.mu.Lock()
		p, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()
		if !ok {
			continue
		}
		if resp.Error != nil {
			p.err <- resp.Error
			continue
		}
		p.result <- resp.Result
	}
}

func (c *Client) dispatchSubscription(resp rpcResponse) {
	var envelope struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(resp.Params, &envelope); err != nil {
		return
	}
	c.mu.Lock()
	ch, ok := c.subs[envelope.Subscription]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- envelope.Result:
	case <-c.closed:
	}
}

// call invokes method with params and decodes its result into out.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	id := atomic.AddUint64(&c.nextID, 1)

	var rawParams json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("relayclient: encoding params for %s: %w", method, err)
		}
		rawParams = b
	}

	p := &pendingCall{result: make(chan json.RawMessage, 1), err: make(chan error, 1)}
	c.mu.Lock()
	c.pending[id] = p
	c.mu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: rawParams}
	b, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("relayclient: encoding request %s: %w", method, err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("relayclient: writing request %s: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	select {
	case result := <-p.result:
		if out == nil {
			return nil
		}
		return json.Unmarshal(result, out)
	case err := <-p.err:
		return err
	case <-ctx.Done():
		return fmt.Errorf("relayclient: %s: %w", method, ctx.Err())
	case <-c.closed:
		return fmt.Errorf("relayclient: connection closed during %s", method)
	}
}

// subscribe registers a new subscription channel under subID. Callers learn
// subID from the subscribe call's own JSON-RPC result.
func (c *Client) subscribe(subID string) chan json.RawMessage {
	ch := make(chan json.RawMessage, 16)
	c.mu.Lock()
	c.subs[subID] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) unsubscribe(subID string) {
	c.mu.Lock()
	ch, ok := c.subs[subID]
	if ok {
		delete(c.subs, subID)
	}
	c.mu.Unlock()
	if ok {
		close(ch)
	}
}
