package relayclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// initTestServer spins up a websocket echo-ish JSON-RPC server driven by
// respond, mirroring pkg/rpcclient/wsclient_test.go's initTestServer shape:
// one upgraded connection, one handler deciding what each request gets
// back.
func initTestServer(t *testing.T, respond func(req rpcRequest) rpcResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for {
			var req rpcRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp := respond(req)
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestClientCallRoundTrips(t *testing.T) {
	srv := initTestServer(t, func(req rpcRequest) rpcResponse {
		result, _ := json.Marshal(true)
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
	})

	c, err := Dial(context.Background(), wsURL(srv.URL), WSOptions{})
	require.NoError(t, err)
	defer c.Close()

	known, err := c.IsKnownHeader(context.Background(), [32]byte{1})
	require.NoError(t, err)
	require.True(t, known)
}

func TestClientCallSurfacesRPCError(t *testing.T) {
	srv := initTestServer(t, func(req rpcRequest) rpcResponse {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: 1, Message: "boom"}}
	})

	c, err := Dial(context.Background(), wsURL(srv.URL), WSOptions{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.IsKnownHeader(context.Background(), [32]byte{1})
	require.Error(t, err)
}

func TestClientCloseUnblocksPendingCalls(t *testing.T) {
	block := make(chan struct{})
	srv := initTestServer(t, func(req rpcRequest) rpcResponse {
		<-block
		result, _ := json.Marshal(true)
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
	})
	defer close(block)

	c, err := Dial(context.Background(), wsURL(srv.URL), WSOptions{})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.IsKnownHeader(context.Background(), [32]byte{1})
		errCh <- err
	}()

	require.NoError(t, c.Close())
	require.Error(t, <-errCh)
}
