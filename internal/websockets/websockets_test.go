package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizza-nz/hotel-service/internal/logger"
	"github.com/pizza-nz/hotel-service/internal/models"
)

type fakeUpdater struct {
	changes chan StatusChange
	err     error
}

func (f *fakeUpdater) UpdateStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	f.changes <- StatusChange{OrderID: id, Status: status}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{ID: id, Status: status}, nil
}

type feedFixture struct {
	hub     *Hub
	updater *fakeUpdater
	server  *httptest.Server
	cancel  context.CancelFunc
}

func newFeedFixture(t *testing.T, allowedOrigins []string, updateErr error) *feedFixture {
	t.Helper()

	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	updater := &fakeUpdater{changes: make(chan StatusChange, 4), err: updateErr}
	upgrader := NewUpgrader(allowedOrigins)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ServeWs(hub, conn, updater, "sam", models.RoleStaff)
	}))

	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return &feedFixture{hub: hub, updater: updater, server: server, cancel: cancel}
}

func (f *feedFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestEncode(t *testing.T) {
	raw, err := encode(TypeOrderStatus, StatusChange{OrderID: uuid.Nil, Status: models.OrderStatusPreparing})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"order.status","data":{"order_id":"00000000-0000-0000-0000-000000000000","status":"preparing"}}`,
		string(raw))

	raw, err = encode(TypePong, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(raw))
}

func TestCheckOrigin(t *testing.T) {
	withOrigin := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws/orders", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	anyOrigin := checkOrigin(nil)
	assert.True(t, anyOrigin(withOrigin("http://anywhere.example")))

	listed := checkOrigin([]string{"http://desk.local/"})
	assert.True(t, listed(withOrigin("http://desk.local")))
	assert.True(t, listed(withOrigin("http://desk.local/")))
	assert.True(t, listed(withOrigin("")))
	assert.False(t, listed(withOrigin("http://evil.example")))
}

func TestUpgradeRejectsUnlistedOrigin(t *testing.T) {
	f := newFeedFixture(t, []string{"http://desk.local"}, nil)

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.server.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, f.hub.ClientCount())
}

func TestFeedBroadcastsOrders(t *testing.T) {
	f := newFeedFixture(t, nil, nil)
	conn := f.dial(t)

	order := models.Order{ID: uuid.New(), RoomNumber: "4010", Total: 11.3, Status: models.OrderStatusPlaced}
	f.hub.OrderPlaced(order)

	msg := readMessage(t, conn)
	assert.Equal(t, TypeOrderPlaced, msg.Type)
	var got models.Order
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, "4010", got.RoomNumber)

	order.Status = models.OrderStatusDelivered
	f.hub.OrderUpdated(order)

	msg = readMessage(t, conn)
	assert.Equal(t, TypeOrderUpdated, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, models.OrderStatusDelivered, got.Status)
}

func TestFeedPingPong(t *testing.T) {
	f := newFeedFixture(t, nil, nil)
	conn := f.dial(t)

	require.NoError(t, conn.WriteJSON(Message{Type: TypePing}))
	assert.Equal(t, TypePong, readMessage(t, conn).Type)
}

func TestFeedStatusChange(t *testing.T) {
	f := newFeedFixture(t, nil, nil)
	conn := f.dial(t)

	id := uuid.New()
	data, err := json.Marshal(StatusChange{OrderID: id, Status: models.OrderStatusPreparing})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Type: TypeOrderStatus, Data: data}))

	select {
	case change := <-f.updater.changes:
		assert.Equal(t, id, change.OrderID)
		assert.Equal(t, models.OrderStatusPreparing, change.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("status change never reached the updater")
	}
}

func TestFeedStatusChangeRejected(t *testing.T) {
	f := newFeedFixture(t, nil, errors.New("order already delivered"))
	conn := f.dial(t)

	data, err := json.Marshal(StatusChange{OrderID: uuid.New(), Status: models.OrderStatusPreparing})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Type: TypeOrderStatus, Data: data}))

	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.JSONEq(t, `"order already delivered"`, string(msg.Data))
}

func TestFeedRejectsBadMessages(t *testing.T) {
	f := newFeedFixture(t, nil, nil)
	conn := f.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.JSONEq(t, `"malformed message"`, string(msg.Data))

	require.NoError(t, conn.WriteJSON(Message{Type: "order.delete"}))
	msg = readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.JSONEq(t, `"unsupported message type order.delete"`, string(msg.Data))
}

func TestHubShutdownDisconnectsClients(t *testing.T) {
	f := newFeedFixture(t, nil, nil)
	conn := f.dial(t)

	f.cancel()

	require.Eventually(t, func() bool { return f.hub.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	done := make(chan struct{})
	go func() {
		f.hub.OrderPlaced(models.Order{ID: uuid.New()})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked after shutdown")
	}
}
