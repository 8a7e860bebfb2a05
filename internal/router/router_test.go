package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/logger"
	"github.com/pizza-nz/hotel-service/internal/models"
	"github.com/pizza-nz/hotel-service/internal/router"
	"github.com/pizza-nz/hotel-service/internal/service"
	"github.com/pizza-nz/hotel-service/internal/testutil"
	"github.com/pizza-nz/hotel-service/internal/websockets"
)

type feedFixture struct {
	server *httptest.Server
	hub    *websockets.Hub
	orders *service.OrderService
	repos  *repository.Repositories
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()

	log := logger.Discard()
	store := testutil.NewStore(t)
	repos := repository.NewRepositories(store)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repos.Account.Create(context.Background(), models.Account{
		Username: "sam", PasswordHash: string(hash), Role: models.RoleStaff,
	}))
	require.NoError(t, repos.Item.Create(context.Background(), models.Item{ID: 1, Name: "Breakfast", Price: 10}))

	ctx, cancel := context.WithCancel(context.Background())
	hub := websockets.NewHub(log)
	go hub.Run(ctx)
	t.Cleanup(cancel)

	auth := service.NewAuthenticator(repos.Account, service.LockoutPolicy{Threshold: 3, Duration: 5 * time.Minute}, nil, log)
	sessions := service.NewSessionService(service.SessionConfig{Secret: "test-secret", TTL: time.Hour}, nil)
	discounts := service.NewDiscountService(repos, nil)
	orders := service.NewOrderService(repos, service.NewPricingResolver(repos.Item), discounts, hub, 0.13, nil, log)

	server := httptest.NewServer(router.New(router.Deps{
		Store:    store,
		Auth:     auth,
		Sessions: sessions,
		Hub:      hub,
		Updater:  orders,
		Log:      log,
	}))
	t.Cleanup(server.Close)

	return &feedFixture{server: server, hub: hub, orders: orders, repos: repos}
}

func (f *feedFixture) login(t *testing.T, username, password string) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)

	resp, err := http.Post(f.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *feedFixture) token(t *testing.T) string {
	t.Helper()
	resp := f.login(t, "sam", "secret")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "staff", body.Role)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func readMessage(t *testing.T, conn *websocket.Conn) websockets.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message websockets.Message
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

func TestHealth(t *testing.T) {
	f := newFeedFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	f := newFeedFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.login(t, "sam", "wrong").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.login(t, "nobody", "secret").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.login(t, "master", "secret").StatusCode)
	f.token(t)

	resp, err := http.Get(f.server.URL + "/api/auth/login")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestLoginLockout(t *testing.T) {
	f := newFeedFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.login(t, "sam", "wrong").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, f.login(t, "sam", "wrong").StatusCode)
	assert.Equal(t, http.StatusLocked, f.login(t, "sam", "wrong").StatusCode)
	assert.Equal(t, http.StatusLocked, f.login(t, "sam", "secret").StatusCode)
}

func TestFeedRequiresSession(t *testing.T) {
	f := newFeedFixture(t)

	resp, err := http.Get(f.server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/ws?token=forged")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFeedBroadcastsAndUpdatesOrders(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + f.token(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	draft := f.orders.NewDraft(&models.Reservation{RoomNumber: "2101"})
	_, err = f.orders.AddLine(ctx, draft, 1, 2)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, draft)
	require.NoError(t, err)

	placed := readMessage(t, conn)
	assert.Equal(t, websockets.TypeOrderPlaced, placed.Type)
	var placedOrder models.Order
	require.NoError(t, json.Unmarshal(placed.Data, &placedOrder))
	assert.Equal(t, order.ID, placedOrder.ID)
	assert.Equal(t, "2101", placedOrder.RoomNumber)

	data, err := json.Marshal(websockets.StatusChange{OrderID: order.ID, Status: models.OrderStatusPreparing})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(websockets.Message{Type: websockets.TypeOrderStatus, Data: data}))

	updated := readMessage(t, conn)
	assert.Equal(t, websockets.TypeOrderUpdated, updated.Type)
	var updatedOrder models.Order
	require.NoError(t, json.Unmarshal(updated.Data, &updatedOrder))
	assert.Equal(t, models.OrderStatusPreparing, updatedOrder.Status)

	stored, err := f.repos.Order.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, stored.Status)

	require.NoError(t, conn.WriteJSON(websockets.Message{Type: websockets.TypePing}))
	assert.Equal(t, websockets.TypePong, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(websockets.Message{Type: "order.delete"}))
	assert.Equal(t, websockets.TypeError, readMessage(t, conn).Type)
}
