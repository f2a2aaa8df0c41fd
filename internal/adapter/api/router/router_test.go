package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/internal/adapter/api"
	"campusmarket/internal/adapter/api/handler"
	"campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/adapter/repository"
	"campusmarket/internal/domain/entity"
	"campusmarket/internal/domain/service"
	"campusmarket/internal/infrastructure/eventbus"
	jwtverifier "campusmarket/internal/infrastructure/jwt"
	"campusmarket/internal/infrastructure/ratelimit"
	ws "campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
)

const testSecret = "router-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	users := repository.NewMemoryUserRepository()
	products := repository.NewMemoryProductRepository()
	for _, u := range []*entity.User{
		{ID: "seller", Username: "seller", Nickname: "Lamp Seller"},
		{ID: "buyer", Username: "buyer"},
	} {
		require.NoError(t, users.Create(ctx, u))
	}
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "p1", SellerID: "seller", Name: "desk lamp", Price: 15000,
		Status: entity.ProductStatusOnSale, TradeMethod: entity.TradeMethodKiosk,
	}))
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "p2", SellerID: "seller", Name: "bike", Price: 90000,
		Status: entity.ProductStatusOnSale, TradeMethod: entity.TradeMethodRemote,
	}))

	bus := eventbus.NewBus()
	wsManager := ws.NewManager()
	limiter := ratelimit.NewRateLimiter()
	identityUC := usecase.NewIdentityUseCase(jwtverifier.NewVerifier(testSecret), users)
	kioskUC := usecase.NewKioskUseCase(repository.NewMemoryKioskTransactionRepository(), repository.NewMemoryCabinetRepository(4),
		products, users, service.NewRandomSerialGenerator(), bus, 30*time.Minute)
	remoteUC := usecase.NewRemoteTradeUseCase(repository.NewMemoryRemoteTradeRepository(), products, bus)
	chatUC := usecase.NewChatUseCase(repository.NewMemoryMessageRepository(), wsManager, limiter, 50)
	usecase.NewNotificationUseCase(bus, wsManager).Start(ctx)

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, Handlers{
		Kiosk:       handler.NewKioskHandler(kioskUC),
		RemoteTrade: handler.NewRemoteTradeHandler(remoteUC),
		Chat:        handler.NewChatHandler(chatUC),
		WebSocket:   handler.NewWebSocketHandler(chatUC, identityUC),
		Health:      handler.NewHealthHandler(wsManager, "memory"),
	}, middleware.NewAuthMiddleware(identityUC), limiter)
	return e
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func call(t *testing.T, e *echo.Echo, method, path, userID, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestKioskFlowOverHTTP(t *testing.T) {
	e := newTestServer(t)

	code, env := call(t, e, http.MethodPost, "/v1/kiosk/seller/start/p1", "seller", "")
	require.Equal(t, http.StatusCreated, code)
	var tx entity.KioskTransaction
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	require.Len(t, tx.SerialNumber, 6)

	code, env = call(t, e, http.MethodPost, "/v1/kiosk/seller/start/p1", "seller", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Transaction already in progress", env.Message)

	code, _ = call(t, e, http.MethodGet, "/v1/kiosk/transaction/"+tx.SerialNumber, "", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, e, http.MethodPost, "/v1/kiosk/deposit/"+tx.SerialNumber, "", "")
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, e, http.MethodPost, "/v1/kiosk/buyer/pay/p1", "seller", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, e, http.MethodPost, "/v1/kiosk/buyer/pay/p1", "buyer", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, e, http.MethodPost, "/v1/kiosk/pickup/"+tx.SerialNumber, "", "")
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, e, http.MethodGet, "/v1/kiosk/status/p1", "buyer", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"COMPLETED"`)
}

func TestKioskRoutesRequireAuth(t *testing.T) {
	e := newTestServer(t)

	code, env := call(t, e, http.MethodPost, "/v1/kiosk/seller/start/p1", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = call(t, e, http.MethodGet, "/v1/kiosk/transaction/12345x", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRemoteTradeFlowOverHTTP(t *testing.T) {
	e := newTestServer(t)

	code, _ := call(t, e, http.MethodPost, "/v1/remote-trade/p2/seller/start", "seller", "")
	require.Equal(t, http.StatusOK, code)

	code, env := call(t, e, http.MethodPost, "/v1/remote-trade/p2/buyer/pay", "buyer", `{"amount": -5}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, _ = call(t, e, http.MethodPost, "/v1/remote-trade/p2/buyer/pay", "buyer", `{"amount": 85000}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, e, http.MethodPost, "/v1/remote-trade/p2/seller/complete", "seller", "")
	require.Equal(t, http.StatusOK, code)
	code, env = call(t, e, http.MethodPost, "/v1/remote-trade/p2/buyer/complete", "buyer", "")
	require.Equal(t, http.StatusOK, code)

	var trade entity.RemoteTrade
	require.NoError(t, json.Unmarshal(env.Data, &trade))
	assert.Equal(t, entity.RemoteTradeStatusCompleted, trade.Status)
	assert.Equal(t, int64(85000), trade.PaidAmount)

	code, env = call(t, e, http.MethodGet, "/v1/remote-trade/p1", "seller", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, usecase.CodeNotRemoteTrade, env.Error.Code)
}

func dial(t *testing.T, server *httptest.Server, query string) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?" + query
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *gorillaws.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocketTalkAndTradeNotifications(t *testing.T) {
	e := newTestServer(t)
	server := httptest.NewServer(e)
	defer server.Close()

	conn := dial(t, server, "product_id=p1&token="+tokenFor(t, "seller"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "TALK", "content": "still available"}))
	frame := readFrame(t, conn)
	assert.Equal(t, "TALK", frame["type"])
	assert.Equal(t, "still available", frame["content"])
	assert.Equal(t, "Lamp Seller", frame["nickname"])
	assert.Equal(t, "p1", frame["productId"])

	code, _ := call(t, e, http.MethodPost, "/v1/kiosk/seller/start/p1", "seller", "")
	require.Equal(t, http.StatusCreated, code)

	frame = readFrame(t, conn)
	assert.Equal(t, "TRADE", frame["type"])
	assert.Equal(t, "KIOSK", frame["kind"])
	assert.Equal(t, "WAITING", frame["status"])
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	server := httptest.NewServer(newTestServer(t))
	defer server.Close()

	conn := dial(t, server, "token=garbage")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, gorillaws.IsCloseError(err, gorillaws.ClosePolicyViolation), "got %v", err)
}

func TestDevSeedRoutesOnlyInDevelopment(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	products := repository.NewMemoryProductRepository()
	seed := handler.NewDevSeedHandler(users, products)

	prod := echo.New()
	SetupDevRouter(prod, "production", seed)
	req := httptest.NewRequest(http.MethodPost, "/_dev/users", strings.NewReader(`{"id":"u9","username":"dana"}`))
	rec := httptest.NewRecorder()
	prod.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	dev := echo.New()
	dev.Validator = api.NewValidator()
	SetupDevRouter(dev, "development", seed)

	code, _ := call(t, dev, http.MethodPost, "/_dev/users", "", `{"id":"u9","username":"dana"}`)
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, dev, http.MethodPost, "/_dev/products", "", `{"seller_id":"u9","name":"chair","price":5000,"trade_method":"KIOSK"}`)
	require.Equal(t, http.StatusCreated, code)
	var product entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &product))
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, entity.ProductStatusOnSale, product.Status)

	code, _ = call(t, dev, http.MethodPost, "/_dev/products", "", `{"seller_id":"ghost","name":"chair","price":5000,"trade_method":"KIOSK"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, dev, http.MethodPost, "/_dev/products", "", `{"seller_id":"u9","name":"chair","price":5000,"trade_method":"MAIL"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
