package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradewire/internal/delivery/http/dto"
	"tradewire/internal/domain"
	"tradewire/internal/stream"
	"tradewire/internal/usecase"
)

// In-memory repository for wiring a real service under the handlers

type memRepo struct {
	mu     sync.Mutex
	trades []*domain.Trade
	nextID int64
}

func (r *memRepo) Save(ctx context.Context, trade *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	trade.ID = r.nextID
	r.trades = append(r.trades, trade)
	return nil
}

func (r *memRepo) FindOpenBySymbol(ctx context.Context, symbol string) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []*domain.Trade
	for _, trade := range r.trades {
		if trade.Symbol == symbol && trade.ClosedAt == nil {
			open = append(open, trade)
		}
	}
	return open, nil
}

func (r *memRepo) Update(ctx context.Context, trade *domain.Trade) error {
	return nil
}

func (r *memRepo) ListOpen(ctx context.Context) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []*domain.Trade
	for _, trade := range r.trades {
		if trade.ClosedAt == nil {
			open = append(open, trade)
		}
	}
	return open, nil
}

func (r *memRepo) GetAll(ctx context.Context) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Trade(nil), r.trades...), nil
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func newTestServer(t *testing.T) (*echo.Echo, *stream.Hub) {
	t.Helper()
	hub := stream.NewHub()
	svc := usecase.NewTradeService(&memRepo{}, hub)

	e := echo.New()
	SetupRoutes(e, &RouterConfig{
		TradeHandler: NewTradeHandler(svc, hub),
		DB:           okPinger{},
	})
	return e, hub
}

func postSignal(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/trade", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostSignal_MissingFieldReturns400(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postSignal(e, `{"action":"buy","price":100,"position_size":1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing field: symbol"}`, rec.Body.String())
}

func TestPostSignal_MissingPriceReturns400(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postSignal(e, `{"symbol":"ETHUSDT","action":"buy","position_size":1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing field: price"}`, rec.Body.String())
}

func TestPostSignal_OpensTrade(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postSignal(e, `{"symbol":"ETHUSDT","action":"buy","price":100,"position_size":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","action":"open"}`, rec.Body.String())
}

func TestPostSignal_SameDirectionIgnored(t *testing.T) {
	e, _ := newTestServer(t)

	postSignal(e, `{"symbol":"ETHUSDT","action":"buy","price":100,"position_size":2}`)
	rec := postSignal(e, `{"symbol":"ETHUSDT","action":"buy","price":101,"position_size":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ignored","message":"Trade already open in same direction"}`, rec.Body.String())
}

func TestPostSignal_OppositeDirectionCloses(t *testing.T) {
	e, _ := newTestServer(t)

	postSignal(e, `{"symbol":"ETHUSDT","action":"buy","price":100,"position_size":2}`)
	rec := postSignal(e, `{"symbol":"ETHUSDT","action":"sell","price":110,"position_size":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","action":"close"}`, rec.Body.String())
}

func TestPostSignal_StringCoercedNumbers(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postSignal(e, `{"symbol":"ETHUSDT","action":"SELL","price":"2540.5","position_size":"1.5"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","action":"open"}`, rec.Body.String())
}

func TestGetHistory_RoundTrip(t *testing.T) {
	e, _ := newTestServer(t)

	postSignal(e, `{"symbol":"ETHUSDT","action":"buy","price":100,"position_size":2}`)
	postSignal(e, `{"symbol":"ETHUSDT","action":"sell","price":110,"position_size":2}`)

	req := httptest.NewRequest(http.MethodGet, "/webhook/trade", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var items []dto.TradeHistoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2, "closed trade plus closing-log row")

	closed := items[0]
	assert.Equal(t, int64(1), closed.TradeID)
	assert.Equal(t, "close", closed.Action)
	assert.Equal(t, "ETHUSDT", closed.Symbol)
	assert.Equal(t, domain.SideBuy, closed.Side)
	assert.Equal(t, 2.0, closed.Quantity)
	assert.Equal(t, 110.0, closed.ExitPrice)
	assert.Equal(t, 110.0, closed.Price)
	assert.InDelta(t, 20.0, closed.RealizedPnL, 1e-9)

	logRow := items[1]
	assert.Equal(t, int64(2), logRow.TradeID)
	assert.Equal(t, domain.SideSell, logRow.Side)
	assert.Equal(t, 110.0, logRow.EntryPrice)
}

func TestStream_DeliversEventsUntilDisconnect(t *testing.T) {
	e, hub := newTestServer(t)

	srv := httptest.NewServer(e)
	defer srv.Close()

	// An event published before the subscriber attaches must not replay.
	postSignal(e, `{"symbol":"BTCUSDT","action":"buy","price":50000,"position_size":1}`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/trade/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	// Wait for the subscriber to be registered before publishing.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	rec := postSignal(e, `{"symbol":"ETHUSDT","action":"buy","price":100,"position_size":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))

	var event domain.TradeEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &event))
	assert.Equal(t, "ETHUSDT", event.Symbol, "no replay of pre-join events")
	assert.Equal(t, domain.ActionOpen, event.Action)
	assert.Equal(t, 100.0, event.EntryPrice)
	assert.Positive(t, event.Ts)

	cancel()

	// The server side deregisters the subscriber once the client is gone.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"healthy"`)
}
