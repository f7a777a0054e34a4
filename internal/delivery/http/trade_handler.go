package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"tradewire/internal/delivery/http/dto"
	"tradewire/internal/domain"
	"tradewire/internal/stream"
	"tradewire/internal/usecase"
)

// TradeHandler handles signal ingress, trade history and the live stream
type TradeHandler struct {
	tradeService *usecase.TradeService
	hub          *stream.Hub
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(tradeService *usecase.TradeService, hub *stream.Hub) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
		hub:          hub,
	}
}

// PostSignal ingests one trading signal
// POST /webhook/trade
func (h *TradeHandler) PostSignal(c echo.Context) error {
	var req dto.TradeSignalRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid JSON payload")
	}

	// Validation failures never touch the store or the broadcaster.
	if err := req.Validate(); err != nil {
		return BadRequestResponse(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.tradeService.ProcessSignal(ctx, usecase.Signal{
		Symbol:     req.Symbol,
		Side:       req.Side(),
		Price:      float64(*req.Price),
		Quantity:   float64(*req.PositionSize),
		Commission: req.CommissionValue(),
	})
	if err != nil {
		var consistencyErr *domain.ConsistencyError
		if errors.As(err, &consistencyErr) {
			log.Printf("[ERROR] %v", consistencyErr)
			return InternalServerErrorResponse(c, consistencyErr.Error())
		}
		log.Printf("[ERROR] Failed to process signal for %s: %v", req.Symbol, err)
		return InternalServerErrorResponse(c, "Failed to process signal")
	}

	if result.Action == usecase.ResultIgnored {
		return IgnoredResponse(c)
	}

	return AckResponse(c, result.Action)
}

// GetHistory returns every persisted trade formatted like stream events
// GET /webhook/trade
func (h *TradeHandler) GetHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trades, err := h.tradeService.History(ctx)
	if err != nil {
		log.Printf("[ERROR] Failed to load trade history: %v", err)
		return InternalServerErrorResponse(c, "Failed to load trade history")
	}

	items := make([]dto.TradeHistoryItem, 0, len(trades))
	for _, trade := range trades {
		items = append(items, dto.NewTradeHistoryItem(trade))
	}

	return c.JSON(http.StatusOK, items)
}

// Stream pushes trade events to the client as server-sent events until it
// disconnects. The subscriber sees only events published after it joined;
// history is served separately by GetHistory.
// GET /api/trade/stream
func (h *TradeHandler) Stream(c echo.Context) error {
	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for {
		event, err := sub.Next(ctx)
		if err != nil {
			// Client disconnected or the subscriber was removed.
			return nil
		}

		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("[ERROR] Failed to encode trade event %d: %v", event.TradeID, err)
			continue
		}

		if _, err := fmt.Fprintf(res, "data: %s\n\n", payload); err != nil {
			return nil
		}
		res.Flush()
	}
}
