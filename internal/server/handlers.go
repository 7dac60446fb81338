package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/marketdata"
	"stock-research-agent/internal/metrics"
	"stock-research-agent/internal/pipeline"
	"stock-research-agent/internal/recorder"
	"stock-research-agent/internal/report"
)

const maxSymbolLen = 12

type handler struct {
	analyzer      *pipeline.Analyzer
	rec           recorder.Recorder
	defaultPeriod string
}

type errorResponse struct {
	Error string `json:"error"`
}

type analyzeRequest struct {
	Ticker    string `json:"ticker"`
	Timeframe string `json:"timeframe"`
}

type sentimentRequest struct {
	Texts []string `json:"texts"`
}

func (h *handler) register(e *echo.Echo) {
	e.GET("/", h.root)
	e.GET("/health", h.health)

	g := e.Group("/api/stocks")
	g.GET("/analyze/:symbol", h.analyzeGet)
	g.POST("/analyze", h.analyzePost)
	g.GET("/report/:symbol", h.reportGet)
	g.POST("/sentiment/analyze", h.sentimentPost)
	g.GET("/news/:symbol", h.newsGet)
	g.GET("/history/:symbol", h.historyGet)
}

func (h *handler) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": "stock-research-agent",
		"endpoints": []string{
			"GET /health",
			"GET /api/stocks/analyze/{symbol}",
			"POST /api/stocks/analyze",
			"GET /api/stocks/report/{symbol}",
			"POST /api/stocks/sentiment/analyze",
			"GET /api/stocks/news/{symbol}",
			"GET /api/stocks/history/{symbol}",
			"GET /metrics",
		},
	})
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":            "ok",
		"sentiment_enabled": h.analyzer.SentimentEnabled(),
	})
}

func (h *handler) analyzeGet(c echo.Context) error {
	symbol, err := cleanSymbol(c.Param("symbol"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	period := c.QueryParam("period")
	return h.analyze(c, symbol, period)
}

func (h *handler) analyzePost(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	symbol, err := cleanSymbol(req.Ticker)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	return h.analyze(c, symbol, req.Timeframe)
}

func (h *handler) analyze(c echo.Context, symbol, period string) error {
	if period == "" {
		period = h.defaultPeriod
	}
	if !marketdata.ValidPeriod(period) {
		return c.JSON(http.StatusBadRequest,
			errorResponse{Error: "invalid period: " + period})
	}

	result, err := h.analyzer.Analyze(c.Request().Context(), symbol, period)
	if err != nil {
		metrics.RecordError("analyze")
		if errors.Is(err, marketdata.ErrNoData) {
			return c.JSON(http.StatusBadRequest,
				errorResponse{Error: "no price data for symbol " + symbol})
		}
		logger.ErrorWithErr(c.Request().Context(), "analysis failed", err, "symbol", symbol)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "analysis failed"})
	}
	metrics.RecordAnalysis(result.Decision.Action)
	return c.JSON(http.StatusOK, result)
}

func (h *handler) reportGet(c echo.Context) error {
	symbol, err := cleanSymbol(c.Param("symbol"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	period := c.QueryParam("period")
	if period == "" {
		period = h.defaultPeriod
	}
	if !marketdata.ValidPeriod(period) {
		return c.JSON(http.StatusBadRequest,
			errorResponse{Error: "invalid period: " + period})
	}

	result, err := h.analyzer.Analyze(c.Request().Context(), symbol, period)
	if err != nil {
		metrics.RecordError("report")
		if errors.Is(err, marketdata.ErrNoData) {
			return c.JSON(http.StatusBadRequest,
				errorResponse{Error: "no price data for symbol " + symbol})
		}
		logger.ErrorWithErr(c.Request().Context(), "report failed", err, "symbol", symbol)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "report generation failed"})
	}
	metrics.RecordAnalysis(result.Decision.Action)
	return c.JSON(http.StatusOK, report.Generate(result))
}

func (h *handler) sentimentPost(c echo.Context) error {
	var req sentimentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	agg, ok := h.analyzer.AnalyzeSentiment(c.Request().Context(), req.Texts)
	if !ok {
		return c.JSON(http.StatusServiceUnavailable,
			errorResponse{Error: "sentiment analysis is not configured"})
	}
	return c.JSON(http.StatusOK, agg)
}

func (h *handler) newsGet(c echo.Context) error {
	symbol, err := cleanSymbol(c.Param("symbol"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	limit := 5
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 20 {
			return c.JSON(http.StatusBadRequest,
				errorResponse{Error: "limit must be between 1 and 20"})
		}
		limit = n
	}

	headlines, err := h.analyzer.News(c.Request().Context(), symbol, limit)
	if err != nil {
		metrics.RecordError("news")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "news fetch failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"symbol":    symbol,
		"count":     len(headlines),
		"headlines": headlines,
	})
}

func (h *handler) historyGet(c echo.Context) error {
	symbol, err := cleanSymbol(c.Param("symbol"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return c.JSON(http.StatusBadRequest,
				errorResponse{Error: "limit must be between 1 and 100"})
		}
		limit = n
	}

	records, err := h.rec.Recent(symbol, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "history lookup failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"symbol":  symbol,
		"count":   len(records),
		"records": records,
	})
}

func cleanSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", errors.New("symbol is required")
	}
	if len(symbol) > maxSymbolLen {
		return "", errors.New("symbol is too long")
	}
	return symbol, nil
}
