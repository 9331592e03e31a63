package handlers

import (
	"errors"
	"net/http"

	"stocksim/internal/auth"
	"stocksim/internal/dto"
	"stocksim/internal/service"

	"github.com/gin-gonic/gin"
)

// TradeHandler serves the portfolio, buy/sell/quote forms and the history page.
type TradeHandler struct {
	svc *service.TradeService
}

func NewTradeHandler(svc *service.TradeService) *TradeHandler {
	return &TradeHandler{svc: svc}
}

// Index shows the user's portfolio: derived positions priced at the current
// quote, plus cash and the grand total.
func (h *TradeHandler) Index(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	view, err := h.svc.Portfolio(c.Request.Context(), userID)
	if err != nil {
		apology(c, http.StatusInternalServerError, "could not load portfolio")
		return
	}
	c.HTML(http.StatusOK, "index.html", view)
}

// ShowBuy renders the buy form.
func (h *TradeHandler) ShowBuy(c *gin.Context) {
	c.HTML(http.StatusOK, "buy.html", nil)
}

// Buy executes a buy order and redirects home.
func (h *TradeHandler) Buy(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var form dto.TradeForm
	_ = c.ShouldBind(&form)

	_, err := h.svc.Buy(c.Request.Context(), userID, form.Symbol, form.Shares)
	if err != nil {
		renderTradeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowSell renders the sell form with the symbols the user currently holds.
func (h *TradeHandler) ShowSell(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	symbols, err := h.svc.HeldSymbols(c.Request.Context(), userID)
	if err != nil {
		apology(c, http.StatusInternalServerError, "could not load holdings")
		return
	}
	c.HTML(http.StatusOK, "sell.html", gin.H{"Symbols": symbols})
}

// Sell executes a sell order and redirects home.
func (h *TradeHandler) Sell(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var form dto.TradeForm
	_ = c.ShouldBind(&form)

	_, err := h.svc.Sell(c.Request.Context(), userID, form.Symbol, form.Shares)
	if err != nil {
		renderTradeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowQuote renders the quote form.
func (h *TradeHandler) ShowQuote(c *gin.Context) {
	c.HTML(http.StatusOK, "quote.html", nil)
}

// GetQuote looks up a symbol and shows its current price.
func (h *TradeHandler) GetQuote(c *gin.Context) {
	var form dto.QuoteForm
	_ = c.ShouldBind(&form)

	q, err := h.svc.Quote(c.Request.Context(), form.Symbol)
	if err != nil {
		renderTradeError(c, err)
		return
	}
	c.HTML(http.StatusOK, "quoted.html", q)
}

// History lists all of the user's trades, most recent first.
func (h *TradeHandler) History(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	list, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		apology(c, http.StatusInternalServerError, "could not load history")
		return
	}
	c.HTML(http.StatusOK, "history.html", gin.H{"Trades": list})
}

// renderTradeError maps service errors onto apology pages: validation and
// business-rule failures get a 400, everything else a generic 500.
func renderTradeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSymbol),
		errors.Is(err, service.ErrSymbolRequired),
		errors.Is(err, service.ErrSharesRequired),
		errors.Is(err, service.ErrInvalidShares),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInsufficientShares):
		apology(c, http.StatusBadRequest, err.Error())
	default:
		apology(c, http.StatusInternalServerError, "internal error")
	}
}
