package handlers

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"stocksim/internal/auth"
	dom "stocksim/internal/domain"
	"stocksim/internal/quote"
	"stocksim/internal/repo"
	"stocksim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memStore is a minimal in-memory UserRepo + TradeRepo for handler tests.
type memStore struct {
	cash   decimal.Decimal
	trades []dom.Trade
}

func (s *memStore) GetByUsername(context.Context, string) (dom.User, error) {
	return dom.User{}, pgx.ErrNoRows
}

func (s *memStore) GetByID(_ context.Context, id int64) (dom.User, error) {
	return dom.User{ID: id, Username: "alice", Cash: s.cash}, nil
}

func (s *memStore) Create(context.Context, string, string, decimal.Decimal) (dom.User, error) {
	return dom.User{}, nil
}

func (s *memStore) ExecuteBuy(_ context.Context, userID int64, symbol string, shares, price decimal.Decimal) (dom.Trade, error) {
	cost := shares.Mul(price)
	if s.cash.LessThan(cost) {
		return dom.Trade{}, repo.ErrInsufficientFunds
	}
	s.cash = s.cash.Sub(cost)
	t := dom.Trade{ID: int64(len(s.trades) + 1), UserID: userID, Symbol: symbol,
		Shares: shares, Price: price, Side: dom.SideBuy, CreatedAt: time.Now()}
	s.trades = append(s.trades, t)
	return t, nil
}

func (s *memStore) ExecuteSell(_ context.Context, userID int64, symbol string, shares, price decimal.Decimal) (dom.Trade, error) {
	s.cash = s.cash.Add(shares.Mul(price))
	t := dom.Trade{ID: int64(len(s.trades) + 1), UserID: userID, Symbol: symbol,
		Shares: shares.Neg(), Price: price, Side: dom.SideSell, CreatedAt: time.Now()}
	s.trades = append(s.trades, t)
	return t, nil
}

func (s *memStore) ListByUser(context.Context, int64) ([]dom.Trade, error) {
	out := make([]dom.Trade, 0, len(s.trades))
	for i := len(s.trades) - 1; i >= 0; i-- {
		out = append(out, s.trades[i])
	}
	return out, nil
}

func (s *memStore) HoldingsByUser(context.Context, int64) ([]dom.Holding, error) {
	sums := make(map[string]decimal.Decimal)
	order := []string{}
	for _, t := range s.trades {
		if _, ok := sums[t.Symbol]; !ok {
			order = append(order, t.Symbol)
		}
		sums[t.Symbol] = sums[t.Symbol].Add(t.Shares)
	}
	var out []dom.Holding
	for _, sym := range order {
		if sums[sym].IsPositive() {
			out = append(out, dom.Holding{Symbol: sym, Shares: sums[sym]})
		}
	}
	return out, nil
}

func (s *memStore) SharesHeld(_ context.Context, _ int64, symbol string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range s.trades {
		if t.Symbol == symbol {
			sum = sum.Add(t.Shares)
		}
	}
	return sum, nil
}

type fixedProvider struct {
	quotes map[string]quote.Quote
}

func (p *fixedProvider) Lookup(_ context.Context, symbol string) (quote.Quote, error) {
	q, ok := p.quotes[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return quote.Quote{}, quote.ErrUnknownSymbol
	}
	return q, nil
}

func newTradeRouter(t *testing.T, store *memStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetFuncMap(template.FuncMap{
		"usd": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	})
	r.LoadHTMLGlob("../../web/templates/*.html")

	svc := service.NewTradeService(store, store, &fixedProvider{quotes: map[string]quote.Quote{
		"NFLX": {Symbol: "NFLX", Name: "Netflix", Price: decimal.RequireFromString("150")},
	}}, nil)
	h := NewTradeHandler(svc)

	// stand-in for RequireSession
	g := r.Group("", func(c *gin.Context) { auth.SetUserID(c, 1) })
	g.GET("/", h.Index)
	g.POST("/buy", h.Buy)
	g.GET("/sell", h.ShowSell)
	g.POST("/sell", h.Sell)
	g.POST("/quote", h.GetQuote)
	g.GET("/history", h.History)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuyRedirectsHome(t *testing.T) {
	store := &memStore{cash: decimal.RequireFromString("10000")}
	r := newTradeRouter(t, store)

	w := postForm(r, "/buy", url.Values{"symbol": {"NFLX"}, "shares": {"10"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect = %q, want /", loc)
	}
	if !store.cash.Equal(decimal.RequireFromString("8500")) {
		t.Errorf("cash = %s, want 8500", store.cash)
	}
}

func TestBuyRejectionsRenderApology(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{"invalid symbol", url.Values{"symbol": {"NOPE"}, "shares": {"1"}}, "invalid stock symbol"},
		{"invalid shares", url.Values{"symbol": {"NFLX"}, "shares": {"abc"}}, "valid number of shares"},
		{"insufficient funds", url.Values{"symbol": {"NFLX"}, "shares": {"9999"}}, "insufficient funds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{cash: decimal.RequireFromString("10000")}
			r := newTradeRouter(t, store)

			w := postForm(r, "/buy", tt.form)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantMsg) {
				t.Errorf("body does not mention %q:\n%s", tt.wantMsg, w.Body.String())
			}
			if len(store.trades) != 0 {
				t.Errorf("ledger rows = %d on rejected buy, want 0", len(store.trades))
			}
		})
	}
}

func TestSellMoreThanHeldRenders400(t *testing.T) {
	store := &memStore{cash: decimal.RequireFromString("10000")}
	r := newTradeRouter(t, store)

	if w := postForm(r, "/buy", url.Values{"symbol": {"NFLX"}, "shares": {"2"}}); w.Code != http.StatusSeeOther {
		t.Fatalf("buy status = %d, want 303", w.Code)
	}
	w := postForm(r, "/sell", url.Values{"symbol": {"NFLX"}, "shares": {"3"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestIndexRendersPortfolio(t *testing.T) {
	store := &memStore{cash: decimal.RequireFromString("10000")}
	r := newTradeRouter(t, store)

	if w := postForm(r, "/buy", url.Values{"symbol": {"NFLX"}, "shares": {"10"}}); w.Code != http.StatusSeeOther {
		t.Fatalf("buy status = %d, want 303", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"NFLX", "$1500.00", "$8500.00", "$10000.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("portfolio page missing %q", want)
		}
	}
}

func TestHistoryRendersTrades(t *testing.T) {
	store := &memStore{cash: decimal.RequireFromString("10000")}
	r := newTradeRouter(t, store)

	if w := postForm(r, "/buy", url.Values{"symbol": {"NFLX"}, "shares": {"10"}}); w.Code != http.StatusSeeOther {
		t.Fatalf("buy status = %d, want 303", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "NFLX") || !strings.Contains(body, "buy") {
		t.Errorf("history page missing trade row:\n%s", body)
	}
}

func TestQuoteRendersPrice(t *testing.T) {
	store := &memStore{cash: decimal.RequireFromString("10000")}
	r := newTradeRouter(t, store)

	w := postForm(r, "/quote", url.Values{"symbol": {"NFLX"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Netflix") || !strings.Contains(w.Body.String(), "$150.00") {
		t.Errorf("quote page missing name or price:\n%s", w.Body.String())
	}
}
