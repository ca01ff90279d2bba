package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmcampos/shopcart/internal/auth"
	"github.com/dmcampos/shopcart/internal/cart"
	"github.com/dmcampos/shopcart/internal/item"
	"github.com/dmcampos/shopcart/internal/order"
	"github.com/dmcampos/shopcart/internal/user"
)

//
// ===== IN-MEMORY STUB REPOS =====
//

type stubUsers struct{ byEmail map[string]*user.User }

func (s *stubUsers) Create(_ context.Context, u *user.User) error {
	if _, ok := s.byEmail[u.Email]; ok {
		return user.ErrAlreadyExist
	}
	cp := *u
	s.byEmail[u.Email] = &cp
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type stubItems struct{ items map[string]*item.Item }

func (s *stubItems) Create(_ context.Context, it *item.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	cp := *it
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.items[it.ID] = &cp
	return nil
}

func (s *stubItems) GetByID(_ context.Context, id string) (*item.Item, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (s *stubItems) List(_ context.Context, _ item.Query) ([]item.Item, error) {
	out := make([]item.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, *it)
	}
	return out, nil
}

func (s *stubItems) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *stubItems) PricesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range ids {
		if it, ok := s.items[id]; ok {
			out[id] = it.Price
		}
	}
	return out, nil
}

type stubCarts struct{ carts map[string]*cart.Cart }

func (s *stubCarts) GetByUser(_ context.Context, userID string) (*cart.Cart, error) {
	c, ok := s.carts[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	cp := *c
	cp.Items = append([]cart.Line(nil), c.Items...)
	return &cp, nil
}

func (s *stubCarts) Save(_ context.Context, c *cart.Cart) error {
	cp := *c
	cp.Items = append([]cart.Line(nil), c.Items...)
	s.carts[c.UserID] = &cp
	return nil
}

func (s *stubCarts) DeleteByUser(_ context.Context, userID string) (bool, error) {
	_, ok := s.carts[userID]
	delete(s.carts, userID)
	return ok, nil
}

// stubOrders keeps the transactional contract of the pg repo: creating an
// order deletes the owner's cart.
type stubOrders struct {
	carts  *stubCarts
	orders []*order.Order
}

func (s *stubOrders) Create(_ context.Context, o *order.Order) error {
	cp := *o
	s.orders = append(s.orders, &cp)
	delete(s.carts.carts, o.UserID)
	return nil
}

func (s *stubOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s *stubOrders) ListByUser(_ context.Context, userID string, _, _ int) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

//
// ===== TEST HARNESS =====
//

type env struct {
	router *gin.Engine
	items  *stubItems
	carts  *stubCarts
	orders *stubOrders
}

func newEnv() *env {
	gin.SetMode(gin.TestMode)

	users := &stubUsers{byEmail: make(map[string]*user.User)}
	items := &stubItems{items: make(map[string]*item.Item)}
	carts := &stubCarts{carts: make(map[string]*cart.Cart)}
	orders := &stubOrders{carts: carts}
	tokens := auth.NewTokens("test-secret", time.Hour)

	r := newRouter(routerDeps{
		users:    user.NewService(users, tokens),
		items:    items,
		carts:    cart.NewService(carts, items),
		checkout: order.NewService(carts, orders),
		orders:   orders,
		tokens:   tokens,
	})
	return &env{router: r, items: items, carts: carts, orders: orders}
}

func (e *env) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) signup(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/signup", "", fmt.Sprintf(`{"name":"Test","email":%q,"password":"pw"}`, email))
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.Token == "" {
		t.Fatalf("signup body=%s err=%v", w.Body.String(), err)
	}
	return got.Token
}

func (e *env) seedItem(t *testing.T, id, price string) {
	t.Helper()
	e.items.items[id] = &item.Item{ID: id, Name: "Item " + id, Price: price, Stock: 10}
}

type cartBody struct {
	Items []struct {
		ItemID   string `json:"item_id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Total string `json:"total"`
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartBody {
	t.Helper()
	var got cartBody
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid cart json: %v body=%s", err, w.Body.String())
	}
	return got
}

//
// ===== TESTS =====
//

func TestSignupAndLogin(t *testing.T) {
	e := newEnv()
	e.signup(t, "ada@example.com")

	// duplicate email => 400
	{
		w := e.do(t, http.MethodPost, "/signup", "", `{"name":"Twin","email":"ada@example.com","password":"pw"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	}

	// missing fields => 400
	{
		w := e.do(t, http.MethodPost, "/signup", "", `{"name":"NoCreds"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	}

	// good login => 200 + token
	{
		w := e.do(t, http.MethodPost, "/login", "", `{"email":"ada@example.com","password":"pw"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}

	// wrong password => 400
	{
		w := e.do(t, http.MethodPost, "/login", "", `{"email":"ada@example.com","password":"nope"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newEnv()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/cart"},
		{http.MethodPut, "/cart"},
		{http.MethodDelete, "/cart"},
		{http.MethodPost, "/checkout"},
		{http.MethodGet, "/orders"},
	} {
		w := e.do(t, tc.method, tc.path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, w.Code)
		}
	}

	// garbage token too
	w := e.do(t, http.MethodGet, "/cart", "garbage", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", w.Code)
	}
}

func TestAuthHeaderRequiresBearerScheme(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")

	// a valid token is not enough without the Bearer scheme
	for _, header := range []string{tok, "Bearer" + tok, "Basic " + tok, "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, w.Code)
		}
	}

	// with the scheme it goes through
	w := e.do(t, http.MethodGet, "/cart", tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetCart_EmptyValueWhenAbsent(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")

	w := e.do(t, http.MethodGet, "/cart", tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := decodeCart(t, w)
	if len(got.Items) != 0 || got.Total != "0.00" {
		t.Fatalf("expected empty cart, got %+v", got)
	}
}

func TestCartMutations(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")
	e.seedItem(t, "a", "10.00")
	e.seedItem(t, "b", "5.00")

	// add a x2 => total 20.00
	{
		w := e.do(t, http.MethodPost, "/cart", tok, `{"itemId":"a","quantity":2}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		if got := decodeCart(t, w); got.Total != "20.00" {
			t.Fatalf("total=%q, expected 20.00", got.Total)
		}
	}

	// add b x1 => total 25.00
	{
		w := e.do(t, http.MethodPost, "/cart", tok, `{"itemId":"b","quantity":1}`)
		if got := decodeCart(t, w); got.Total != "25.00" {
			t.Fatalf("total=%q, expected 25.00", got.Total)
		}
	}

	// invalid quantity => 400, cart untouched
	{
		w := e.do(t, http.MethodPost, "/cart", tok, `{"itemId":"a","quantity":0}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	}

	// put a => 0 removes the line, total 5.00
	{
		w := e.do(t, http.MethodPut, "/cart", tok, `{"itemId":"a","quantity":0}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		got := decodeCart(t, w)
		if len(got.Items) != 1 || got.Items[0].ItemID != "b" || got.Total != "5.00" {
			t.Fatalf("unexpected cart after removal: %+v", got)
		}
	}

	// put without itemId => 400
	{
		w := e.do(t, http.MethodPut, "/cart", tok, `{"quantity":3}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
		}
	}

	// put line that is not in the cart => 404
	{
		w := e.do(t, http.MethodPut, "/cart", tok, `{"itemId":"a","quantity":3}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
		}
	}
}

func TestUpdateCart_NoCart(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")

	w := e.do(t, http.MethodPut, "/cart", tok, `{"itemId":"a","quantity":1}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestClearCart_Idempotent(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")
	e.seedItem(t, "a", "10.00")
	e.do(t, http.MethodPost, "/cart", tok, `{"itemId":"a","quantity":1}`)

	for i := 0; i < 2; i++ {
		w := e.do(t, http.MethodDelete, "/cart", tok, "")
		if w.Code != http.StatusOK {
			t.Fatalf("clear #%d: status=%d body=%s", i+1, w.Code, w.Body.String())
		}
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")

	w := e.do(t, http.MethodPost, "/checkout", tok, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
	if len(e.orders.orders) != 0 {
		t.Fatalf("no order may exist after failed checkout")
	}
}

func TestCheckout_Flow(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")
	e.seedItem(t, "a", "10.00")
	e.seedItem(t, "b", "5.00")

	e.do(t, http.MethodPost, "/cart", tok, `{"itemId":"a","quantity":2}`)
	e.do(t, http.MethodPost, "/cart", tok, `{"itemId":"b","quantity":1}`)
	e.do(t, http.MethodPut, "/cart", tok, `{"itemId":"a","quantity":0}`)

	w := e.do(t, http.MethodPost, "/checkout", tok, `{"shippingAddress":"12 Main St","paymentMethod":"card"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Message string      `json:"message"`
		Order   order.Order `json:"order"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Message != "Order placed" {
		t.Fatalf("message=%q", got.Message)
	}
	if got.Order.Total != "5.00" || got.Order.Status != order.StatusProcessing {
		t.Fatalf("unexpected order: %+v", got.Order)
	}
	if len(got.Order.Items) != 1 || got.Order.Items[0].ItemID != "b" || got.Order.Items[0].Quantity != 1 {
		t.Fatalf("unexpected order items: %+v", got.Order.Items)
	}

	// cart is gone afterwards
	{
		w := e.do(t, http.MethodGet, "/cart", tok, "")
		if got := decodeCart(t, w); len(got.Items) != 0 || got.Total != "0.00" {
			t.Fatalf("cart should be empty after checkout, got %+v", got)
		}
	}

	// order shows up in history
	{
		w := e.do(t, http.MethodGet, "/orders", tok, "")
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		var list []order.Order
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
			t.Fatalf("orders body=%s err=%v", w.Body.String(), err)
		}
	}
}

func TestDeletedItemPricesAsZero(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")
	e.seedItem(t, "a", "10.00")
	e.seedItem(t, "b", "5.00")

	e.do(t, http.MethodPost, "/cart", tok, `{"itemId":"a","quantity":1}`)
	e.do(t, http.MethodPost, "/cart", tok, `{"itemId":"b","quantity":1}`)

	// item disappears from the catalog
	{
		w := e.do(t, http.MethodDelete, "/items/a", tok, "")
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete item status=%d", w.Code)
		}
	}

	// next mutation reprices the dangling line at zero
	w := e.do(t, http.MethodPut, "/cart", tok, `{"itemId":"b","quantity":2}`)
	got := decodeCart(t, w)
	if got.Total != "10.00" {
		t.Fatalf("total=%q, expected 10.00 (a gone, b x2)", got.Total)
	}
	if len(got.Items) != 2 {
		t.Fatalf("dangling line must stay in the cart: %+v", got.Items)
	}
}

func TestItemsEndpoints(t *testing.T) {
	e := newEnv()
	tok := e.signup(t, "ada@example.com")

	// empty catalog lists as [], not null
	{
		w := e.do(t, http.MethodGet, "/items", "", "")
		if w.Code != http.StatusOK || w.Body.String() == "null" {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}

	// catalog mutation without a token => 401
	{
		w := e.do(t, http.MethodPost, "/items", "", `{"name":"Keyboard","price":"49.90","stock":3}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d body=%s", w.Code, w.Body.String())
		}
	}

	// create + fetch
	{
		w := e.do(t, http.MethodPost, "/items", tok, `{"name":"Keyboard","price":"49.90","stock":3}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		var it item.Item
		if err := json.Unmarshal(w.Body.Bytes(), &it); err != nil || it.ID == "" {
			t.Fatalf("body=%s err=%v", w.Body.String(), err)
		}
		g := e.do(t, http.MethodGet, "/items/"+it.ID, "", "")
		if g.Code != http.StatusOK {
			t.Fatalf("get status=%d", g.Code)
		}
	}

	// invalid create => 400
	{
		w := e.do(t, http.MethodPost, "/items", tok, `{"description":"no name or price"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	}

	// unknown id => 404
	{
		w := e.do(t, http.MethodGet, "/items/nope", "", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	}
}
