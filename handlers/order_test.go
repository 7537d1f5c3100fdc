package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"inventory-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// Mock publisher for testing.
type mockPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
	err    error
}

func (m *mockPublisher) PublishOrderEvent(_ context.Context, event models.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func setupOrderTest(t *testing.T, publisher OrderEventPublisher) (*gin.Engine, *gorm.DB) {
	store, db := setupTestStore(t)
	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))

	productHandler := NewProductHandler(store, nil, logger)
	orderHandler := NewOrderHandler(store, publisher, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/products", productHandler.CreateProduct)
	router.GET("/orders", orderHandler.GetOrders)
	router.GET("/orders/:id", orderHandler.GetOrder)
	router.POST("/orders", orderHandler.CreateOrder)

	postJSON(router, "/products", `{"name":"A","price":5.0,"category":"Letters","quantity":10}`)
	postJSON(router, "/products", `{"name":"B","price":3.0,"category":"Letters","quantity":10}`)

	return router, db
}

func decodeOrders(t *testing.T, w *httptest.ResponseRecorder) []models.Order {
	t.Helper()
	var orders []models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("Failed to decode orders: %v (body %s)", err, w.Body.String())
	}
	return orders
}

func TestOrderHandler_CreateOrder_MultipleProducts(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	w := postJSON(router, "/orders", `{"customer_name":"Alice","products":[{"name":"A","quantity":2},{"name":"B","quantity":1}]}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d (%s)", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp models.CreateOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.TotalPrice != 13.0 {
		t.Errorf("Expected total price 13.0, got %v", resp.TotalPrice)
	}
	if resp.OrderID == 0 || resp.Message == "" {
		t.Errorf("Unexpected response %+v", resp)
	}

	orders := decodeOrders(t, get(router, "/orders"))
	if len(orders) != 1 {
		t.Fatalf("Expected 1 order, got %d", len(orders))
	}
	order := orders[0]
	if order.Status != models.OrderStatusComplete {
		t.Errorf("Expected status %q, got %q", models.OrderStatusComplete, order.Status)
	}
	if len(order.Products) != 2 {
		t.Fatalf("Expected 2 line items, got %d", len(order.Products))
	}
	if order.Products[0].LineTotal != 10.0 || order.Products[1].LineTotal != 3.0 {
		t.Errorf("Expected line totals 10.0 and 3.0, got %v and %v", order.Products[0].LineTotal, order.Products[1].LineTotal)
	}
}

func TestOrderHandler_CreateOrder_SingleProduct(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	w := postJSON(router, "/orders", `{"customer_name":"Bob","product_name":"B","quantity":4}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d (%s)", http.StatusCreated, w.Code, w.Body.String())
	}

	w = get(router, "/orders/1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("Failed to decode order: %v", err)
	}
	want := models.LineItem{Name: "B", Quantity: 4, Price: 3.0, LineTotal: 12.0}
	if order.CustomerName != "Bob" || len(order.Products) != 1 || order.Products[0] != want {
		t.Errorf("Unexpected order %+v", order)
	}
}

func TestOrderHandler_CreateOrder_MissingProduct(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	w := postJSON(router, "/orders", `{"customer_name":"Alice","products":[{"name":"A","quantity":2},{"name":"Z","quantity":1}]}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if w.Body.String() != `{"message":"Product Z not found"}` {
		t.Errorf("Unexpected body %s", w.Body.String())
	}

	if orders := decodeOrders(t, get(router, "/orders")); len(orders) != 0 {
		t.Errorf("Expected no orders, got %d", len(orders))
	}
}

func TestOrderHandler_CreateOrder_SingleProductMissing(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	w := postJSON(router, "/orders", `{"customer_name":"Bob","product_name":"Nope","quantity":1}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if w.Body.String() != `{"message":"Product not found"}` {
		t.Errorf("Unexpected body %s", w.Body.String())
	}

	if orders := decodeOrders(t, get(router, "/orders")); len(orders) != 0 {
		t.Errorf("Expected no orders, got %d", len(orders))
	}
}

func TestOrderHandler_CreateOrder_EmptyStrings(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	w := postJSON(router, "/orders", `{"customer_name":"","products":[{"name":"A","quantity":1}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d (%s)", http.StatusCreated, w.Code, w.Body.String())
	}

	w = postJSON(router, "/orders", `{"customer_name":"Alice","products":[{"name":"","quantity":1}]}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d (%s)", http.StatusNotFound, w.Code, w.Body.String())
	}
	if w.Body.String() != `{"message":"Product  not found"}` {
		t.Errorf("Unexpected body %s", w.Body.String())
	}

	w = postJSON(router, "/orders", `{"customer_name":"Bob","product_name":"","quantity":1}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d (%s)", http.StatusNotFound, w.Code, w.Body.String())
	}
	if w.Body.String() != `{"message":"Product not found"}` {
		t.Errorf("Unexpected body %s", w.Body.String())
	}

	orders := decodeOrders(t, get(router, "/orders"))
	if len(orders) != 1 || orders[0].CustomerName != "" {
		t.Errorf("Unexpected orders %+v", orders)
	}
}

func TestOrderHandler_CreateOrder_BadRequest(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"no line items", `{"customer_name":"Alice"}`},
		{"empty products", `{"customer_name":"Alice","products":[]}`},
		{"missing customer", `{"products":[{"name":"A","quantity":1}]}`},
		{"line without name", `{"customer_name":"Alice","products":[{"quantity":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/orders", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status %d, got %d (%s)", http.StatusBadRequest, w.Code, w.Body.String())
			}
		})
	}
}

func TestOrderHandler_CreateOrder_PublishesEvent(t *testing.T) {
	publisher := &mockPublisher{}
	router, _ := setupOrderTest(t, publisher)

	w := postJSON(router, "/orders", `{"customer_name":"Alice","products":[{"name":"A","quantity":1}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.EventType != models.EventOrderCreated || event.OrderID != 1 || event.TotalPrice != 5.0 || event.LineCount != 1 {
		t.Errorf("Unexpected event %+v", event)
	}
}

func TestOrderHandler_CreateOrder_PublishFailureStillCreates(t *testing.T) {
	publisher := &mockPublisher{err: errors.New("broker down")}
	router, _ := setupOrderTest(t, publisher)

	w := postJSON(router, "/orders", `{"customer_name":"Alice","products":[{"name":"A","quantity":1}]}`)
	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	if orders := decodeOrders(t, get(router, "/orders")); len(orders) != 1 {
		t.Errorf("Expected 1 order, got %d", len(orders))
	}
}

func TestOrderHandler_MissingProductDoesNotPublish(t *testing.T) {
	publisher := &mockPublisher{}
	router, _ := setupOrderTest(t, publisher)

	postJSON(router, "/orders", `{"customer_name":"Alice","products":[{"name":"Z","quantity":1}]}`)

	if len(publisher.events) != 0 {
		t.Errorf("Expected no events, got %d", len(publisher.events))
	}
}

func TestOrderHandler_GetOrder_NotFound(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	w := get(router, "/orders/999")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestOrderHandler_GetOrder_InvalidID(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	w := get(router, "/orders/first")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestOrderHandler_GetOrders_StableOrder(t *testing.T) {
	router, _ := setupOrderTest(t, nil)

	for _, customer := range []string{"Carol", "Alice", "Bob"} {
		postJSON(router, "/orders", `{"customer_name":"`+customer+`","products":[{"name":"A","quantity":1}]}`)
	}

	first := get(router, "/orders").Body.String()
	second := get(router, "/orders").Body.String()
	if first != second {
		t.Errorf("Expected identical listings, got %s and %s", first, second)
	}

	orders := decodeOrders(t, get(router, "/orders"))
	if len(orders) != 3 || orders[0].CustomerName != "Carol" || orders[2].CustomerName != "Bob" {
		t.Errorf("Unexpected order listing %+v", orders)
	}
}
