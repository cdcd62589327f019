package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	orderrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/order"
	ordersvc "github.com/M-ahmad144/Lymora-Backend/internal/service/order"
	"github.com/shopspring/decimal"
)

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:     "order-1",
		UserID: "u-1",
		Items: []domain.OrderItem{
			{ID: "item-1", ProductID: "p-1", Name: "Mug", Quantity: 2, Price: decimal.RequireFromString("30")},
		},
		PaymentMethod: "PayPal",
		ItemsPrice:    decimal.RequireFromString("60"),
		ShippingPrice: decimal.RequireFromString("10"),
		TaxPrice:      decimal.RequireFromString("9"),
		TotalPrice:    decimal.RequireFromString("79"),
		CreatedAt:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateOrder(t *testing.T) {
	orderSvc := &stubOrderService{order: sampleOrder()}
	deps := defaultDeps()
	deps.OrderSvc = orderSvc
	router := newTestRouter(t, deps)

	body := `{"orderItems":[{"product":"p-1","qty":2,"price":"1.00"}],"paymentMethod":"PayPal"}`
	rec := doRequest(router, http.MethodPost, "/api/orders", body, asUser())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	got := decodeBody(t, rec)
	if got["itemsPrice"] != "60.00" || got["shippingPrice"] != "10.00" ||
		got["taxPrice"] != "9.00" || got["totalPrice"] != "79.00" {
		t.Fatalf("prices not rendered with two decimals: %v", got)
	}
	if orderSvc.createdBy != "u-1" {
		t.Fatalf("order attributed to %q, want the authenticated user", orderSvc.createdBy)
	}
	if len(orderSvc.createInput.Items) != 1 || orderSvc.createInput.Items[0].ProductID != "p-1" {
		t.Fatalf("unexpected create input %+v", orderSvc.createInput)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	deps := defaultDeps()
	deps.OrderSvc = &stubOrderService{createErr: ordersvc.ErrNoItems}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodPost, "/api/orders", `{"orderItems":[]}`, asUser())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "no order items" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestCreateOrder_ValidationErrorIsBadRequest(t *testing.T) {
	deps := defaultDeps()
	deps.OrderSvc = &stubOrderService{createErr: &ordersvc.ValidationError{Reason: "invalid quantity 0 for product p-1"}}
	router := newTestRouter(t, deps)

	body := `{"orderItems":[{"product":"p-1","qty":0}],"paymentMethod":"PayPal"}`
	rec := doRequest(router, http.MethodPost, "/api/orders", body, asUser())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["error"]; got != "invalid quantity 0 for product p-1" {
		t.Fatalf("caller should see the validation reason, got %v", got)
	}
}

func TestCreateOrder_MissingProduct(t *testing.T) {
	deps := defaultDeps()
	deps.OrderSvc = &stubOrderService{createErr: &ordersvc.NotFoundProductError{ProductID: "p-ghost"}}
	router := newTestRouter(t, deps)

	body := `{"orderItems":[{"product":"p-ghost","qty":1}]}`
	rec := doRequest(router, http.MethodPost, "/api/orders", body, asUser())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "product not found: p-ghost" {
		t.Fatalf("error should name the missing product, got %v", got)
	}
}

func TestMarkPaid(t *testing.T) {
	paid := sampleOrder()
	now := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	paid.IsPaid = true
	paid.PaidAt = &now
	paid.PaymentResult = &domain.PaymentResult{TransactionID: "txn-1", Status: "COMPLETED"}

	orderSvc := &stubOrderService{order: paid}
	deps := defaultDeps()
	deps.OrderSvc = orderSvc
	router := newTestRouter(t, deps)

	body := `{"id":"txn-1","status":"COMPLETED","update_time":"2024-06-02T09:30:00Z","payer":{"email_address":"buyer@example.com"}}`
	rec := doRequest(router, http.MethodPut, "/api/orders/order-1/pay", body, asUser())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if orderSvc.paidID != "order-1" {
		t.Fatalf("paid id = %q", orderSvc.paidID)
	}
	if orderSvc.paymentInput.PayerEmail != "buyer@example.com" {
		t.Fatalf("payer email not forwarded: %+v", orderSvc.paymentInput)
	}
	got := decodeBody(t, rec)
	if got["isPaid"] != true {
		t.Fatalf("expected isPaid true: %v", got)
	}
}

func TestMarkPaid_AlreadyPaid(t *testing.T) {
	deps := defaultDeps()
	deps.OrderSvc = &stubOrderService{markPaidErr: orderrepo.ErrAlreadyPaid}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodPut, "/api/orders/order-1/pay", `{"id":"txn-2"}`, asUser())
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	deps := defaultDeps()
	deps.OrderSvc = &stubOrderService{markPaidErr: domain.ErrNotFound}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodPut, "/api/orders/missing/pay", `{"id":"txn-3"}`, asUser())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func signBody(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestMarkPaid_SignatureVerification(t *testing.T) {
	orderSvc := &stubOrderService{order: sampleOrder()}
	deps := defaultDeps()
	deps.OrderSvc = orderSvc
	deps.PaymentWebhookSecret = "hush"
	router := newTestRouter(t, deps)

	body := `{"id":"txn-4","status":"COMPLETED"}`

	rec := doRequest(router, http.MethodPut, "/api/orders/order-1/pay", body, asUser())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unsigned: status = %d, want 401", rec.Code)
	}

	rec = doRequest(router, http.MethodPut, "/api/orders/order-1/pay", body, asUser(map[string]string{
		"X-Payment-Signature": signBody(body, "wrong-secret"),
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature: status = %d, want 401", rec.Code)
	}
	if orderSvc.paidID != "" {
		t.Fatal("order must not be paid on a rejected signature")
	}

	rec = doRequest(router, http.MethodPut, "/api/orders/order-1/pay", body, asUser(map[string]string{
		"X-Payment-Signature": signBody(body, "hush"),
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid signature: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestMarkDelivered(t *testing.T) {
	delivered := sampleOrder()
	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	delivered.IsDelivered = true
	delivered.DeliveredAt = &now

	orderSvc := &stubOrderService{order: delivered}
	deps := defaultDeps()
	deps.OrderSvc = orderSvc
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodPut, "/api/orders/order-1/deliver", "", asUser())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: status = %d, want 403", rec.Code)
	}
	if orderSvc.deliveredCalls != 0 {
		t.Fatal("service must not be reached without admin rights")
	}

	rec = doRequest(router, http.MethodPut, "/api/orders/order-1/deliver", "", asAdmin())
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
	if decodeBody(t, rec)["isDelivered"] != true {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestMarkDelivered_AlreadyDelivered(t *testing.T) {
	deps := defaultDeps()
	deps.OrderSvc = &stubOrderService{deliveredErr: orderrepo.ErrAlreadyDelivered}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodPut, "/api/orders/order-1/deliver", "", asAdmin())
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestOrderReports(t *testing.T) {
	deps := defaultDeps()
	deps.OrderSvc = &stubOrderService{
		count:      42,
		totalSales: decimal.RequireFromString("1234.5"),
		buckets: []domain.DailySales{
			{Date: "2024-06-01", TotalSales: decimal.RequireFromString("79")},
			{Date: "2024-06-02", TotalSales: decimal.RequireFromString("125")},
		},
	}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodGet, "/api/orders/total-orders", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("total-orders: status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["totalOrders"]; got != float64(42) {
		t.Fatalf("totalOrders = %v", got)
	}

	rec = doRequest(router, http.MethodGet, "/api/orders/total-sales", "", nil)
	if got := decodeBody(t, rec)["totalSales"]; got != "1234.50" {
		t.Fatalf("totalSales = %v", got)
	}

	rec = doRequest(router, http.MethodGet, "/api/orders/total-sales-by-date", "", nil)
	var buckets []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &buckets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(buckets) != 2 || buckets[0]["_id"] != "2024-06-01" || buckets[0]["totalSales"] != "79.00" {
		t.Fatalf("unexpected buckets %v", buckets)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	deps := defaultDeps()
	deps.OrderSvc = &stubOrderService{}
	router := newTestRouter(t, deps)

	rec := doRequest(router, http.MethodGet, "/api/orders/missing", "", asUser())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
