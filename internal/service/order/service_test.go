package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	orderrepo "github.com/M-ahmad144/Lymora-Backend/internal/repository/order"
	"github.com/shopspring/decimal"
)

type stubOrderRepo struct {
	created *domain.Order

	markPaidID     string
	markPaidAt     time.Time
	markPaidResult domain.PaymentResult
	markPaidErr    error

	markDeliveredID string
}

func (s *stubOrderRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	o.ID = "order-1"
	s.created = &o
	return &o, nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (s *stubOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error)  { return nil, nil }
func (s *stubOrderRepo) ListByUser(ctx context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time, pr domain.PaymentResult) (*domain.Order, error) {
	if s.markPaidErr != nil {
		return nil, s.markPaidErr
	}
	s.markPaidID = id
	s.markPaidAt = paidAt
	s.markPaidResult = pr
	return &domain.Order{ID: id, IsPaid: true, PaidAt: &paidAt, PaymentResult: &pr}, nil
}

func (s *stubOrderRepo) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*domain.Order, error) {
	s.markDeliveredID = id
	return &domain.Order{ID: id, IsDelivered: true, DeliveredAt: &deliveredAt}, nil
}

func (s *stubOrderRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubOrderRepo) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubOrderRepo) SalesByDate(ctx context.Context) ([]domain.DailySales, error) {
	return nil, nil
}

type stubCatalog struct {
	products []domain.Product
	gotIDs   []string
	calls    int
}

func (s *stubCatalog) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	s.calls++
	s.gotIDs = ids
	return s.products, nil
}

func newTestService(repo *stubOrderRepo, cat *stubCatalog) *Service {
	svc := New(repo, cat)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// createInput returns a request that passes presence validation so tests can
// focus on one aspect at a time.
func createInput(items ...ItemInput) CreateInput {
	return CreateInput{
		Items:           items,
		ShippingAddress: map[string]any{"city": "Lahore"},
		PaymentMethod:   "PayPal",
	}
}

func TestCreate_EmptyItemsRejected(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := newTestService(repo, &stubCatalog{})

	_, err := svc.Create(context.Background(), "user-1", CreateInput{})
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("nothing should be persisted for an empty order")
	}
}

func TestCreate_MissingProductRejectsWholeOrder(t *testing.T) {
	repo := &stubOrderRepo{}
	cat := &stubCatalog{products: []domain.Product{
		{ID: "p1", Name: "Mug", Price: decimal.RequireFromString("12.50")},
	}}
	svc := newTestService(repo, cat)

	_, err := svc.Create(context.Background(), "user-1", createInput(
		ItemInput{ProductID: "p1", Quantity: 1},
		ItemInput{ProductID: "p-ghost", Quantity: 2},
	))

	var nfe *NotFoundProductError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFoundProductError, got %v", err)
	}
	if nfe.ProductID != "p-ghost" {
		t.Fatalf("error should name the missing product, got %q", nfe.ProductID)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("NotFoundProductError should unwrap to domain.ErrNotFound")
	}
	if repo.created != nil {
		t.Fatal("a partially valid order must not be persisted")
	}
}

func TestCreate_ClientPricesDiscarded(t *testing.T) {
	repo := &stubOrderRepo{}
	cat := &stubCatalog{products: []domain.Product{
		{ID: "p1", Name: "Lamp", Price: decimal.RequireFromString("50")},
	}}
	svc := newTestService(repo, cat)

	got, err := svc.Create(context.Background(), "user-1", createInput(
		ItemInput{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("0.01")},
	))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got.Items[0].Price.StringFixed(2) != "50.00" {
		t.Fatalf("line price must come from the catalog, got %s", got.Items[0].Price)
	}
	if got.ItemsPrice.StringFixed(2) != "100.00" {
		t.Fatalf("itemsPrice = %s, want 100.00", got.ItemsPrice)
	}
	// 100 is not strictly above the threshold, so shipping still applies.
	if got.ShippingPrice.StringFixed(2) != "10.00" {
		t.Fatalf("shippingPrice = %s, want 10.00", got.ShippingPrice)
	}
	if got.TaxPrice.StringFixed(2) != "15.00" {
		t.Fatalf("taxPrice = %s, want 15.00", got.TaxPrice)
	}
	if got.TotalPrice.StringFixed(2) != "125.00" {
		t.Fatalf("totalPrice = %s, want 125.00", got.TotalPrice)
	}
	if repo.created == nil || repo.created.UserID != "user-1" {
		t.Fatal("order should be persisted for the authenticated user")
	}
}

func TestCreate_DuplicateLinesLookedUpOnce(t *testing.T) {
	repo := &stubOrderRepo{}
	cat := &stubCatalog{products: []domain.Product{
		{ID: "p1", Name: "Pen", Price: decimal.RequireFromString("2")},
	}}
	svc := newTestService(repo, cat)

	_, err := svc.Create(context.Background(), "user-1", createInput(
		ItemInput{ProductID: "p1", Quantity: 1},
		ItemInput{ProductID: "p1", Quantity: 3},
	))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cat.calls != 1 {
		t.Fatalf("catalog should be queried once, got %d calls", cat.calls)
	}
	if len(cat.gotIDs) != 1 || cat.gotIDs[0] != "p1" {
		t.Fatalf("duplicate lines should collapse to one id, got %v", cat.gotIDs)
	}
}

func TestCreate_NonPositiveQuantityRejected(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := newTestService(repo, &stubCatalog{})

	_, err := svc.Create(context.Background(), "user-1", createInput(
		ItemInput{ProductID: "p1", Quantity: 0},
	))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for zero quantity, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("nothing should be persisted")
	}
}

func TestCreate_MissingShippingAddressRejected(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := newTestService(repo, &stubCatalog{})

	in := createInput(ItemInput{ProductID: "p1", Quantity: 1})
	in.ShippingAddress = nil
	_, err := svc.Create(context.Background(), "user-1", in)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("nothing should be persisted")
	}
}

func TestCreate_MissingPaymentMethodRejected(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := newTestService(repo, &stubCatalog{})

	in := createInput(ItemInput{ProductID: "p1", Quantity: 1})
	in.PaymentMethod = "  "
	_, err := svc.Create(context.Background(), "user-1", in)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("nothing should be persisted")
	}
}

func TestCreate_FallsBackToCatalogNameAndImage(t *testing.T) {
	repo := &stubOrderRepo{}
	cat := &stubCatalog{products: []domain.Product{
		{ID: "p1", Name: "Kettle", Image: "/images/kettle.jpg", Price: decimal.RequireFromString("25")},
	}}
	svc := newTestService(repo, cat)

	got, err := svc.Create(context.Background(), "user-1", createInput(
		ItemInput{ProductID: "p1", Quantity: 1},
	))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Items[0].Name != "Kettle" || got.Items[0].Image != "/images/kettle.jpg" {
		t.Fatalf("expected catalog snapshot fields, got %+v", got.Items[0])
	}
}

func TestMarkPaid_PassesPaymentResult(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := newTestService(repo, &stubCatalog{})

	got, err := svc.MarkPaid(context.Background(), "order-1", PaymentInput{
		TransactionID: "txn-9",
		Status:        "COMPLETED",
		UpdateTime:    "2024-06-01T12:00:00Z",
		PayerEmail:    "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !got.IsPaid || got.PaidAt == nil {
		t.Fatalf("expected paid order, got %+v", got)
	}
	if repo.markPaidResult.TransactionID != "txn-9" || repo.markPaidResult.PayerEmail != "buyer@example.com" {
		t.Fatalf("payment result not forwarded: %+v", repo.markPaidResult)
	}
	if !repo.markPaidAt.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected paidAt %v", repo.markPaidAt)
	}
}

func TestMarkPaid_RepeatSurfacesConflict(t *testing.T) {
	repo := &stubOrderRepo{markPaidErr: orderrepo.ErrAlreadyPaid}
	svc := newTestService(repo, &stubCatalog{})

	_, err := svc.MarkPaid(context.Background(), "order-1", PaymentInput{})
	if !errors.Is(err, orderrepo.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestMarkDelivered(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := newTestService(repo, &stubCatalog{})

	got, err := svc.MarkDelivered(context.Background(), "order-2")
	if err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if !got.IsDelivered || got.DeliveredAt == nil {
		t.Fatalf("expected delivered order, got %+v", got)
	}
	if repo.markDeliveredID != "order-2" {
		t.Fatalf("wrong id forwarded: %s", repo.markDeliveredID)
	}
}
