package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockCatalog(t *testing.T) (*CatalogStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return &CatalogStore{db: db}, mock
}

func TestListProductsWithPricesGroupsRows(t *testing.T) {
	s, mock := newMockCatalog(t)

	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "active", "metadata",
		"price_id", "unit_amount", "currency", "recurring", "price_active", "price_metadata",
	}).
		AddRow("prod_basic", "LifeSync Pro Basic", "Starter", true, []byte(`{"plan":"basic"}`),
			"price_basic_m", int64(2900), "usd", []byte(`{"interval":"month"}`), true, []byte(`{}`)).
		AddRow("prod_basic", "LifeSync Pro Basic", "Starter", true, []byte(`{"plan":"basic"}`),
			"price_basic_y", int64(29000), "usd", []byte(`{"interval":"year"}`), true, []byte(`{}`)).
		AddRow("prod_empty", "No Prices", nil, true, nil,
			nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stripe.products")).WithArgs(true).WillReturnRows(rows)

	products, err := s.ListProductsWithPrices(context.Background(), true)
	if err != nil {
		t.Fatalf("ListProductsWithPrices returned error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	basic := products[0]
	if basic.ID != "prod_basic" || len(basic.Prices) != 2 {
		t.Fatalf("unexpected basic product: %+v", basic)
	}
	if basic.Prices[0].UnitAmount == nil || *basic.Prices[0].UnitAmount != 2900 {
		t.Fatalf("unexpected first price: %+v", basic.Prices[0])
	}
	if string(basic.Metadata) != `{"plan":"basic"}` {
		t.Fatalf("unexpected metadata: %s", basic.Metadata)
	}

	empty := products[1]
	if empty.Prices == nil || len(empty.Prices) != 0 {
		t.Fatalf("expected empty non-nil price list, got %#v", empty.Prices)
	}
	if empty.Description != nil {
		t.Fatal("expected nil description")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListProductsWithPricesEmpty(t *testing.T) {
	s, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stripe.products")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	products, err := s.ListProductsWithPrices(context.Background(), true)
	if err != nil {
		t.Fatalf("ListProductsWithPrices returned error: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Fatalf("expected empty slice, got %#v", products)
	}
}

func TestGetProductNotFound(t *testing.T) {
	s, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stripe.products WHERE id = $1")).
		WithArgs("prod_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "active", "metadata"}))

	_, err := s.GetProduct(context.Background(), "prod_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPrice(t *testing.T) {
	s, mock := newMockCatalog(t)

	rows := sqlmock.NewRows([]string{"id", "product", "unit_amount", "currency", "recurring", "active", "metadata"}).
		AddRow("price_pro_m", "prod_pro", int64(7900), "usd", []byte(`{"interval":"month"}`), true, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stripe.prices WHERE id = $1")).
		WithArgs("price_pro_m").
		WillReturnRows(rows)

	price, err := s.GetPrice(context.Background(), "price_pro_m")
	if err != nil {
		t.Fatalf("GetPrice returned error: %v", err)
	}
	if price.ProductID != "prod_pro" || !price.Active || price.Metadata != nil {
		t.Fatalf("unexpected price: %+v", price)
	}
}

func TestListPricesForProductQueryError(t *testing.T) {
	s, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stripe.prices")).
		WithArgs("prod_pro").
		WillReturnError(errors.New(`relation "stripe.prices" does not exist`))

	if _, err := s.ListPricesForProduct(context.Background(), "prod_pro"); err == nil {
		t.Fatal("expected error when the replicated schema is missing")
	}
}

func TestGetProviderSubscriptionConvertsUnixTimes(t *testing.T) {
	s, mock := newMockCatalog(t)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "customer", "status", "cancel_at_period_end", "current_period_start", "current_period_end",
	}).AddRow("sub_123", "cus_123", "active", true, start.Unix(), nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stripe.subscriptions")).
		WithArgs("sub_123").
		WillReturnRows(rows)

	sub, err := s.GetProviderSubscription(context.Background(), "sub_123")
	if err != nil {
		t.Fatalf("GetProviderSubscription returned error: %v", err)
	}
	if sub.CustomerID != "cus_123" || !sub.CancelAtPeriodEnd {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if sub.CurrentPeriodStart == nil || !sub.CurrentPeriodStart.Equal(start) {
		t.Fatalf("unexpected period start: %v", sub.CurrentPeriodStart)
	}
	if sub.CurrentPeriodEnd != nil {
		t.Fatalf("expected nil period end, got %v", sub.CurrentPeriodEnd)
	}
}
