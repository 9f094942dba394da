package customers

import (
	"context"
	"errors"
	"testing"

	"github.com/imrishuroy/go-tailor-orderflow/internal/dynamotest"
	"github.com/imrishuroy/go-tailor-orderflow/internal/measurements"
)

const table = "customers"

func newStore() (*Store, *dynamotest.Fake) {
	fake := dynamotest.New(map[string]string{table: "customer_id"})
	return NewStore(fake, table), fake
}

func TestCreateGetList(t *testing.T) {
	s, _ := newStore()
	ctx := context.Background()

	created, err := s.Create(ctx, Customer{
		CustomerID:   "c1",
		Name:         "John Doe",
		Email:        "john@example.com",
		Phone:        "1234567890",
		Measurements: &measurements.Set{Shirt: &measurements.Shirt{Chest: 40}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("created_at not set")
	}
	if _, err := s.Create(ctx, Customer{CustomerID: "c2", Name: "Asha", Phone: "9999999999"}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	got, err := s.Get(ctx, "c1")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.Measurements == nil || got.Measurements.Shirt.Chest != 40 {
		t.Fatalf("measurements lost: %+v", got.Measurements)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Asha" {
		t.Fatalf("expected sorted by name, got %+v", all)
	}
}

func TestCreate_DuplicatePhone(t *testing.T) {
	s, fake := newStore()
	ctx := context.Background()
	if _, err := s.Create(ctx, Customer{CustomerID: "c1", Name: "John", Phone: "1234567890"}); err != nil {
		t.Fatal(err)
	}
	_, err := s.Create(ctx, Customer{CustomerID: "c2", Name: "Jane", Phone: "1234567890"})
	if !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
	if fake.Len(table) != 1 {
		t.Fatalf("duplicate must not be stored")
	}
}

func TestAddStats(t *testing.T) {
	s, _ := newStore()
	ctx := context.Background()
	if _, err := s.Create(ctx, Customer{CustomerID: "c1", Name: "John", Phone: "1234567890"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddStats(ctx, "c1", 1, 500); err != nil {
		t.Fatalf("AddStats: %v", err)
	}
	if err := s.AddStats(ctx, "c1", 0, 1500); err != nil {
		t.Fatalf("AddStats: %v", err)
	}
	got, _ := s.Get(ctx, "c1")
	if got.OrderCount != 1 || got.AmountSpent != 2000 {
		t.Fatalf("stats wrong: %+v", got)
	}
	if err := s.AddStats(ctx, "ghost", 1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
