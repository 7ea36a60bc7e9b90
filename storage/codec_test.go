package storage_test

import (
	"testing"
	"time"

	"fintrack/core/model"
	"fintrack/core/storage"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type amountDoc struct {
	Amount decimal.Decimal `bson:"amount"`
}

func TestRegistry_EncodesDecimal128(t *testing.T) {
	registry := storage.NewRegistry()
	data, err := bson.MarshalWithRegistry(registry, amountDoc{Amount: decimal.RequireFromString("1234.56")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if got := bson.Raw(data).Lookup("amount").Type; got != bsontype.Decimal128 {
		t.Errorf("Expected Decimal128, got %s", got)
	}

	var out amountDoc
	if err := bson.UnmarshalWithRegistry(registry, data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !out.Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("Expected 1234.56, got %s", out.Amount)
	}
}

func TestRegistry_DecodesLegacyNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"double", 12.5, "12.5"},
		{"int32", int32(40), "40"},
		{"int64", int64(7000000000), "7000000000"},
		{"string", "99.90", "99.9"},
	}

	registry := storage.NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(bson.M{"amount": tt.value})
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			var out amountDoc
			if err := bson.UnmarshalWithRegistry(registry, data, &out); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !out.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Expected %s, got %s", tt.want, out.Amount)
			}
		})
	}
}

func TestRegistry_RejectsBooleans(t *testing.T) {
	data, err := bson.Marshal(bson.M{"amount": true})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out amountDoc
	if err := bson.UnmarshalWithRegistry(storage.NewRegistry(), data, &out); err == nil {
		t.Error("Expected an error decoding a boolean into a decimal")
	}
}

func TestRegistry_TransactionRoundTrip(t *testing.T) {
	in := model.Transaction{
		ID:          "t1",
		Date:        time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
		Description: "Mercado",
		Amount:      decimal.RequireFromString("600.35"),
		Type:        model.Expense,
		Category:    "Alimentação",
	}

	registry := storage.NewRegistry()
	data, err := bson.MarshalWithRegistry(registry, in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if id := bson.Raw(data).Lookup("_id").StringValue(); id != "t1" {
		t.Errorf("Expected _id t1, got %s", id)
	}

	var out model.Transaction
	if err := bson.UnmarshalWithRegistry(registry, data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.ID != in.ID || !out.Date.Equal(in.Date) || !out.Amount.Equal(in.Amount) || out.Category != in.Category {
		t.Errorf("Round trip mismatch: %#v", out)
	}
}
