package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmount_Untaxed(t *testing.T) {
	t.Parallel()

	a := NewAmountFromFloat(120, 20)
	if !a.Untaxed().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("Untaxed() = %s, want 100", a.Untaxed())
	}
}

func TestAmount_NegAdd(t *testing.T) {
	t.Parallel()

	a := NewAmountFromFloat(120, 20)
	sum := a.Add(a.Neg())
	if !sum.IsZero() {
		t.Fatalf("a + (-a) = %+v, want zero", sum)
	}
	if !a.Add(NewAmountFromFloat(0.1, 0.02)).Equal(NewAmountFromFloat(120.1, 20.02)) {
		t.Fatal("Add lost precision")
	}
}

func TestJSONDecimal_RoundTripNumber(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(jsonDecimal(decimal.RequireFromString("-120.50")))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "-120.5" {
		t.Fatalf("marshal = %s, want bare number", b)
	}

	var fromString jsonDecimal
	if err := json.Unmarshal([]byte(`"19.99"`), &fromString); err != nil {
		t.Fatal(err)
	}
	if !decimal.Decimal(fromString).Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("unmarshal quoted = %s", decimal.Decimal(fromString))
	}
}
