package domain

import "testing"

func TestValueEqualIsStrict(t *testing.T) {
	if !StringValue("a").Equal(StringValue("a")) {
		t.Fatal("equal strings should match")
	}
	if NumberValue(1).Equal(StringValue("1")) {
		t.Fatal("mixed kinds must not be equal")
	}
	if (Value{}).Equal(Value{}) {
		t.Fatal("zero values must not be equal")
	}
	if !BoolValue(true).Equal(BoolValue(true)) {
		t.Fatal("equal bools should match")
	}
}

func TestValueCompare(t *testing.T) {
	if c, ok := NumberValue(2).Compare(NumberValue(10)); !ok || c != -1 {
		t.Fatalf("2 vs 10 = %d, %v", c, ok)
	}
	if c, ok := StringValue("b").Compare(StringValue("a")); !ok || c != 1 {
		t.Fatalf("b vs a = %d, %v", c, ok)
	}
	if _, ok := BoolValue(true).Compare(BoolValue(false)); ok {
		t.Fatal("booleans are unordered")
	}
	if _, ok := NumberValue(1).Compare(StringValue("1")); ok {
		t.Fatal("mixed kinds are unordered")
	}
}

func TestCustomerField(t *testing.T) {
	c := Customer{Age: 34, Contact: "cellular", CreditDefault: "no"}
	v, ok := c.Field("age")
	if !ok || v.Num() != 34 {
		t.Fatalf("age = %v, %v", v, ok)
	}
	v, _ = c.Field("creditDefault")
	if v.Str() != "no" {
		t.Fatalf("creditDefault alias = %v", v)
	}
	if _, ok := c.Field("shoe_size"); ok {
		t.Fatal("unknown field should not resolve")
	}
	for _, f := range CustomerFields {
		if _, ok := c.Field(f); !ok {
			t.Errorf("schema field %q does not resolve", f)
		}
	}
}

func TestCountersValidate(t *testing.T) {
	if err := (Counters{TotalTargets: 3, PositiveCount: 2, NegativeCount: 1}).Validate(); err != nil {
		t.Fatalf("valid counters rejected: %v", err)
	}
	if err := (Counters{TotalTargets: 2, PositiveCount: 2, NegativeCount: 1}).Validate(); err == nil {
		t.Fatal("overflowing counters accepted")
	}
	if r := (Counters{TotalTargets: 4, PositiveCount: 1}).Rate(); r != 0.25 {
		t.Fatalf("rate = %v", r)
	}
	if r := (Counters{}).Rate(); r != 0 {
		t.Fatalf("empty rate = %v", r)
	}
}
