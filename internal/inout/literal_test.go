package inout

import (
	"errors"
	"testing"
	"time"
)

func TestLiteralHandle_IntegerCoercion(t *testing.T) {
	lh := NewLiteralHandle(t.TempDir(), TypeInteger, AnyValue(), nil, ModeNone)
	if err := lh.BindData("42"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	got, err := lh.Data()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.(int64) != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
	if !lh.Validated() {
		t.Fatal("expected validated handle")
	}
}

func TestLiteralHandle_CoercionFailure(t *testing.T) {
	lh := NewLiteralHandle(t.TempDir(), TypeInteger, AnyValue(), nil, ModeNone)
	err := lh.BindData("not a number")
	if err == nil {
		t.Fatal("expected coercion failure")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Code != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	// the value never reached the handle
	if lh.Kind() != KindUnset {
		t.Fatalf("expected unset handle, got %s", lh.Kind())
	}
}

func TestLiteralHandle_RangeCheck(t *testing.T) {
	allowed := AllowedValues{Ranges: []Range{{Min: 1, Max: 10}}}
	lh := NewLiteralHandle(t.TempDir(), TypeInteger, allowed, nil, ModeSimple)

	if err := lh.BindData("5"); err != nil {
		t.Fatalf("5 should pass the range check: %v", err)
	}
	if err := lh.BindData("42"); err == nil {
		t.Fatal("42 must be rejected by the range check")
	}
}

func TestLiteralHandle_ModeNoneSkipsAllowedValues(t *testing.T) {
	allowed := AllowedValues{Values: []any{1, 10}}
	lh := NewLiteralHandle(t.TempDir(), TypeInteger, allowed, nil, ModeNone)
	if err := lh.BindData("42"); err != nil {
		t.Fatalf("mode none must accept any convertible value: %v", err)
	}
	got, _ := lh.Data()
	if got.(int64) != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestLiteralHandle_EnumeratedValues(t *testing.T) {
	allowed := AllowedValues{Values: []any{"red", "green"}}
	lh := NewLiteralHandle(t.TempDir(), TypeString, allowed, nil, ModeSimple)
	if err := lh.BindData("green"); err != nil {
		t.Fatalf("member value rejected: %v", err)
	}
	if err := lh.BindData("blue"); err == nil {
		t.Fatal("non-member value accepted")
	}
}

func TestLiteralHandle_RangeSpacing(t *testing.T) {
	allowed := AllowedValues{Ranges: []Range{{Min: 0, Max: 10, Spacing: 2}}}
	lh := NewLiteralHandle(t.TempDir(), TypeInteger, allowed, nil, ModeSimple)
	if err := lh.BindData(4); err != nil {
		t.Fatalf("on-step value rejected: %v", err)
	}
	if err := lh.BindData(5); err == nil {
		t.Fatal("off-step value accepted")
	}
}

func TestLiteralHandle_DateConversion(t *testing.T) {
	lh := NewLiteralHandle(t.TempDir(), TypeDate, AnyValue(), nil, ModeNone)
	if err := lh.BindData("2024-06-01"); err != nil {
		t.Fatalf("bind date: %v", err)
	}
	got, _ := lh.Data()
	d := got.(time.Time)
	if d.Year() != 2024 || d.Month() != time.June || d.Day() != 1 {
		t.Fatalf("unexpected date %v", d)
	}
}

func TestLiteralHandle_BooleanConversion(t *testing.T) {
	lh := NewLiteralHandle(t.TempDir(), TypeBoolean, AnyValue(), nil, ModeNone)
	if err := lh.BindData("true"); err != nil {
		t.Fatalf("bind bool: %v", err)
	}
	got, _ := lh.Data()
	if got.(bool) != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestLiteralHandle_PositiveInteger(t *testing.T) {
	lh := NewLiteralHandle(t.TempDir(), TypePositiveInteger, AnyValue(), nil, ModeNone)
	if err := lh.BindData(-3); err == nil {
		t.Fatal("negative value accepted as positiveInteger")
	}
	if err := lh.BindData(3); err != nil {
		t.Fatalf("positive value rejected: %v", err)
	}
}

func TestLiteralHandle_UOMDefaultsToFirst(t *testing.T) {
	lh := NewLiteralHandle(t.TempDir(), TypeFloat, AnyValue(), []string{"metre", "feet"}, ModeNone)
	if lh.UOM() != "metre" {
		t.Fatalf("expected metre, got %s", lh.UOM())
	}
	if err := lh.SetUOM("feet"); err != nil {
		t.Fatalf("set declared unit: %v", err)
	}
	if err := lh.SetUOM("furlong"); err == nil {
		t.Fatal("undeclared unit accepted")
	}
}

func TestLiteralInput_Describe(t *testing.T) {
	in := NewLiteralInput(
		Metadata{Identifier: "count", Title: "Count"},
		TypeInteger,
		AllowedValues{Ranges: []Range{{Min: 1, Max: 10}}},
		nil, t.TempDir(), ModeSimple,
	)
	d := in.Describe()
	if d.Identifier != "count" || d.Type != "literal" || d.DataType != TypeInteger {
		t.Fatalf("unexpected projection %+v", d)
	}
	if d.Mode != ModeSimple {
		t.Fatalf("expected simple mode, got %d", d.Mode)
	}
}

func TestHandle_BindDefault(t *testing.T) {
	in := NewLiteralInput(Metadata{Identifier: "n"}, TypeInteger, AnyValue(), nil, t.TempDir(), ModeNone)
	if err := in.BindDefault(7, KindData); err != nil {
		t.Fatalf("bind default: %v", err)
	}
	got, _ := in.Data()
	if got.(int64) != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
}
