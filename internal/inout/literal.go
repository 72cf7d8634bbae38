package inout

import (
	"math"
	"net/url"
	"time"

	"github.com/spf13/cast"
)

// LiteralType names one of the fixed scalar vocabularies a literal
// value can be coerced to.
type LiteralType string

const (
	TypeInteger            LiteralType = "integer"
	TypeNonNegativeInteger LiteralType = "nonNegativeInteger"
	TypePositiveInteger    LiteralType = "positiveInteger"
	TypeFloat              LiteralType = "float"
	TypeBoolean            LiteralType = "boolean"
	TypeString             LiteralType = "string"
	TypeDate               LiteralType = "date"
	TypeTime               LiteralType = "time"
	TypeDateTime           LiteralType = "dateTime"
	TypeAnyURI             LiteralType = "anyURI"
)

// converters is the fixed coercion registry. Each converter normalizes
// an incoming value to the canonical Go type for its literal type.
var converters = map[LiteralType]func(any) (any, error){
	TypeInteger: func(v any) (any, error) {
		return cast.ToInt64E(v)
	},
	TypeNonNegativeInteger: func(v any) (any, error) {
		n, err := cast.ToInt64E(v)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, InvalidInputError("value %d is negative", n)
		}
		return n, nil
	},
	TypePositiveInteger: func(v any) (any, error) {
		n, err := cast.ToInt64E(v)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, InvalidInputError("value %d is not positive", n)
		}
		return n, nil
	},
	TypeFloat: func(v any) (any, error) {
		return cast.ToFloat64E(v)
	},
	TypeBoolean: func(v any) (any, error) {
		return cast.ToBoolE(v)
	},
	TypeString: func(v any) (any, error) {
		return cast.ToStringE(v)
	},
	TypeDate: func(v any) (any, error) {
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
		return time.Parse("2006-01-02", cast.ToString(v))
	},
	TypeTime: func(v any) (any, error) {
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
		return time.Parse("15:04:05", cast.ToString(v))
	},
	TypeDateTime: func(v any) (any, error) {
		return cast.ToTimeE(v)
	},
	TypeAnyURI: func(v any) (any, error) {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		if _, err := url.Parse(s); err != nil {
			return nil, err
		}
		return s, nil
	},
}

// Convert coerces a value to the given literal type. Failure is an
// InvalidInput: the value never reaches the handle.
func Convert(typ LiteralType, v any) (any, error) {
	conv, ok := converters[typ]
	if !ok {
		return nil, InvalidInputError("unknown literal type %q", typ)
	}
	out, err := conv(v)
	if err != nil {
		return nil, wrapIO("INVALID_INPUT",
			"cannot convert value to "+string(typ), err)
	}
	return out, nil
}

// Range is a closed numeric interval, optionally with a spacing that
// restricts acceptable values to min + k*spacing.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Spacing float64 `json:"spacing,omitempty"`
}

func (r Range) contains(f float64) bool {
	if f < r.Min || f > r.Max {
		return false
	}
	if r.Spacing > 0 {
		rem := math.Mod(f-r.Min, r.Spacing)
		return rem < 1e-9 || r.Spacing-rem < 1e-9
	}
	return true
}

// AllowedValues constrains a literal input to an enumerated set and/or
// closed ranges. The zero value with Any set is the "anything
// convertible" sentinel.
type AllowedValues struct {
	Any    bool    `json:"any"`
	Values []any   `json:"values,omitempty"`
	Ranges []Range `json:"ranges,omitempty"`
}

// AnyValue is the sentinel accepting any convertible value.
func AnyValue() AllowedValues { return AllowedValues{Any: true} }

func (a AllowedValues) allows(typ LiteralType, v any) bool {
	if a.Any {
		return true
	}
	for _, av := range a.Values {
		norm, err := Convert(typ, av)
		if err == nil && norm == v {
			return true
		}
	}
	if len(a.Ranges) > 0 {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return false
		}
		for _, r := range a.Ranges {
			if r.contains(f) {
				return true
			}
		}
	}
	return false
}

// LiteralHandle is a DataHandle for scalar values: incoming data is
// coerced to the declared type before binding, and the validator gates
// on the allowed-value declaration.
type LiteralHandle struct {
	Handle
	dataType LiteralType
	allowed  AllowedValues
	uoms     []string
	uom      string
}

func NewLiteralHandle(workdir string, typ LiteralType, allowed AllowedValues, uoms []string, mode Mode) *LiteralHandle {
	lh := &LiteralHandle{
		dataType: typ,
		allowed:  allowed,
		uoms:     uoms,
	}
	lh.Handle = *NewHandle(workdir, mode)
	if len(uoms) > 0 {
		lh.uom = uoms[0]
	}
	lh.SetValidator(lh.validate)
	return lh
}

func (l *LiteralHandle) DataType() LiteralType  { return l.dataType }
func (l *LiteralHandle) Allowed() AllowedValues { return l.allowed }
func (l *LiteralHandle) UOMs() []string         { return l.uoms }
func (l *LiteralHandle) UOM() string            { return l.uom }

// SetUOM selects a unit of measure from the declared list.
func (l *LiteralHandle) SetUOM(uom string) error {
	for _, u := range l.uoms {
		if u == uom {
			l.uom = uom
			return nil
		}
	}
	return InvalidInputError("unit %q is not among declared units", uom)
}

// BindData coerces the value to the declared literal type first;
// coercion failure rejects the binding before the handle sees it.
func (l *LiteralHandle) BindData(v any) error {
	coerced, err := Convert(l.dataType, v)
	if err != nil {
		return err
	}
	return l.Handle.BindData(coerced)
}

// BindDefault routes data defaults through coercion.
func (l *LiteralHandle) BindDefault(value any, kind SourceKind) error {
	if value != nil && kind == KindData {
		return l.BindData(value)
	}
	return l.Handle.BindDefault(value, kind)
}

// validate gates on the allowed-value declaration. Mode NONE accepts
// anything that survived coercion; only raw data values can be checked
// against the declaration without consuming the source.
func (l *LiteralHandle) validate(h *Handle, mode Mode) bool {
	if mode == ModeNone {
		return true
	}
	if l.allowed.Any {
		return true
	}
	if h.Kind() != KindData {
		return true
	}
	return l.allowed.allows(l.dataType, h.data)
}
