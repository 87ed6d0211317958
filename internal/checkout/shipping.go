package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
)

var ErrNegativeShipping = errors.New("shipping fee rule produced a negative fee")

// ShippingRule computes the shipping fee from an expression over
// subtotal (float) and items (total quantity), e.g.
// "subtotal >= 999 ? 0 : 49".
type ShippingRule struct {
	source  string
	program *vm.Program
}

func NewShippingRule(source string) (*ShippingRule, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		source = "0"
	}
	program, err := expr.Compile(source, expr.Env(shippingEnv(decimal.Zero, 0)))
	if err != nil {
		return nil, fmt.Errorf("compile shipping rule %q: %w", source, err)
	}
	return &ShippingRule{source: source, program: program}, nil
}

func shippingEnv(subtotal decimal.Decimal, items int) map[string]any {
	return map[string]any{
		"subtotal": subtotal.InexactFloat64(),
		"items":    items,
	}
}

func (r *ShippingRule) String() string {
	return r.source
}

// Fee evaluates the rule, rounding to two decimal places.
func (r *ShippingRule) Fee(subtotal decimal.Decimal, items int) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, nil
	}
	out, err := expr.Run(r.program, shippingEnv(subtotal, items))
	if err != nil {
		return decimal.Zero, fmt.Errorf("shipping rule %q: %w", r.source, err)
	}

	var fee decimal.Decimal
	switch v := out.(type) {
	case int:
		fee = decimal.NewFromInt(int64(v))
	case int64:
		fee = decimal.NewFromInt(v)
	case float64:
		fee = decimal.NewFromFloat(v)
	default:
		return decimal.Zero, fmt.Errorf("shipping rule %q returned %T", r.source, out)
	}

	fee = fee.Round(2)
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: %w", fee.StringFixed(2), ErrNegativeShipping)
	}
	return fee, nil
}
