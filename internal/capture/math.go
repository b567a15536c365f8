package capture

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

// evalMath evaluates an arithmetic expression. Callers only pass text made
// of digits, operators and parentheses, so no environment is needed.
func evalMath(s string) (v float64, err error) {
	// Constant folding can panic on integer division by zero.
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, fmt.Errorf("failed to evaluate %q: %v", s, r)
		}
	}()

	out, err := expr.Eval(s, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate %q: %w", s, err)
	}
	switch n := out.(type) {
	case int:
		v = float64(n)
	case float64:
		v = n
	default:
		return 0, fmt.Errorf("expression %q is not numeric", s)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("result is not finite")
	}
	return v, nil
}
