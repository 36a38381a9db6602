// Package formula: expression evaluation.
package formula

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
)

// ErrEval is returned when an expression cannot be compiled or does not
// evaluate to a number under the given scope.
var ErrEval = errors.New("formula: evaluation failed")

// Eval compiles expression and runs it against scope, returning the
// numeric result.
// Stage 1 (Compile): the scope names become the expression environment;
// unknown identifiers fail compilation.
// Stage 2 (Run + coerce): integer results are widened to float64; any
// other result type is an evaluation error.
//
// Errors: ErrEval, wrapped with the offending expression.
func Eval(expression string, scope map[string]float64) (float64, error) {
	env := make(map[string]interface{}, len(scope))
	for name, v := range scope {
		env[name] = v
	}
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return 0, fmt.Errorf("%w: compile %q: %v", ErrEval, expression, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("%w: run %q: %v", ErrEval, expression, err)
	}
	switch v := out.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %q evaluated to %T, want number", ErrEval, expression, out)
	}
}
