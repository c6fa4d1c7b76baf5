package interchange

import (
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/pkg/errors"
)

// Environment resolves the variables an expression refers to.
type Environment interface {
	Get(v string) (float64, error)
}

// Constants is the environment config values are evaluated in.
var Constants Environment = constants{
	"pi":  math.Pi,
	"tau": 2 * math.Pi,
	"e":   math.E,
	"phi": math.Phi,
}

type constants map[string]float64

func (c constants) Get(v string) (float64, error) {
	val, ok := c[strings.ToLower(v)]
	if !ok {
		return 0, errors.Errorf("undefined variable %s", v)
	}
	return val, nil
}

// wrappedEnvironment adapts an Environment to govaluate.Parameters
type wrappedEnvironment struct {
	Inner Environment
}

func (wenv wrappedEnvironment) Get(name string) (interface{}, error) {
	val, err := wenv.Inner.Get(name)
	if err != nil {
		return nil, err
	}
	return val, nil
}

func unary(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("%s takes one argument, got %d", name, len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, errors.Errorf("%s: argument is not a number", name)
		}
		return f(x), nil
	}
}

var functions = map[string]govaluate.ExpressionFunction{
	"sqrt": unary("sqrt", math.Sqrt),
	"sin":  unary("sin", math.Sin),
	"cos":  unary("cos", math.Cos),
	"tan":  unary("tan", math.Tan),
	"abs":  unary("abs", math.Abs),
}

// Evaluate evaluates a numeric config value: a number or an arithmetic
// expression such as "360/7" or "sqrt(2)/2".
func Evaluate(expression string) (float64, error) {
	return EvaluateIn(expression, Constants)
}

// EvaluateIn evaluates expression with the variables of env.
func EvaluateIn(expression string, env Environment) (float64, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return 0, errors.New("empty expression")
	}

	// Fast path for scalars
	if scalar, err := strconv.ParseFloat(expression, 64); err == nil {
		return scalar, nil
	}

	evaluable, err := govaluate.NewEvaluableExpressionWithFunctions(expression, functions)
	if err != nil {
		return 0, errors.Wrapf(err, "error while parsing expression %q", expression)
	}

	res, err := evaluable.Eval(wrappedEnvironment{env})
	if err != nil {
		return 0, errors.Wrapf(err, "error while evaluating %q", expression)
	}

	resAsFloat, ok := res.(float64)
	if !ok {
		return 0, errors.Errorf("%q does not evaluate to a number", expression)
	}
	if math.IsNaN(resAsFloat) || math.IsInf(resAsFloat, 0) {
		return 0, errors.Errorf("%q is not finite", expression)
	}
	return resAsFloat, nil
}
