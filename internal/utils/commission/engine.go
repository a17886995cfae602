// Package commission evaluates per-employee commission formulas.
package commission

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
)

// Input is the data a commission formula can reference.
type Input struct {
	Price           decimal.Decimal
	Rate            decimal.Decimal // employee rate, percent
	ServiceID       string
	ServiceName     string
	DurationMinutes int
}

func (in Input) env() map[string]any {
	return map[string]any{
		"price":           in.Price.InexactFloat64(),
		"rate":            in.Rate.InexactFloat64(),
		"serviceID":       in.ServiceID,
		"serviceName":     in.ServiceName,
		"durationMinutes": in.DurationMinutes,
	}
}

// Engine compiles formulas once and caches the programs by source.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{cache: make(map[string]*vm.Program)}
}

var defaultEngine = NewEngine()

// Default returns the process-wide engine.
func Default() *Engine { return defaultEngine }

// Compile checks that rule is a valid formula over Input's variables.
func (e *Engine) Compile(rule string) error {
	_, err := e.program(rule)
	return err
}

// Evaluate runs rule and returns the commission amount rounded to cents.
// Negative results are clamped to zero.
func (e *Engine) Evaluate(rule string, in Input) (decimal.Decimal, error) {
	program, err := e.program(rule)
	if err != nil {
		return decimal.Zero, err
	}
	out, err := expr.Run(program, in.env())
	if err != nil {
		return decimal.Zero, fmt.Errorf("commission rule failed: %w", err)
	}

	var amount decimal.Decimal
	switch v := out.(type) {
	case float64:
		amount = decimal.NewFromFloat(v)
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	default:
		return decimal.Zero, fmt.Errorf("commission rule must return a number, got %T", out)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2), nil
}

func (e *Engine) program(rule string) (*vm.Program, error) {
	e.mu.RLock()
	if p, ok := e.cache[rule]; ok {
		e.mu.RUnlock()
		return p, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.cache[rule]; ok {
		return p, nil
	}
	p, err := expr.Compile(rule, expr.Env(Input{}.env()))
	if err != nil {
		return nil, fmt.Errorf("invalid commission rule: %w", err)
	}
	e.cache[rule] = p
	return p, nil
}

// Percent returns rate percent of price, rounded to cents.
func Percent(price, rate decimal.Decimal) decimal.Decimal {
	return price.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}
