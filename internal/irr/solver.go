// Package irr computes internal rate of return over dated cash flows.
package irr

import "math"

// Solver defaults
const (
	InitialGuess  = 0.15
	Tolerance     = 1e-4
	MaxIterations = 100
	MinRate       = -0.99
	MaxRate       = 10.0
)

// CashFlow is an amount at a year offset from fund start.
// Capital calls are negative, distributions positive.
type CashFlow struct {
	Amount float64
	Year   float64
}

// Result is the solver outcome. Rate is always the last estimate; Converged
// reports whether successive estimates came within Tolerance. An estimate
// pinned at MinRate or MaxRate only converges when the NPV there is also
// within Tolerance of the gross flows.
type Result struct {
	Rate       float64
	Converged  bool
	Iterations int
}

// Solve finds r such that sum(cf / (1+r)^t) = 0 with Newton-Raphson.
// The rate is clamped to [MinRate, MaxRate] after every step. Timelines with
// no inflows (or no outflows) have no root and pin to the matching bound.
func Solve(flows []CashFlow) Result {
	rate := InitialGuess
	if len(flows) == 0 {
		return Result{Rate: rate}
	}

	hasInflow, hasOutflow := false, false
	for _, cf := range flows {
		if cf.Amount > 0 {
			hasInflow = true
		} else if cf.Amount < 0 {
			hasOutflow = true
		}
	}
	if !hasInflow {
		return Result{Rate: MinRate}
	}
	if !hasOutflow {
		return Result{Rate: MaxRate}
	}

	for i := 0; i < MaxIterations; i++ {
		npv, derivative := npvAndDerivative(flows, rate)
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return Result{Rate: rate, Iterations: i}
		}

		next := clampRate(rate - npv/derivative)
		if math.Abs(next-rate) < Tolerance {
			converged := !atBound(next) || math.Abs(NPV(flows, next)) < Tolerance*grossFlows(flows)
			return Result{Rate: next, Converged: converged, Iterations: i + 1}
		}
		rate = next
	}

	return Result{Rate: rate, Iterations: MaxIterations}
}

// NPV discounts flows at rate.
func NPV(flows []CashFlow, rate float64) float64 {
	npv, _ := npvAndDerivative(flows, rate)
	return npv
}

func npvAndDerivative(flows []CashFlow, rate float64) (float64, float64) {
	base := 1 + rate
	npv := 0.0
	derivative := 0.0
	for _, cf := range flows {
		discount := math.Pow(base, cf.Year)
		npv += cf.Amount / discount
		derivative -= cf.Year * cf.Amount / (discount * base)
	}
	return npv, derivative
}

func grossFlows(flows []CashFlow) float64 {
	total := 0.0
	for _, cf := range flows {
		total += math.Abs(cf.Amount)
	}
	return total
}

func atBound(r float64) bool {
	return r == MinRate || r == MaxRate
}

func clampRate(r float64) float64 {
	if math.IsNaN(r) {
		return MinRate
	}
	if r < MinRate {
		return MinRate
	}
	if r > MaxRate {
		return MaxRate
	}
	return r
}
