// Package calc dispatches calculation queries to closed-form supply-chain
// formulas. Dispatch is by keyword; numeric arguments are pulled from the
// query text in order of appearance.
package calc

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInsufficientArguments indicates the query matched a formula but did not
// carry enough numeric literals to evaluate it. Callers answer with the
// formula's definition instead.
var ErrInsufficientArguments = errors.New("insufficient arguments")

// ErrUnknownCalculation indicates no formula keyword matched the query.
var ErrUnknownCalculation = errors.New("unknown calculation")

// Result is a computed metric value.
type Result struct {
	Metric string
	Value  float64
}

// Formula is one dispatchable calculation. Keywords are matched by substring
// containment against the lowercased query, in registration order.
type Formula struct {
	Metric     string
	Keywords   []string
	Args       []string
	Definition string
	compute    func(args []float64) float64
}

var formulas = []Formula{
	{
		Metric:     "EOQ",
		Keywords:   []string{"eoq", "economic order quantity"},
		Args:       []string{"annual demand", "order cost", "holding cost"},
		Definition: "EOQ (Economic Order Quantity) = sqrt(2 * annual demand * order cost / holding cost), the order size minimizing total ordering and holding cost.",
		compute: func(a []float64) float64 {
			return math.Sqrt(2 * a[0] * a[1] / a[2])
		},
	},
	{
		Metric:     "Reorder Point",
		Keywords:   []string{"reorder point"},
		Args:       []string{"daily demand", "lead time days", "safety stock"},
		Definition: "Reorder Point = daily demand * lead time (days) + safety stock, the inventory level that triggers a replenishment order.",
		compute: func(a []float64) float64 {
			return a[0]*a[1] + a[2]
		},
	},
	{
		Metric:     "Safety Stock",
		Keywords:   []string{"safety stock"},
		Args:       []string{"z score", "demand std", "lead time days"},
		Definition: "Safety Stock = z-score * demand standard deviation * sqrt(lead time in days), the buffer held against demand and lead-time variability.",
		compute: func(a []float64) float64 {
			return a[0] * a[1] * math.Sqrt(a[2])
		},
	},
	{
		Metric:     "Fill Rate",
		Keywords:   []string{"fill rate"},
		Args:       []string{"filled units", "total demand units"},
		Definition: "Fill Rate = filled units / total demand units, the fraction of demand served from stock.",
		compute: func(a []float64) float64 {
			if a[1] == 0 {
				return 0.0
			}
			return a[0] / a[1]
		},
	},
	{
		Metric:     "OTIF",
		Keywords:   []string{"otif"},
		Args:       []string{"on time rate", "in full rate"},
		Definition: "OTIF (On Time In Full) = on-time rate * in-full rate, the fraction of orders delivered both on schedule and complete.",
		compute: func(a []float64) float64 {
			return a[0] * a[1]
		},
	},
	{
		Metric:     "Takt Time",
		Keywords:   []string{"takt"},
		Args:       []string{"available time", "demand units"},
		Definition: "Takt Time = available production time / customer demand units, the pace production must match to meet demand.",
		compute: func(a []float64) float64 {
			if a[1] == 0 {
				return 0.0
			}
			return a[0] / a[1]
		},
	},
	{
		Metric:     "On-Time Delivery",
		Keywords:   []string{"on-time delivery", "on time delivery"},
		Args:       []string{"on time deliveries", "total deliveries"},
		Definition: "On-Time Delivery = on-time deliveries / total deliveries, the fraction of shipments arriving by the promised date.",
		compute: func(a []float64) float64 {
			if a[1] == 0 {
				return 0.0
			}
			return a[0] / a[1]
		},
	},
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Match returns the first formula whose keyword appears in the query.
func Match(query string) (Formula, bool) {
	text := strings.ToLower(query)
	for _, f := range formulas {
		for _, kw := range f.Keywords {
			if strings.Contains(text, kw) {
				return f, true
			}
		}
	}
	return Formula{}, false
}

// ExtractNumbers returns the numeric literals in the query, in order of
// appearance. Unparseable matches are skipped.
func ExtractNumbers(query string) []float64 {
	var out []float64
	for _, raw := range numberPattern.FindAllString(query, -1) {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Evaluate matches a formula and computes it from the query's numeric
// literals. A matched formula without enough literals returns the formula
// alongside ErrInsufficientArguments so callers can fall back to its
// definition.
func Evaluate(query string) (Result, Formula, error) {
	f, ok := Match(query)
	if !ok {
		return Result{}, Formula{}, ErrUnknownCalculation
	}
	args := ExtractNumbers(query)
	if len(args) < len(f.Args) {
		return Result{}, f, ErrInsufficientArguments
	}
	return Result{Metric: f.Metric, Value: f.compute(args[:len(f.Args)])}, f, nil
}
