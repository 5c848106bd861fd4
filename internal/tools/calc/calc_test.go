package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantMetric string
		wantValue  float64
	}{
		{
			"eoq",
			"Calculate EOQ for demand 12000, order cost 50, holding cost 5",
			"EOQ",
			489.89794855523935,
		},
		{
			"reorder point",
			"reorder point with daily demand 120, lead time 10 days, safety stock 300",
			"Reorder Point",
			1500,
		},
		{
			"safety stock",
			"safety stock for z 1.65, std 40, lead time 10",
			"Safety Stock",
			208.7103255711,
		},
		{
			"fill rate",
			"fill rate with 950 filled of 1000 demanded",
			"Fill Rate",
			0.95,
		},
		{
			"otif",
			"compute otif for on-time 0.92 and in-full 0.95",
			"OTIF",
			0.874,
		},
		{
			"takt time",
			"takt time with 480 minutes available and 240 units demanded",
			"Takt Time",
			2,
		},
		{
			"on-time delivery",
			"on-time delivery rate for 180 on-time out of 200 shipments",
			"On-Time Delivery",
			0.9,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, _, err := Evaluate(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.wantMetric, result.Metric)
			assert.InDelta(t, tc.wantValue, result.Value, 1e-6)
		})
	}
}

func TestEvaluateInsufficientArguments(t *testing.T) {
	result, formula, err := Evaluate("calculate eoq please")
	assert.ErrorIs(t, err, ErrInsufficientArguments)
	assert.Zero(t, result)
	assert.Equal(t, "EOQ", formula.Metric)
	assert.Contains(t, formula.Definition, "Economic Order Quantity")
}

func TestEvaluateUnknownCalculation(t *testing.T) {
	_, _, err := Evaluate("calculate something mysterious with 1 2 3")
	assert.ErrorIs(t, err, ErrUnknownCalculation)
}

func TestMatchDispatchOrder(t *testing.T) {
	// A query mentioning both dispatches to the earlier registration.
	f, ok := Match("reorder point needs the safety stock value")
	require.True(t, ok)
	assert.Equal(t, "Reorder Point", f.Metric)
}

func TestExtractNumbers(t *testing.T) {
	assert.Equal(t, []float64{12000, 50, 5}, ExtractNumbers("demand 12000, order cost 50, holding cost 5"))
	assert.Equal(t, []float64{1.65, 40}, ExtractNumbers("z of 1.65 and std 40"))
	assert.Empty(t, ExtractNumbers("no numbers here"))
}
