package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	e := NewEngine()
	in := Input{
		Price:           decimal.NewFromInt(120),
		Rate:            decimal.NewFromInt(40),
		ServiceID:       "svc-1",
		ServiceName:     "Coloring",
		DurationMinutes: 90,
	}

	tests := []struct {
		name string
		rule string
		want string
	}{
		{"percent of price", "price * rate / 100", "48"},
		{"flat amount", "15", "15"},
		{"conditional on service", `serviceName == "Coloring" ? price * 0.5 : price * 0.3`, "60"},
		{"by duration", "durationMinutes > 60 ? 25 : 10", "25"},
		{"rounded to cents", "price / 7", "17.14"},
		{"negative clamped", "price - 500", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(tt.rule, in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestCompileRejectsInvalidRules(t *testing.T) {
	e := NewEngine()
	assert.NoError(t, e.Compile("price * 0.1"))
	assert.Error(t, e.Compile("price *"))
	assert.Error(t, e.Compile("unknownVar * 2"))
}

func TestEvaluateRejectsNonNumericResult(t *testing.T) {
	_, err := NewEngine().Evaluate("serviceName", Input{ServiceName: "Cut"})
	assert.Error(t, err)
}

func TestEngineCachesPrograms(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Compile("price * 0.2"))
	require.NoError(t, e.Compile("price * 0.2"))
	assert.Len(t, e.cache, 1)
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.RequireFromString("59.90"), decimal.NewFromInt(35))
	assert.Equal(t, "20.97", got.StringFixed(2))
}
