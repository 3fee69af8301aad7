package money_test

import (
	"testing"

	"github.com/BradenHooton/coffer/pkg/money"
	"github.com/stretchr/testify/assert"
)

func TestParse_WholeAndFractional(t *testing.T) {
	a, err := money.Parse("12.34")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(1234), a)

	a, err = money.Parse("500")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(50000), a)

	a, err = money.Parse("0.05")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(5), a)

	a, err = money.Parse(".75")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(75), a)
}

func TestParse_SingleFractionalDigitPadsToCents(t *testing.T) {
	a, err := money.Parse("3.5")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(350), a)
}

func TestParse_Negative(t *testing.T) {
	a, err := money.Parse("-2.50")
	assert.NoError(t, err)
	assert.Equal(t, money.Amount(-250), a)
}

func TestParse_Rejects(t *testing.T) {
	cases := []string{"", "abc", "1.234", "1.2.3", "12,34", "."}
	for _, c := range cases {
		_, err := money.Parse(c)
		assert.Error(t, err, "expected %q to be rejected", c)
	}
}

func TestParse_RejectsSignInsideNumber(t *testing.T) {
	// A sign is only valid as the leading character; ParseInt would
	// otherwise read "1.-5" as 1 unit minus 5 cents
	cases := []string{"1.-5", "1.+5", "-1.-5", "--1.50", "1-.50"}
	for _, c := range cases {
		_, err := money.Parse(c)
		assert.Error(t, err, "expected %q to be rejected", c)
	}
}

func TestParse_RejectsOverflow(t *testing.T) {
	cases := []string{
		"9223372036854775807.00",  // units*100 exceeds int64
		"99999999999999999999.00", // whole part exceeds int64 outright
	}
	for _, c := range cases {
		_, err := money.Parse(c)
		assert.Error(t, err, "expected %q to be rejected", c)
	}
}

func TestString_RoundTrip(t *testing.T) {
	assert.Equal(t, "12.34", money.Amount(1234).String())
	assert.Equal(t, "0.05", money.Amount(5).String())
	assert.Equal(t, "0.00", money.Amount(0).String())
	assert.Equal(t, "-2.50", money.Amount(-250).String())
	assert.Equal(t, "100.00", money.MustParse("100").String())
}

func TestAdd_NoPrecisionLoss(t *testing.T) {
	// 0.10 + 0.20 drifts under float arithmetic; minor units must not
	sum := money.MustParse("0.10").Add(money.MustParse("0.20"))
	assert.Equal(t, "0.30", sum.String())
}
