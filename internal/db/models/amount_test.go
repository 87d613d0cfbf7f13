package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_BasisPoints(t *testing.T) {
	bond := MustParseAmount("15000000000000000000")

	assert.Equal(t, MustParseAmount("300000000000000000"), bond.BasisPoints(200))
	assert.Equal(t, bond, bond.BasisPoints(10000))
	assert.True(t, bond.BasisPoints(0).IsZero())
	assert.Equal(t, NewAmount(1), NewAmount(15).BasisPoints(1000))
}

func TestAmount_SubSaturates(t *testing.T) {
	assert.Equal(t, NewAmount(3), NewAmount(10).Sub(NewAmount(7)))
	assert.True(t, NewAmount(7).Sub(NewAmount(10)).IsZero())
}

func TestAmount_AddOverflow(t *testing.T) {
	maxAmount := MustParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")

	_, overflow := maxAmount.AddOverflow(NewAmount(1))
	assert.True(t, overflow)

	sum, overflow := NewAmount(1).AddOverflow(NewAmount(2))
	assert.False(t, overflow)
	assert.Equal(t, NewAmount(3), sum)
}

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal(MustParseAmount("100000000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, `"100000000000000000000"`, string(data))

	var fromString, fromNumber Amount
	require.NoError(t, json.Unmarshal([]byte(`"42"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`42`), &fromNumber))
	assert.Equal(t, NewAmount(42), fromString)
	assert.Equal(t, NewAmount(42), fromNumber)

	var invalid Amount
	assert.Error(t, json.Unmarshal([]byte(`"-1"`), &invalid))
}

func TestAmount_Scan(t *testing.T) {
	var a Amount

	require.NoError(t, a.Scan([]byte("1500")))
	assert.Equal(t, NewAmount(1500), a)

	require.NoError(t, a.Scan(int64(7)))
	assert.Equal(t, NewAmount(7), a)

	require.NoError(t, a.Scan(nil))
	assert.True(t, a.IsZero())

	assert.Error(t, a.Scan(3.14))

	value, err := NewAmount(99).Value()
	require.NoError(t, err)
	assert.Equal(t, "99", value)
}

func TestPeriodName_Next(t *testing.T) {
	assert.Equal(t, PeriodNameVoting, PeriodNameApplication.Next())
	assert.Equal(t, PeriodNameApplication, PeriodNameVoting.Next())
	assert.Equal(t, "Voting Period", PeriodNameVoting.CapitalizedString())
}
