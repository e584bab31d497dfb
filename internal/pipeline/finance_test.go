package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalsForwardFromHT(t *testing.T) {
	totals := ComputeTotals(2, fp(50), nil)

	assert.Equal(t, BasisHT, totals.Basis)
	assert.InDelta(t, 100, totals.TotalHT, 1e-6)
	assert.InDelta(t, 20, totals.VAT, 1e-6)
	assert.InDelta(t, 120, totals.TotalTTC, 1e-6)
	assert.InDelta(t, totals.TotalHT*1.2, totals.TotalTTC, 1e-6)
}

func TestComputeTotalsInverseFromTTC(t *testing.T) {
	totals := ComputeTotals(1, nil, fp(120))

	assert.Equal(t, BasisTTC, totals.Basis)
	assert.InDelta(t, 120, totals.TotalTTC, 1e-6)
	assert.InDelta(t, 120*VATRate/(1+VATRate), totals.VAT, 1e-6)
	assert.InDelta(t, totals.TotalTTC-totals.VAT, totals.TotalHT, 1e-6)
}

func TestComputeTotalsHTWinsOverTTC(t *testing.T) {
	// Both present: the forward path applies and the inclusive price is ignored.
	totals := ComputeTotals(1, fp(100), fp(999))

	assert.Equal(t, BasisHT, totals.Basis)
	assert.InDelta(t, 100, totals.TotalHT, 1e-6)
}

func TestComputeTotalsNoPrice(t *testing.T) {
	totals := ComputeTotals(3, nil, nil)

	assert.Equal(t, BasisNone, totals.Basis)
	assert.Zero(t, totals.TotalHT)
	assert.Zero(t, totals.VAT)
	assert.Zero(t, totals.TotalTTC)
}
