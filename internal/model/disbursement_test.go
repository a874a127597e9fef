package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountDisbursementTotal(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		want    string
	}{
		{"empty", nil, "0.00"},
		{"single", []string{"1180"}, "1180.00"},
		{"mixed", []string{"1180", "8820.00", "0.01"}, "10000.01"},
	}
	for _, tt := range tests {
		d := AccountDisbursement{}
		for _, a := range tt.amounts {
			d.LineItems = append(d.LineItems, LineItem{Amount: decimal.RequireFromString(a)})
		}
		assert.Equal(t, tt.want, d.Total().StringFixed(2), tt.name)
	}
}

func TestDisbursementRuleHasAmount(t *testing.T) {
	v := decimal.NewFromInt(10)
	assert.False(t, DisbursementRule{}.HasAmount())
	assert.True(t, DisbursementRule{FixedAmount: &v}.HasAmount())
	assert.True(t, DisbursementRule{Percentage: &v}.HasAmount())
}

func TestDepositAccountIsZero(t *testing.T) {
	assert.True(t, DepositAccount{AccountName: "x"}.IsZero())
	assert.False(t, DepositAccount{AccountNum: "123"}.IsZero())
}
