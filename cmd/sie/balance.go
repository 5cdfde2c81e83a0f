package main

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type balance struct {
	total  decimal.Decimal
	months map[string]decimal.Decimal
}

func newBalance() *balance {
	return &balance{months: make(map[string]decimal.Decimal)}
}

func (b *balance) add(date time.Time, amount float64) {
	if math.IsNaN(amount) {
		return
	}
	d := decimal.NewFromFloat(amount).Round(2)
	b.total = b.total.Add(d)
	key := date.Format("2006-01")
	b.months[key] = b.months[key].Add(d)
}

func (b *balance) inverse() *balance {
	res := newBalance()
	res.total = b.total.Neg()
	for k, v := range b.months {
		res.months[k] = v.Neg()
	}
	return res
}

func (b *balance) addAll(other *balance) {
	b.total = b.total.Add(other.total)
	for key, v := range other.months {
		b.months[key] = b.months[key].Add(v)
	}
}
