package revenue

import (
	"math"
	"sort"
)

// Commission returns the platform cut of a sale, rounded to the nearest cent.
func Commission(amountCents int64, rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(math.Round(float64(amountCents) * rate))
}

// Summarize aggregates transactions. Pending and failed ones are counted but carry no money.
func Summarize(txs []Transaction) Summary {
	var sum Summary
	months := map[string]*MonthPoint{}
	for _, t := range txs {
		switch t.Status {
		case StatusPending:
			sum.Pending++
			continue
		case StatusFailed:
			sum.Failed++
			continue
		}
		sum.Completed++

		key := t.OccurredAt.UTC().Format("2006-01")
		mp, ok := months[key]
		if !ok {
			mp = &MonthPoint{Month: key}
			months[key] = mp
		}
		switch t.Type {
		case TypeSale:
			sum.GrossSalesCents += t.AmountCents
			mp.SalesCents += t.AmountCents
		case TypeCommission:
			sum.CommissionCents += t.AmountCents
			mp.CommissionCents += t.AmountCents
			mp.NetCents += t.AmountCents
		case TypeFee:
			sum.FeesCents += t.AmountCents
			mp.NetCents += t.AmountCents
		case TypeRefund:
			sum.RefundsCents += t.AmountCents
			mp.NetCents -= t.AmountCents
		case TypePayout:
			sum.PayoutsCents += t.AmountCents
		}
	}
	sum.NetRevenueCents = sum.CommissionCents + sum.FeesCents - sum.RefundsCents

	sum.Monthly = make([]MonthPoint, 0, len(months))
	for _, mp := range months {
		sum.Monthly = append(sum.Monthly, *mp)
	}
	sort.Slice(sum.Monthly, func(i, j int) bool { return sum.Monthly[i].Month < sum.Monthly[j].Month })
	return sum
}
