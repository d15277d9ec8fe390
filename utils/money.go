package utils

import "github.com/shopspring/decimal"

// LineTotal returns price*quantity rounded to cents.
func LineTotal(price float64, quantity int) float64 {
	f, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return f
}

// SumMoney adds amounts without accumulating float error.
func SumMoney(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// AverageRating averages 1..5 star ratings to one decimal place.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := int64(0)
	for _, r := range ratings {
		sum += int64(r)
	}
	f, _ := decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(len(ratings))), 1).Float64()
	return f
}
