package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// amount 使用int64，並定義精度：小數點後 4 位
const (
	CurrencyScale = 10000

	currencyDecimals = 4
)

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// Amount 以最小單位 (1/CurrencyScale) 表示的有號金額
// 正數 = 存入, 負數 = 提出
//
// 所有餘額加總與比較都在整數上完成，不會有浮點誤差
type Amount int64

// ParseAmount 將十進位字串 (如 "-150.25") 轉成 Amount
// 超過 4 位小數或超出 int64 範圍回傳 ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return AmountFromDecimal(d)
}

// AmountFromFloat 轉換浮點金額，採最短十進位表示 (0.1 -> "0.1")
func AmountFromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return AmountFromDecimal(decimal.NewFromFloat(f))
}

// AmountFromDecimal 轉換 decimal，必須能被 CurrencyScale 整除
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	scaled := d.Shift(currencyDecimals)
	if !scaled.IsInteger() {
		return 0, ErrInvalidAmount
	}
	if scaled.GreaterThan(maxAmount) || scaled.LessThan(minAmount) {
		return 0, ErrInvalidAmount
	}
	return Amount(scaled.IntPart()), nil
}

// Decimal 轉回十進位表示
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -currencyDecimals)
}

// Float64 僅供顯示或傳輸使用，不可拿來做加總
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// Add 檢查溢位的加法，溢位時 ok=false
func (a Amount) Add(b Amount) (sum Amount, ok bool) {
	sum = a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func (a Amount) String() string {
	return a.Decimal().String()
}
