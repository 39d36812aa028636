package shared

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits a minor-unit money column
// stores (§6: "Money is a signed 64-bit integer in the product's currency
// minor unit"). Most ISO 4217 currencies use 2 (cents); currency-specific
// exponents (e.g. JPY at 0, BHD at 3) are a known simplification, noted in
// DESIGN.md.
const MoneyScale = 2

// QuantityScale is the number of fractional digits a minor-unit quantity
// column stores. §6 specifies quantity as a plain signed 64-bit integer,
// i.e. zero fractional digits.
const QuantityScale = 0

// DecimalToMoneyMinor converts a decimal amount to its minor-unit integer
// representation, rounding half-to-even at MoneyScale.
func DecimalToMoneyMinor(d decimal.Decimal) int64 {
	return d.Shift(MoneyScale).RoundBank(0).IntPart()
}

// MoneyMinorToDecimal converts a stored minor-unit integer back to a
// decimal amount.
func MoneyMinorToDecimal(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-MoneyScale)
}

// DecimalToQuantityMinor converts a decimal quantity to its integer
// representation, rounding half-to-even at QuantityScale.
func DecimalToQuantityMinor(d decimal.Decimal) int64 {
	return d.RoundBank(QuantityScale).IntPart()
}

// QuantityMinorToDecimal converts a stored integer quantity back to a
// decimal value.
func QuantityMinorToDecimal(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor)
}
