package calc

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var compactUnits = []struct {
	threshold decimal.Decimal
	suffix    string
}{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// ToTokens 按精度换算为代币数量，仅用于展示
func ToTokens(raw *big.Int, decimals int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, int32(-decimals))
}

// FormatCompact 以 K/M/B/T 后缀格式化代币数量，例如 800M、522.67M
func FormatCompact(raw *big.Int, decimals int) string {
	return FormatCompactTokens(ToTokens(raw, decimals))
}

// FormatCompactTokens 同 FormatCompact，输入为已换算的代币数量
func FormatCompactTokens(tokens decimal.Decimal) string {
	for _, unit := range compactUnits {
		if tokens.Abs().GreaterThanOrEqual(unit.threshold) {
			return tokens.Div(unit.threshold).Round(2).String() + unit.suffix
		}
	}
	return tokens.Round(2).String()
}
