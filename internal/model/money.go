package model

import "github.com/shopspring/decimal"

// minorUnitsPerMajor задаёт количество минимальных единиц (центов) в основной единице валюты.
const minorUnitsPerMajor = 100

// ToMinorUnits переводит сумму в основных единицах в целые центы с округлением до ближайшего.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(minorUnitsPerMajor)).Round(0).IntPart()
}

// FromMinorUnits переводит целые центы в сумму в основных единицах.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatMoney форматирует сумму с двумя знаками после запятой.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
