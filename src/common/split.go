package common

import (
	"fmt"
	"math"
	"starcall/src/config"
	"starcall/src/types"
)

// Split is the revenue split of one order, in minor units (cents).
type Split struct {
	BaseCents      int64
	TipCents       int64
	PlatformFee    int64
	CelebrityCents int64
	TotalCents     int64
}

func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// CalculateSplit computes the platform fee on the base amount only; the tip
// goes to the celebrity in full. Amounts are rounded to cents before any
// arithmetic so PlatformFee + CelebrityCents == TotalCents always holds.
func CalculateSplit(base float64, tip float64, feeBps int64) (Split, error) {
	if math.IsNaN(base) || math.IsInf(base, 0) || base < 0 {
		return Split{}, types.ErrValidation("Invalid order amount", fmt.Sprintf("amount must be a non-negative number, got %v", base))
	}
	if math.IsNaN(tip) || math.IsInf(tip, 0) || tip < 0 {
		return Split{}, types.ErrValidation("Invalid tip amount", "tipAmount must be zero or positive")
	}
	// checked on the float so the cent conversion below cannot overflow
	if base*100 > float64(config.MAX_AMOUNT_CENTS) {
		return Split{}, types.ErrValidation("Invalid order amount", "amount exceeds the maximum order value")
	}
	if tip*100 > float64(config.MAX_AMOUNT_CENTS) {
		return Split{}, types.ErrValidation("Invalid tip amount", "tipAmount exceeds the maximum tip")
	}
	if feeBps < 0 || feeBps > 10000 {
		return Split{}, types.ErrValidation("Invalid platform fee rate", fmt.Sprintf("fee must be between 0 and 10000 basis points, got %d", feeBps))
	}
	baseCents := ToCents(base)
	tipCents := ToCents(tip)
	if baseCents+tipCents > config.MAX_AMOUNT_CENTS {
		return Split{}, types.ErrValidation("Invalid tip amount", "order total with tip exceeds the maximum order value")
	}
	// half-up rounding of baseCents * bps / 10000
	fee := (baseCents*feeBps + 5000) / 10000

	return Split{
		BaseCents:      baseCents,
		TipCents:       tipCents,
		PlatformFee:    fee,
		CelebrityCents: baseCents - fee + tipCents,
		TotalCents:     baseCents + tipCents,
	}, nil
}

func (s Split) FeeAmount() float64 {
	return FromCents(s.PlatformFee)
}

func (s Split) CelebrityAmount() float64 {
	return FromCents(s.CelebrityCents)
}

func (s Split) TipAmount() float64 {
	return FromCents(s.TipCents)
}

func (s Split) Total() float64 {
	return FromCents(s.TotalCents)
}

// FeeRate is the bps rate as a fraction, for display.
func FeeRate(feeBps int64) float64 {
	return float64(feeBps) / 10000
}
