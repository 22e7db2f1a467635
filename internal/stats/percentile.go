// Package stats computes percentile price bands over marketplace samples.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

const (
	// MinSample is the smallest sample for which a band is reported.
	MinSample = 3

	// TrimMinSample is the smallest sample that gets outlier trimming.
	TrimMinSample = 5

	// TrimFraction is the share of values dropped from each end when trimming.
	TrimFraction = 0.10
)

var (
	p25 = decimal.NewFromFloat(0.25)
	p50 = decimal.NewFromFloat(0.5)
	p75 = decimal.NewFromFloat(0.75)
)

// Sorted returns an ascending copy of prices.
func Sorted(prices []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(prices))
	copy(out, prices)
	sort.Slice(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

// Percentile returns the p-th fraction of an ascending sample using linear
// interpolation between the floor and ceil ranks of (n-1)*p. An empty
// sample yields zero.
func Percentile(sorted []decimal.Decimal, p decimal.Decimal) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	if n == 1 {
		return sorted[0]
	}

	pos := decimal.NewFromInt(int64(n - 1)).Mul(p)
	lo := int(pos.IntPart())
	if lo < 0 {
		lo = 0
	}
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos.Sub(decimal.NewFromInt(int64(lo)))
	return sorted[lo].Add(sorted[lo+1].Sub(sorted[lo]).Mul(frac))
}

// Trim drops the lowest and highest TrimFraction of an ascending sample
// (at least one value from each end) when it holds at least TrimMinSample
// values. Smaller samples are returned unmodified.
func Trim(sorted []decimal.Decimal) []decimal.Decimal {
	n := len(sorted)
	if n < TrimMinSample {
		return sorted
	}
	k := max(int(float64(n)*TrimFraction), 1)
	return sorted[k : n-k]
}

// Band computes the soft/typical/near-mint percentiles of prices. Count is
// always the size of the input sample. Samples below MinSample produce a
// band with null percentiles.
func Band(prices []decimal.Decimal) model.PriceBand {
	return band(Sorted(prices), len(prices))
}

// TrimmedBand is Band over the outlier-trimmed sample. Count still reports
// the pre-trim sample size.
func TrimmedBand(prices []decimal.Decimal) model.PriceBand {
	return band(Trim(Sorted(prices)), len(prices))
}

func band(sorted []decimal.Decimal, count int) model.PriceBand {
	b := model.PriceBand{Count: count}
	if len(sorted) < MinSample {
		return b
	}
	b.Soft = decimal.NewNullDecimal(Percentile(sorted, p25))
	b.Typical = decimal.NewNullDecimal(Percentile(sorted, p50))
	b.NearMint = decimal.NewNullDecimal(Percentile(sorted, p75))
	return Monotonic(b)
}

// Monotonic enforces soft <= typical <= nearMint by raising each value to
// the floor set by the one below it. Null fields are left untouched.
func Monotonic(b model.PriceBand) model.PriceBand {
	if b.Soft.Valid && b.Typical.Valid && b.Typical.Decimal.LessThan(b.Soft.Decimal) {
		b.Typical = b.Soft
	}
	if b.Typical.Valid && b.NearMint.Valid && b.NearMint.Decimal.LessThan(b.Typical.Decimal) {
		b.NearMint = b.Typical
	}
	return b
}
