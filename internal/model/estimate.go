package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage identifies the ladder tier that produced an estimate.
type Stage string

const (
	StageSoldStrict  Stage = "sold_strict"
	StageSoldRelaxed Stage = "sold_relaxed"
	StageActive      Stage = "active"
	StageNone        Stage = "none"
)

// AllStages returns the ladder stages in evaluation order.
func AllStages() []Stage {
	return []Stage{StageSoldStrict, StageSoldRelaxed, StageActive}
}

// Method identifies how the listings behind an estimate were retrieved.
type Method string

const (
	MethodScrape Method = "scrape"
	MethodAPI    Method = "api"
	MethodNone   Method = "none"
)

// PriceBand holds the 25th/50th/75th percentile of a price sample. The
// percentile fields are null when the sample is too small to be meaningful.
type PriceBand struct {
	Soft     decimal.NullDecimal `json:"soft"`
	Typical  decimal.NullDecimal `json:"typical"`
	NearMint decimal.NullDecimal `json:"nearMint"`
	Count    int                 `json:"count"`
}

// Empty reports whether the band carries no percentile values.
func (b PriceBand) Empty() bool {
	return !b.Soft.Valid && !b.Typical.Valid && !b.NearMint.Valid
}

// PriceValue is the client-facing value triple of an estimate.
type PriceValue struct {
	Typical decimal.NullDecimal `json:"typical"`
	Soft    decimal.NullDecimal `json:"soft"`
	Slabs   decimal.NullDecimal `json:"slabs"`
}

// EstimateMeta records the provenance of an estimate.
type EstimateMeta struct {
	Stage      Stage     `json:"stage"`
	Method     Method    `json:"method"`
	Count      int       `json:"count"`
	RawCount   int       `json:"rawCount"`
	SlabCount  int       `json:"slabCount"`
	ComputedAt time.Time `json:"computedAt"`
	// Cached is set on responses served from the result cache. It is never
	// persisted as true.
	Cached bool `json:"cached"`
}

// PriceEstimate is the cached artifact returned by the pricing ladder.
type PriceEstimate struct {
	Value    PriceValue   `json:"value"`
	ImageURL *string      `json:"imageUrl"`
	Meta     EstimateMeta `json:"meta"`
}

// Available reports whether the estimate may be served as authoritative.
func (e *PriceEstimate) Available() bool {
	return e != nil && e.Meta.Stage != "" && e.Meta.Stage != StageNone
}

// FreshAt reports whether the estimate is younger than retention at now.
func (e *PriceEstimate) FreshAt(now time.Time, retention time.Duration) bool {
	if e == nil || e.Meta.ComputedAt.IsZero() {
		return false
	}
	return now.Sub(e.Meta.ComputedAt) < retention
}

// Unavailable builds the stage-none estimate: every price field null.
func Unavailable(computedAt time.Time) *PriceEstimate {
	return &PriceEstimate{
		Meta: EstimateMeta{
			Stage:      StageNone,
			Method:     MethodNone,
			ComputedAt: computedAt,
		},
	}
}
