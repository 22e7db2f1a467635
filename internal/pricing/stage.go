package pricing

import (
	"github.com/signalpages/ComicScannerApp-sub000/internal/marketplace"
	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
	"github.com/signalpages/ComicScannerApp-sub000/internal/stats"
)

// stage is one rung of the ladder: where to look, what to ask, how to turn
// the classified listings into a result, and how many listings it needs.
type stage struct {
	name     model.Stage
	source   marketplace.Source
	minCount int
	// eligible reports whether the stage applies to the request at all.
	eligible func(req request) bool
	query    func(req request) marketplace.Query
	compute  func(raw, slabs []model.ClassifiedListing) stageResult
}

type stageResult struct {
	value     model.PriceValue
	count     int
	rawCount  int
	slabCount int
	imageURL  *string
}

func (s stage) accepts(r stageResult) bool {
	return r.count >= s.minCount
}

// buildStages turns the ladder policy into descriptors bound to sources.
// Disabled stages and stages without a source are omitted.
func buildStages(cfg LadderConfig, sold, active marketplace.Source) []stage {
	var out []stage
	for _, sc := range cfg.Stages {
		if sc.Disabled {
			continue
		}
		var st stage
		switch sc.Name {
		case model.StageSoldStrict:
			st = stage{
				source:   sold,
				eligible: func(req request) bool { return req.year != 0 },
				query: func(req request) marketplace.Query {
					return marketplace.Query{Series: req.series, Issue: req.issue, Year: req.year, Strict: true}
				},
				compute: soldResult,
			}
		case model.StageSoldRelaxed:
			st = stage{
				source:   sold,
				eligible: func(request) bool { return true },
				query: func(req request) marketplace.Query {
					return marketplace.Query{Series: req.series, Issue: req.issue}
				},
				compute: soldResult,
			}
		case model.StageActive:
			st = stage{
				source:   active,
				eligible: func(request) bool { return true },
				query: func(req request) marketplace.Query {
					return marketplace.Query{Series: req.series, Issue: req.issue}
				},
				compute: activeResult,
			}
		default:
			continue
		}
		if st.source == nil {
			continue
		}
		st.name = sc.Name
		st.minCount = sc.MinCount
		out = append(out, st)
	}
	return out
}

// soldResult prices from realised sales. Both samples are outlier-trimmed;
// raw supplies soft and typical, slabs the slab median.
func soldResult(raw, slabs []model.ClassifiedListing) stageResult {
	rawBand := stats.TrimmedBand(model.Prices(raw))
	slabBand := stats.TrimmedBand(model.Prices(slabs))

	v := model.PriceValue{
		Soft:    rawBand.Soft,
		Typical: rawBand.Typical,
		Slabs:   slabBand.Typical,
	}
	return stageResult{
		value:     floorValue(v),
		count:     len(raw) + len(slabs),
		rawCount:  len(raw),
		slabCount: len(slabs),
		imageURL:  coverImage(raw, slabs),
	}
}

// activeResult prices from asking prices of raw copies only; no slab value
// is available on this path and the sample is not trimmed.
func activeResult(raw, _ []model.ClassifiedListing) stageResult {
	band := stats.Band(model.Prices(raw))
	return stageResult{
		value: model.PriceValue{
			Soft:    band.Soft,
			Typical: band.Typical,
		},
		count:    len(raw),
		rawCount: len(raw),
		imageURL: coverImage(raw, nil),
	}
}

// floorValue raises typical to soft and slabs to typical where they fall
// below.
func floorValue(v model.PriceValue) model.PriceValue {
	if v.Soft.Valid && v.Typical.Valid && v.Typical.Decimal.LessThan(v.Soft.Decimal) {
		v.Typical = v.Soft
	}
	if v.Typical.Valid && v.Slabs.Valid && v.Slabs.Decimal.LessThan(v.Typical.Decimal) {
		v.Slabs = v.Typical
	}
	return v
}

// coverImage picks the first raw listing with an image, then the first slab.
func coverImage(raw, slabs []model.ClassifiedListing) *string {
	for _, group := range [][]model.ClassifiedListing{raw, slabs} {
		for _, l := range group {
			if l.HasImage() {
				u := l.ImageURL
				return &u
			}
		}
	}
	return nil
}

