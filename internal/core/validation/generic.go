package validation

import (
	"fmt"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// checkGeneric runs the seven generic checks in order.
func checkGeneric(q domain.Quote, b Bounds, res *result) {
	hours := q.TotalHours()
	work := q.Summary.WorkCost
	total := q.Summary.TotalBeforeVAT
	res.details["totalHours"] = domain.RoundTo(hours, 2)
	res.details["totalBeforeVAT"] = total

	if hours < b.MinTotalHours {
		res.fail(domain.IssueTooFewHours, fmt.Sprintf("Totalt %.1f timmar understiger minimum %.1f timmar", hours, b.MinTotalHours))
	}

	if hours > 0 {
		lower, upper := hours*b.MinRate, hours*b.MaxRate
		switch {
		case total < lower:
			res.fail(domain.IssueTotalBelowRateBound, fmt.Sprintf("Totalpris %.0f kr understiger %.1f h × minimitimpris %.0f kr/h = %.0f kr", total, hours, b.MinRate, lower))
		case b.MaxRate > 0 && total > upper:
			res.warn(domain.IssueTotalAboveRateBound, fmt.Sprintf("Totalpris %.0f kr överstiger %.1f h × maxtimpris %.0f kr/h = %.0f kr", total, hours, b.MaxRate, upper))
		}

		effective := work / hours
		res.details["effectiveHourlyRate"] = domain.RoundTo(effective, 2)
		switch {
		case effective < b.MinRate:
			res.fail(domain.IssueRateBelowMinimum, fmt.Sprintf("Effektivt timpris %.0f kr/h understiger minimum %.0f kr/h", effective, b.MinRate))
		case b.MaxRate > 0 && effective > b.MaxRate:
			res.warn(domain.IssueRateAboveMaximum, fmt.Sprintf("Effektivt timpris %.0f kr/h överstiger maximum %.0f kr/h", effective, b.MaxRate))
		}
	}

	if len(q.WorkItems) == 0 {
		res.fail(domain.IssueNoWorkItems, "Offerten saknar arbetsmoment")
	}

	if len(q.WorkItems) >= 2 && hours > 0 {
		var maxShare float64
		var maxName string
		for _, item := range q.WorkItems {
			if share := item.Hours / hours; share > maxShare {
				maxShare, maxName = share, item.Name
			}
		}
		res.details["maxItemHoursShare"] = domain.RoundTo(maxShare, 3)
		if maxShare > b.MaxItemHoursShare {
			res.warn(domain.IssueItemDominatesHours, fmt.Sprintf("Momentet %q står för %.0f%% av alla timmar (max %.0f%%)", maxName, maxShare*100, b.MaxItemHoursShare*100))
		}
	}

	material := q.Summary.MaterialCost
	if material > 0 && work > 0 {
		ratio := material / work
		res.details["materialLaborRatio"] = domain.RoundTo(ratio, 3)
		if ratio < b.MinMaterialRatio || ratio > b.MaxMaterialRatio {
			res.warn(domain.IssueMaterialRatio, fmt.Sprintf("Material/arbete-kvot %.2f ligger utanför [%.2f, %.2f]", ratio, b.MinMaterialRatio, b.MaxMaterialRatio))
		}
	}

	equipment := q.Summary.EquipmentCost
	if equipment > 0 {
		if work <= 0 {
			res.fail(domain.IssueEquipmentExceedsWork, fmt.Sprintf("Utrustning %.0f kr utan någon arbetskostnad", equipment))
			return
		}
		ratio := equipment / work
		res.details["equipmentLaborRatio"] = domain.RoundTo(ratio, 3)
		switch {
		case ratio > b.EquipmentErrorRatio:
			res.fail(domain.IssueEquipmentExceedsWork, fmt.Sprintf("Utrustningskostnad %.0f%% av arbetskostnaden överstiger %.0f%%", ratio*100, b.EquipmentErrorRatio*100))
		case ratio >= b.EquipmentWarnRatio:
			res.warn(domain.IssueEquipmentRatio, fmt.Sprintf("Utrustningskostnad %.0f%% av arbetskostnaden är hög", ratio*100))
		}
	}
}

func checkBenchmark(req Request, p domain.ValidatorPolicy, res *result) {
	bm := req.Benchmark
	if bm == nil || bm.SampleSize <= 0 || bm.MaxValue <= 0 {
		return
	}
	total := req.Quote.Summary.TotalBeforeVAT
	lower, upper := bm.MinValue*p.BenchmarkLowFactor, bm.MaxValue*p.BenchmarkHighFactor
	res.details["benchmarkMedian"] = bm.MedianValue
	if total < lower || total > upper {
		res.warn(domain.IssueBenchmarkOutlier, fmt.Sprintf("Totalpris %.0f kr avviker från branschnivån %.0f–%.0f kr (%d offerter)", total, bm.MinValue, bm.MaxValue, bm.SampleSize))
	}
}
