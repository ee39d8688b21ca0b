package pricing

import (
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
	"github.com/kirillkom/quote-assistant/internal/core/jobs"
)

type RateSource string

const (
	RateFromUser    RateSource = "user"
	RateFromJob     RateSource = "job_default"
	RateFromPolicy  RateSource = "policy_default"
	RateFromClamped RateSource = "clamped"
)

// workTypeAliases folds the spellings users store their rates under onto registry work types.
var workTypeAliases = map[string]string{
	"painter":         jobs.WorkPainter,
	"maleri":          jobs.WorkPainter,
	"malning":         jobs.WorkPainter,
	"malerifirma":     jobs.WorkPainter,
	"carpenter":       jobs.WorkCarpenter,
	"snickeri":        jobs.WorkCarpenter,
	"bygg":            jobs.WorkCarpenter,
	"byggare":         jobs.WorkCarpenter,
	"tiler":           jobs.WorkTiler,
	"plattsattning":   jobs.WorkTiler,
	"kakel":           jobs.WorkTiler,
	"plumber":         jobs.WorkPlumber,
	"rormokare":       jobs.WorkPlumber,
	"vvs-montor":      jobs.WorkPlumber,
	"electrician":     jobs.WorkElectrician,
	"el":              jobs.WorkElectrician,
	"elinstallator":   jobs.WorkElectrician,
	"roofer":          jobs.WorkRoofer,
	"takarbete":       jobs.WorkRoofer,
	"cleaning":        jobs.WorkCleaner,
	"stadning":        jobs.WorkCleaner,
	"stadare":         jobs.WorkCleaner,
	"gardener":        jobs.WorkGardener,
	"tradgardsarbete": jobs.WorkGardener,
	"moving":          jobs.WorkMover,
	"flytthjalp":      jobs.WorkMover,
	"general":         jobs.WorkGeneral,
	"hantverkare":     jobs.WorkGeneral,
}

// CanonicalWorkType maps a stored work type to its registry spelling, diacritic-insensitively.
func CanonicalWorkType(workType string) string {
	key := jobs.Normalize(workType)
	if canonical, ok := workTypeAliases[key]; ok {
		return jobs.Normalize(canonical)
	}
	return key
}

// RateTable indexes a user's hourly rates by canonical work type.
type RateTable map[string]float64

func NewRateTable(rates []domain.HourlyRate) RateTable {
	table := make(RateTable, len(rates))
	for _, r := range rates {
		if r.Rate <= 0 || strings.TrimSpace(r.WorkType) == "" {
			continue
		}
		table[CanonicalWorkType(r.WorkType)] = r.Rate
	}
	return table
}

// Select returns the rate for a task: the user's own rate for the work type, then
// the task default, then the policy default. The result is never zero.
func (t RateTable) Select(task domain.TaskFormula, policy domain.PricingPolicy) (float64, RateSource) {
	if rate, ok := t[CanonicalWorkType(task.WorkType)]; ok && rate > 0 {
		return rate, RateFromUser
	}
	if task.DefaultRate > 0 {
		return task.DefaultRate, RateFromJob
	}
	if policy.DefaultHourlyRate > 0 {
		return policy.DefaultHourlyRate, RateFromPolicy
	}
	return domain.DefaultPricingPolicy().DefaultHourlyRate, RateFromPolicy
}

// equipmentPrice returns the user's price for a piece of equipment in the requested unit.
func equipmentPrice(rates []domain.EquipmentRate, name, unit string) (float64, bool, bool) {
	want := jobs.Normalize(name)
	for _, r := range rates {
		got := jobs.Normalize(r.Name)
		if got == "" || (got != want && !strings.Contains(want, got) && !strings.Contains(got, want)) {
			continue
		}
		switch {
		case unit == domain.EquipmentPerHour && r.PricePerHour > 0:
			return r.PricePerHour, r.IsRented, true
		case unit == domain.EquipmentPerDay && r.PricePerDay > 0:
			return r.PricePerDay, r.IsRented, true
		case unit == domain.EquipmentPerHour && r.PricePerDay > 0:
			return r.PricePerDay / hoursPerDay, r.IsRented, true
		case unit == domain.EquipmentPerDay && r.PricePerHour > 0:
			return r.PricePerHour * hoursPerDay, r.IsRented, true
		}
	}
	return 0, false, false
}

const hoursPerDay = 8
