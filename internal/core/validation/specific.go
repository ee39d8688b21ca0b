package validation

import (
	"fmt"
	"strings"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

type kitchenCheck struct{}

func (kitchenCheck) bounds(b Bounds) Bounds {
	// Cabinets and countertops legitimately dominate a kitchen quote.
	b.MaxMaterialRatio = 4.0
	return b
}

func (kitchenCheck) check(req Request, res *result) {
	checkCostPerArea(req, res, 3000, 80000, false)
}

type bathroomCheck struct{}

func (bathroomCheck) bounds(b Bounds) Bounds {
	b.MinTotalHours = 8
	return b
}

func (bathroomCheck) check(req Request, res *result) {
	checkCostPerArea(req, res, 4000, 60000, true)
	if !mentionsLine(req.Quote, "tätskikt") {
		res.warn(domain.IssueMissingWaterproofing, "Badrumsofferten saknar tätskikt; våtrum kräver godkänt tätskiktssystem")
	}
}

type paintingCheck struct{}

func (paintingCheck) bounds(b Bounds) Bounds {
	b.MinMaterialRatio = 0.03
	b.MaxMaterialRatio = 1.0
	return b
}

func (paintingCheck) check(req Request, res *result) {
	checkCostPerArea(req, res, 100, 1500, false)
	if req.Area <= 0 {
		return
	}
	perArea := req.Quote.TotalHours() / req.Area
	res.details["hoursPerArea"] = domain.RoundTo(perArea, 3)
	switch {
	case perArea < 0.1:
		res.warn(domain.IssueHoursPerAreaLow, fmt.Sprintf("%.2f timmar per kvm är orimligt lite för målning (min 0,10)", perArea))
	case perArea > 1.0:
		res.warn(domain.IssueHoursPerAreaHigh, fmt.Sprintf("%.2f timmar per kvm är ovanligt mycket för målning (max 1,00)", perArea))
	}
}

// checkCostPerArea compares the pre-VAT total per square metre with domain bounds.
// A low value is an error only when lowIsError is set.
func checkCostPerArea(req Request, res *result, lo, hi float64, lowIsError bool) {
	if req.Area <= 0 {
		return
	}
	perArea := req.Quote.Summary.TotalBeforeVAT / req.Area
	res.details["costPerArea"] = domain.RoundTo(perArea, 2)
	switch {
	case perArea < lo:
		msg := fmt.Sprintf("Pris per kvm %.0f kr understiger rimlig nivå %.0f kr", perArea, lo)
		if lowIsError {
			res.fail(domain.IssueCostPerAreaLow, msg)
		} else {
			res.warn(domain.IssueCostPerAreaLow, msg)
		}
	case perArea > hi:
		res.warn(domain.IssueCostPerAreaHigh, fmt.Sprintf("Pris per kvm %.0f kr överstiger rimlig nivå %.0f kr", perArea, hi))
	}
}

func mentionsLine(q domain.Quote, needle string) bool {
	for _, item := range q.WorkItems {
		if strings.Contains(strings.ToLower(item.Name+" "+item.Description), needle) {
			return true
		}
	}
	for _, m := range q.Materials {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			return true
		}
	}
	return false
}
