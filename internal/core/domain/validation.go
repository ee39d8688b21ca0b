package domain

// Validation issue codes.
const (
	IssueTooFewHours          = "total_hours_below_minimum"
	IssueTotalBelowRateBound  = "total_below_min_rate_bound"
	IssueTotalAboveRateBound  = "total_above_max_rate_bound"
	IssueRateBelowMinimum     = "hourly_rate_below_minimum"
	IssueRateAboveMaximum     = "hourly_rate_above_maximum"
	IssueNoWorkItems          = "no_work_items"
	IssueItemDominatesHours   = "single_item_hours_share"
	IssueMaterialRatio        = "material_labor_ratio"
	IssueEquipmentExceedsWork = "equipment_exceeds_labor"
	IssueEquipmentRatio       = "equipment_labor_ratio"
	IssueCostPerAreaLow       = "cost_per_area_below_bound"
	IssueCostPerAreaHigh      = "cost_per_area_above_bound"
	IssueHoursPerAreaLow      = "hours_per_area_below_bound"
	IssueHoursPerAreaHigh     = "hours_per_area_above_bound"
	IssueMissingWaterproofing = "missing_waterproofing"
	IssueBenchmarkOutlier     = "benchmark_outlier"
)

type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Passed   bool               `json:"passed"`
	Errors   []ValidationIssue  `json:"errors"`
	Warnings []ValidationIssue  `json:"warnings"`
	Details  map[string]float64 `json:"details"`
}

func (r ValidationResult) HasError(code string) bool {
	for _, issue := range r.Errors {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// WarningMessages flattens warnings for display on a quote.
func (r ValidationResult) WarningMessages() []string {
	out := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		out = append(out, w.Message)
	}
	return out
}
