package validation

import (
	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// Request is the input to a validation run. Area is the measured basis used by
// per-area checks; zero skips them. A nil Benchmark skips the benchmark check.
type Request struct {
	Quote       domain.Quote
	JobType     string
	Description string
	Area        float64
	Benchmark   *domain.Benchmark
}

// Bounds parameterize the generic checks. Specific validators start from the
// policy bounds and override what their domain knows better.
type Bounds struct {
	MinRate             float64
	MaxRate             float64
	MinTotalHours       float64
	MaxItemHoursShare   float64
	MinMaterialRatio    float64
	MaxMaterialRatio    float64
	EquipmentWarnRatio  float64
	EquipmentErrorRatio float64
}

func BoundsFromPolicy(p domain.PricingPolicy) Bounds {
	return Bounds{
		MinRate:             p.MinHourlyRate,
		MaxRate:             p.MaxHourlyRate,
		MinTotalHours:       p.Validator.MinTotalHours,
		MaxItemHoursShare:   p.Validator.MaxItemHoursShare,
		MinMaterialRatio:    p.Validator.MinMaterialRatio,
		MaxMaterialRatio:    p.Validator.MaxMaterialRatio,
		EquipmentWarnRatio:  p.Validator.EquipmentWarnRatio,
		EquipmentErrorRatio: p.Validator.EquipmentErrorRatio,
	}
}

type JobFinder interface {
	Find(key string) domain.JobDefinition
}

// domainCheck is a job-type specific validator layered on the generic checks.
type domainCheck interface {
	bounds(base Bounds) Bounds
	check(req Request, res *result)
}

// Validator runs the generic checks, the job type's specific checks, and the
// optional benchmark sanity check. It is pure: the same request always yields
// the same result.
type Validator struct {
	policy   domain.PricingPolicy
	jobs     JobFinder
	specific map[domain.ValidatorKind]domainCheck
}

func New(policy domain.PricingPolicy, jobs JobFinder) *Validator {
	return &Validator{
		policy: policy,
		jobs:   jobs,
		specific: map[domain.ValidatorKind]domainCheck{
			domain.ValidatorKitchen:  kitchenCheck{},
			domain.ValidatorBathroom: bathroomCheck{},
			domain.ValidatorPainting: paintingCheck{},
		},
	}
}

// Kind returns the validator kind the job type resolves to.
func (v *Validator) Kind(jobType string) domain.ValidatorKind {
	if v.jobs == nil {
		return domain.ValidatorGeneric
	}
	kind := v.jobs.Find(jobType).Validator
	if _, ok := v.specific[kind]; !ok {
		return domain.ValidatorGeneric
	}
	return kind
}

func (v *Validator) Validate(req Request) domain.ValidationResult {
	base := BoundsFromPolicy(v.policy)
	specific, hasSpecific := v.specific[v.Kind(req.JobType)]
	if hasSpecific {
		base = specific.bounds(base)
	}

	res := newResult()
	checkGeneric(req.Quote, base, res)
	if hasSpecific {
		specific.check(req, res)
	}
	checkBenchmark(req, v.policy.Validator, res)
	return res.finish()
}

type result struct {
	errors   []domain.ValidationIssue
	warnings []domain.ValidationIssue
	details  map[string]float64
}

func newResult() *result {
	return &result{details: make(map[string]float64)}
}

func (r *result) fail(code, msg string) {
	r.errors = append(r.errors, domain.ValidationIssue{Code: code, Message: msg})
}

func (r *result) warn(code, msg string) {
	r.warnings = append(r.warnings, domain.ValidationIssue{Code: code, Message: msg})
}

func (r *result) finish() domain.ValidationResult {
	out := domain.ValidationResult{
		Passed:   len(r.errors) == 0,
		Errors:   r.errors,
		Warnings: r.warnings,
		Details:  r.details,
	}
	if out.Errors == nil {
		out.Errors = []domain.ValidationIssue{}
	}
	if out.Warnings == nil {
		out.Warnings = []domain.ValidationIssue{}
	}
	return out
}
