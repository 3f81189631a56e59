package service

import (
	"github.com/primarycell/assessment/internal/model"
	"github.com/primarycell/assessment/internal/sanitize"
)

// qualifiedPath is the page order a qualified respondent walks through.
// The alternative education page takes the primary page's slot.
var qualifiedPath = []model.Step{
	model.StepDuration,
	model.StepTreatments,
	model.StepPainMedications,
	model.StepConditions,
	model.StepEducationPrimaryCell,
	model.StepMissing,
	model.StepUrgency,
	model.StepSpending,
	model.StepQuestions,
	model.StepCongratulations,
	model.StepWelcome,
}

// Steps returns the ordered qualified path for progress display
func Steps() []model.Step {
	out := make([]model.Step, len(qualifiedPath))
	copy(out, qualifiedPath)
	return out
}

// Progress returns the 1-based position of step on the qualified path and the
// path length. Disqualification pages report the end of the path; unknown
// steps report position 0.
func Progress(step model.Step) (int, int) {
	total := len(qualifiedPath)
	switch step {
	case model.StepEducationAlternative:
		step = model.StepEducationPrimaryCell
	case model.StepDisqualifiedTooSoon, model.StepDisqualifiedNonTreatable:
		return total, total
	}
	for i, s := range qualifiedPath {
		if s == step {
			return i + 1, total
		}
	}
	return 0, total
}

// NextStep decides which page follows current given the answers collected so
// far. Answers for the current step are validated against the option catalogs.
func NextStep(current model.Step, resp model.QuizResponse) (model.StepDecision, error) {
	d := model.StepDecision{Current: current}

	switch current {
	case model.StepDuration:
		switch resp.PainDuration {
		case "":
			return d, fieldErr("pain_duration", ErrStepIncomplete)
		case model.PainDurationSixMonthsOrLess:
			d.Next = model.StepDisqualifiedTooSoon
			d.Status = model.StatusDisqualifiedTooSoon
		case model.PainDurationMoreThanSixMonth:
			d.Next = model.StepTreatments
		default:
			return d, fieldErr("pain_duration", ErrInvalidOption)
		}

	case model.StepTreatments:
		treatments, err := requireOptions("treatments_tried", resp.TreatmentsTried, model.Treatments)
		if err != nil {
			return d, err
		}
		d.Next = model.StepConditions
		for _, t := range treatments {
			if t == model.TreatmentPainMedications {
				d.Next = model.StepPainMedications
				break
			}
		}

	case model.StepPainMedications:
		if _, err := requireOptions("pain_medications_types", resp.PainMedicationsTypes, model.PainMedicationTypes); err != nil {
			return d, err
		}
		d.Next = model.StepConditions

	case model.StepConditions:
		known := model.FilterConditions(resp.Conditions, model.AllConditions())
		hasOther := !sanitize.Blank(resp.ConditionOther)
		if len(known) == 0 && !hasOther {
			return d, fieldErr("conditions", ErrStepIncomplete)
		}
		analysis := AnalyzeConditions(known, hasOther)
		d.Analysis = &analysis
		d.Status = analysis.QualificationStatus
		switch {
		case analysis.QualificationStatus == model.StatusDisqualifiedNonTreatable:
			d.Next = model.StepDisqualifiedNonTreatable
		case analysis.ShouldShowPrimaryCell:
			d.Next = model.StepEducationPrimaryCell
		default:
			d.Next = model.StepEducationAlternative
		}

	case model.StepEducationPrimaryCell, model.StepEducationAlternative:
		d.Next = model.StepMissing

	case model.StepMissing:
		activities := sanitize.Options(resp.MissingActivities)
		for _, a := range activities {
			if !model.MissingActivities.Contains(a) {
				return d, fieldErr("missing_activities", ErrInvalidOption)
			}
		}
		if len(activities) == 0 && sanitize.Blank(resp.MissingOther) {
			return d, fieldErr("missing_activities", ErrStepIncomplete)
		}
		d.Next = model.StepUrgency

	case model.StepUrgency:
		if err := requireOption("urgency_level", resp.UrgencyLevel, model.UrgencyLevels); err != nil {
			return d, err
		}
		d.Next = model.StepSpending

	case model.StepSpending:
		if err := requireOption("annual_spending", resp.AnnualSpending, model.AnnualSpending); err != nil {
			return d, err
		}
		d.Next = model.StepQuestions

	case model.StepQuestions:
		d.Next = model.StepCongratulations

	case model.StepCongratulations:
		d.Next = model.StepWelcome

	case model.StepWelcome, model.StepDisqualifiedTooSoon, model.StepDisqualifiedNonTreatable:
		return d, ErrTerminalStep

	default:
		return d, ErrUnknownStep
	}

	d.Position, d.Total = Progress(d.Next)
	return d, nil
}

// requireOptions checks that at least one value was selected and that every
// value belongs to catalog.
func requireOptions(field string, values []string, catalog model.Catalog) ([]string, error) {
	values = sanitize.Options(values)
	if len(values) == 0 {
		return nil, fieldErr(field, ErrStepIncomplete)
	}
	for _, v := range values {
		if !catalog.Contains(v) {
			return nil, fieldErr(field, ErrInvalidOption)
		}
	}
	return values, nil
}

func requireOption(field, value string, catalog model.Catalog) error {
	if value == "" {
		return fieldErr(field, ErrStepIncomplete)
	}
	if !catalog.Contains(value) {
		return fieldErr(field, ErrInvalidOption)
	}
	return nil
}
