package service

import (
	"github.com/primarycell/assessment/internal/model"
)

// AnalyzeConditions classifies the selected conditions and decides which
// education page (if any) the respondent sees next.
//
// hasOther is true when the free-text "other" condition is non-blank.
// Condition IDs outside both catalogs are ignored.
func AnalyzeConditions(conditions []string, hasOther bool) model.ConditionAnalysis {
	treatable := model.FilterConditions(conditions, model.TreatableConditions)
	nonTreatable := model.FilterConditions(conditions, model.NonTreatableConditions)

	hasTreatable := len(treatable) > 0
	hasNonTreatable := len(nonTreatable) > 0

	switch {
	case hasOther && !hasTreatable && !hasNonTreatable:
		return alternative(model.StatusManualReview, nil, nil)

	case hasOther && hasTreatable && !hasNonTreatable:
		a := primary(treatable, nil)
		a.RequiresManualReview = true
		return a

	case hasOther && hasNonTreatable:
		return alternative(model.StatusManualReview, treatable, nonTreatable)

	case hasTreatable && !hasNonTreatable:
		return primary(treatable, nil)

	case hasNonTreatable && !hasTreatable:
		return model.ConditionAnalysis{
			QualificationStatus:    model.StatusDisqualifiedNonTreatable,
			TreatableConditions:    []string{},
			NonTreatableConditions: nonTreatable,
			DisqualificationReason: model.DisqualificationNonTreatableOnly,
		}

	case hasTreatable && hasNonTreatable:
		return primary(treatable, nonTreatable)
	}

	// Nothing recognisable was selected
	return alternative(model.StatusManualReview, nil, nil)
}

func primary(treatable, nonTreatable []string) model.ConditionAnalysis {
	return model.ConditionAnalysis{
		QualificationStatus:    model.StatusQualified,
		TreatableConditions:    orEmpty(treatable),
		NonTreatableConditions: orEmpty(nonTreatable),
		ShouldShowPrimaryCell:  true,
	}
}

func alternative(status model.QualificationStatus, treatable, nonTreatable []string) model.ConditionAnalysis {
	return model.ConditionAnalysis{
		QualificationStatus:              status,
		TreatableConditions:              orEmpty(treatable),
		NonTreatableConditions:           orEmpty(nonTreatable),
		ShouldShowAlternativePrimaryCell: true,
		RequiresManualReview:             true,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
