package service

import (
	"reflect"
	"testing"

	"github.com/primarycell/assessment/internal/model"
)

func TestAnalyzeConditions_RuleTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		conditions   []string
		hasOther     bool
		status       model.QualificationStatus
		treatable    []string
		nonTreatable []string
		primary      bool
		alternative  bool
		review       bool
		reason       string
	}{
		{
			name:         "other only",
			hasOther:     true,
			status:       model.StatusManualReview,
			treatable:    []string{},
			nonTreatable: []string{},
			alternative:  true,
			review:       true,
		},
		{
			name:         "other with treatable",
			conditions:   []string{"si_joint_pain", "chronic_back_pain"},
			hasOther:     true,
			status:       model.StatusQualified,
			treatable:    []string{"chronic_back_pain", "si_joint_pain"},
			nonTreatable: []string{},
			primary:      true,
			review:       true,
		},
		{
			name:         "other with non-treatable",
			conditions:   []string{"fibromyalgia"},
			hasOther:     true,
			status:       model.StatusManualReview,
			treatable:    []string{},
			nonTreatable: []string{"fibromyalgia"},
			alternative:  true,
			review:       true,
		},
		{
			name:         "other with both",
			conditions:   []string{"fibromyalgia", "pelvic_pain"},
			hasOther:     true,
			status:       model.StatusManualReview,
			treatable:    []string{"pelvic_pain"},
			nonTreatable: []string{"fibromyalgia"},
			alternative:  true,
			review:       true,
		},
		{
			name:         "treatable only",
			conditions:   []string{"mystery_pain"},
			status:       model.StatusQualified,
			treatable:    []string{"mystery_pain"},
			nonTreatable: []string{},
			primary:      true,
		},
		{
			name:         "non-treatable only",
			conditions:   []string{"infectious_diseases", "autoimmune_diseases"},
			status:       model.StatusDisqualifiedNonTreatable,
			treatable:    []string{},
			nonTreatable: []string{"autoimmune_diseases", "infectious_diseases"},
			reason:       model.DisqualificationNonTreatableOnly,
		},
		{
			name:         "mixed without other",
			conditions:   []string{"chronic_neck_pain", "endocrine_disorders"},
			status:       model.StatusQualified,
			treatable:    []string{"chronic_neck_pain"},
			nonTreatable: []string{"endocrine_disorders"},
			primary:      true,
		},
		{
			name:         "nothing selected",
			status:       model.StatusManualReview,
			treatable:    []string{},
			nonTreatable: []string{},
			alternative:  true,
			review:       true,
		},
		{
			name:         "unknown ids ignored",
			conditions:   []string{"not_a_condition"},
			status:       model.StatusManualReview,
			treatable:    []string{},
			nonTreatable: []string{},
			alternative:  true,
			review:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeConditions(tt.conditions, tt.hasOther)

			if got.QualificationStatus != tt.status {
				t.Errorf("status = %q, want %q", got.QualificationStatus, tt.status)
			}
			if !reflect.DeepEqual(got.TreatableConditions, tt.treatable) {
				t.Errorf("treatable = %v, want %v", got.TreatableConditions, tt.treatable)
			}
			if !reflect.DeepEqual(got.NonTreatableConditions, tt.nonTreatable) {
				t.Errorf("non-treatable = %v, want %v", got.NonTreatableConditions, tt.nonTreatable)
			}
			if got.ShouldShowPrimaryCell != tt.primary {
				t.Errorf("primary = %v, want %v", got.ShouldShowPrimaryCell, tt.primary)
			}
			if got.ShouldShowAlternativePrimaryCell != tt.alternative {
				t.Errorf("alternative = %v, want %v", got.ShouldShowAlternativePrimaryCell, tt.alternative)
			}
			if got.RequiresManualReview != tt.review {
				t.Errorf("review = %v, want %v", got.RequiresManualReview, tt.review)
			}
			if got.DisqualificationReason != tt.reason {
				t.Errorf("reason = %q, want %q", got.DisqualificationReason, tt.reason)
			}
		})
	}
}

func TestAnalyzeConditions_NeverShowsBothPages(t *testing.T) {
	t.Parallel()

	all := model.AllConditions().Values()
	for i := range all {
		for _, other := range []bool{false, true} {
			a := AnalyzeConditions(all[:i], other)
			if a.ShouldShowPrimaryCell && a.ShouldShowAlternativePrimaryCell {
				t.Fatalf("both pages shown for %v other=%v", all[:i], other)
			}
		}
	}
}
