package model

import "sort"

// Option is a selectable answer on a quiz step
type Option struct {
	Value string `json:"value"` // Machine-readable value
	Label string `json:"label"` // Human-readable label
}

// Catalog is a static lookup table of options for a single quiz question
type Catalog []Option

// Contains reports whether value is one of the catalog's options
func (c Catalog) Contains(value string) bool {
	for _, opt := range c {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Values returns the option values in catalog order
func (c Catalog) Values() []string {
	values := make([]string, len(c))
	for i, opt := range c {
		values[i] = opt.Value
	}
	return values
}

// Pain duration values (Q1)
const (
	PainDurationSixMonthsOrLess  = "6_months_or_less"
	PainDurationMoreThanSixMonth = "more_than_6_months"
)

// TreatmentPainMedications routes the respondent to the medication follow-up
const TreatmentPainMedications = "pain_medications"

// PainDurations is the Q1 catalog
var PainDurations = Catalog{
	{Value: PainDurationSixMonthsOrLess, Label: "6 months or less"},
	{Value: PainDurationMoreThanSixMonth, Label: "More than 6 months"},
}

// Treatments is the Q2 catalog
var Treatments = Catalog{
	{Value: "physical_therapy", Label: "Physical therapy"},
	{Value: "chiropractic", Label: "Chiropractic care"},
	{Value: "massage", Label: "Massage"},
	{Value: "acupuncture", Label: "Acupuncture"},
	{Value: "injections", Label: "Injections"},
	{Value: "surgery", Label: "Surgery"},
	{Value: TreatmentPainMedications, Label: "Pain medications"},
	{Value: "none", Label: "Nothing yet"},
}

// PainMedicationTypes is the Q2 follow-up catalog
var PainMedicationTypes = Catalog{
	{Value: "over_the_counter", Label: "Over-the-counter pain relievers"},
	{Value: "prescription_nsaids", Label: "Prescription anti-inflammatories"},
	{Value: "opioids", Label: "Opioids"},
	{Value: "muscle_relaxants", Label: "Muscle relaxants"},
	{Value: "nerve_pain", Label: "Nerve pain medication"},
}

// TreatableConditions is the Q3 catalog of conditions the program treats
var TreatableConditions = Catalog{
	{Value: "chronic_back_pain", Label: "Chronic back pain"},
	{Value: "chronic_neck_pain", Label: "Chronic neck pain"},
	{Value: "bone_on_bone_joint_pain", Label: "Bone-on-bone joint pain"},
	{Value: "old_injury_pain", Label: "Pain from an old injury"},
	{Value: "herniated_bulging_disc", Label: "Herniated or bulging disc"},
	{Value: "sciatica_constant", Label: "Constant sciatica"},
	{Value: "spinal_stenosis_spondylosis", Label: "Spinal stenosis or spondylosis"},
	{Value: "si_joint_pain", Label: "SI joint pain"},
	{Value: "pelvic_pain", Label: "Pelvic pain"},
	{Value: "mystery_pain", Label: "Pain with no clear diagnosis"},
}

// NonTreatableConditions is the Q3 catalog of conditions outside the program
var NonTreatableConditions = Catalog{
	{Value: "chronic_fatigue_syndrome", Label: "Chronic fatigue syndrome"},
	{Value: "autoimmune_diseases", Label: "Autoimmune diseases"},
	{Value: "fibromyalgia", Label: "Fibromyalgia"},
	{Value: "infectious_diseases", Label: "Infectious diseases"},
	{Value: "endocrine_disorders", Label: "Endocrine disorders"},
	{Value: "gastrointestinal_disorders", Label: "Gastrointestinal disorders"},
}

// MissingActivities is the Q4 catalog
var MissingActivities = Catalog{
	{Value: "playing_with_kids", Label: "Playing with kids or grandkids"},
	{Value: "exercise", Label: "Exercise and sports"},
	{Value: "travel", Label: "Travel"},
	{Value: "work", Label: "Working without pain"},
	{Value: "sleep", Label: "A full night's sleep"},
	{Value: "hobbies", Label: "Hobbies"},
	{Value: "social_life", Label: "Social life"},
}

// UrgencyLevels is the Q5 catalog
var UrgencyLevels = Catalog{
	{Value: "not_urgent", Label: "Just exploring"},
	{Value: "somewhat_urgent", Label: "Within the next few months"},
	{Value: "very_urgent", Label: "As soon as possible"},
	{Value: "extremely_urgent", Label: "I can't keep living like this"},
}

// AnnualSpending is the Q6 catalog
var AnnualSpending = Catalog{
	{Value: "under_1000", Label: "Under $1,000"},
	{Value: "1000_5000", Label: "$1,000 - $5,000"},
	{Value: "5000_10000", Label: "$5,000 - $10,000"},
	{Value: "10000_25000", Label: "$10,000 - $25,000"},
	{Value: "over_25000", Label: "Over $25,000"},
}

// AllConditions returns the treatable and non-treatable catalogs combined
func AllConditions() Catalog {
	all := make(Catalog, 0, len(TreatableConditions)+len(NonTreatableConditions))
	all = append(all, TreatableConditions...)
	return append(all, NonTreatableConditions...)
}

// FilterConditions returns the values present in catalog, sorted and de-duplicated
func FilterConditions(values []string, catalog Catalog) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] || !catalog.Contains(v) {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Catalogs groups every option table for the steps endpoint
type Catalogs struct {
	PainDurations          Catalog `json:"pain_durations"`
	Treatments             Catalog `json:"treatments"`
	PainMedicationTypes    Catalog `json:"pain_medication_types"`
	TreatableConditions    Catalog `json:"treatable_conditions"`
	NonTreatableConditions Catalog `json:"non_treatable_conditions"`
	MissingActivities      Catalog `json:"missing_activities"`
	UrgencyLevels          Catalog `json:"urgency_levels"`
	AnnualSpending         Catalog `json:"annual_spending"`
}

// GetCatalogs returns all option tables
func GetCatalogs() Catalogs {
	return Catalogs{
		PainDurations:          PainDurations,
		Treatments:             Treatments,
		PainMedicationTypes:    PainMedicationTypes,
		TreatableConditions:    TreatableConditions,
		NonTreatableConditions: NonTreatableConditions,
		MissingActivities:      MissingActivities,
		UrgencyLevels:          UrgencyLevels,
		AnnualSpending:         AnnualSpending,
	}
}
