package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names of the patient record. These are the canonical keys the
// extraction service and the classifier speak; the set is closed.
const (
	FieldGender                = "gender"
	FieldAge                   = "age"
	FieldOccupation            = "occupation"
	FieldSleepDuration         = "sleep_duration"
	FieldSleepQuality          = "sleep_quality"
	FieldPhysicalActivityLevel = "physical_activity_level"
	FieldStressLevel           = "stress_level"
	FieldBMICategory           = "bmi_category"
	FieldBloodPressure         = "blood_pressure"
	FieldHeartRate             = "heart_rate"
	FieldDailySteps            = "daily_steps"
)

// RecordFieldNames returns the fixed set of record fields, in the order the
// intake form presents them. Every field is required for classification.
func RecordFieldNames() []string {
	return []string{
		FieldGender,
		FieldAge,
		FieldOccupation,
		FieldSleepDuration,
		FieldSleepQuality,
		FieldPhysicalActivityLevel,
		FieldStressLevel,
		FieldBMICategory,
		FieldBloodPressure,
		FieldHeartRate,
		FieldDailySteps,
	}
}

// Value bounds and closed value sets for record fields. These mirror the
// limits of the original intake form widgets.
const (
	MinAge           = 20
	MaxAge           = 60
	MinSleepDuration = 0.0
	MaxSleepDuration = 24.0
	MinSleepQuality  = 1
	MaxSleepQuality  = 10
	MinActivityLevel = 1
	MaxActivityLevel = 5
	MinStressLevel   = 1
	MaxStressLevel   = 5
	MinHeartRate     = 30
	MaxHeartRate     = 200
	MinDailySteps    = 0
	MaxDailySteps    = 100000
)

var (
	KnownGenders = []string{"Male", "Female"}

	KnownBMICategories = []string{"Normal Weight", "Normal", "Overweight", "Obese"}

	KnownOccupations = []string{
		"Doctor", "Teacher", "Software Engineer", "Lawyer", "Engineer",
		"Accountant", "Nurse", "Scientist", "Manager", "Salesperson",
		"Sales Representative",
	}
)

// PatientRecord is the evolving structured record of one intake session.
// Each field stays nil until some turn of the dialogue (or a direct form
// submission) fills it.
type PatientRecord struct {
	Gender                *string  `json:"gender"`
	Age                   *int     `json:"age"`
	Occupation            *string  `json:"occupation"`
	SleepDuration         *float64 `json:"sleep_duration"`
	SleepQuality          *int     `json:"sleep_quality"`
	PhysicalActivityLevel *int     `json:"physical_activity_level"`
	StressLevel           *int     `json:"stress_level"`
	BMICategory           *string  `json:"bmi_category"`
	BloodPressure         *string  `json:"blood_pressure"`
	HeartRate             *int     `json:"heart_rate"`
	DailySteps            *int     `json:"daily_steps"`
}

// Merge folds a partial extraction into the record. Only non-nil values
// overwrite; a nil field in the extraction never clears a value that an
// earlier turn already established.
func (r *PatientRecord) Merge(extracted PatientRecord) {
	if extracted.Gender != nil {
		r.Gender = extracted.Gender
	}
	if extracted.Age != nil {
		r.Age = extracted.Age
	}
	if extracted.Occupation != nil {
		r.Occupation = extracted.Occupation
	}
	if extracted.SleepDuration != nil {
		r.SleepDuration = extracted.SleepDuration
	}
	if extracted.SleepQuality != nil {
		r.SleepQuality = extracted.SleepQuality
	}
	if extracted.PhysicalActivityLevel != nil {
		r.PhysicalActivityLevel = extracted.PhysicalActivityLevel
	}
	if extracted.StressLevel != nil {
		r.StressLevel = extracted.StressLevel
	}
	if extracted.BMICategory != nil {
		r.BMICategory = extracted.BMICategory
	}
	if extracted.BloodPressure != nil {
		r.BloodPressure = extracted.BloodPressure
	}
	if extracted.HeartRate != nil {
		r.HeartRate = extracted.HeartRate
	}
	if extracted.DailySteps != nil {
		r.DailySteps = extracted.DailySteps
	}
}

// MissingFields lists the record fields that are still nil, in form order.
func (r *PatientRecord) MissingFields() []string {
	missing := make([]string, 0)
	for _, name := range RecordFieldNames() {
		if r.fieldIsNil(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsComplete reports whether every record field has a value.
func (r *PatientRecord) IsComplete() bool {
	return len(r.MissingFields()) == 0
}

func (r *PatientRecord) fieldIsNil(name string) bool {
	switch name {
	case FieldGender:
		return r.Gender == nil
	case FieldAge:
		return r.Age == nil
	case FieldOccupation:
		return r.Occupation == nil
	case FieldSleepDuration:
		return r.SleepDuration == nil
	case FieldSleepQuality:
		return r.SleepQuality == nil
	case FieldPhysicalActivityLevel:
		return r.PhysicalActivityLevel == nil
	case FieldStressLevel:
		return r.StressLevel == nil
	case FieldBMICategory:
		return r.BMICategory == nil
	case FieldBloodPressure:
		return r.BloodPressure == nil
	case FieldHeartRate:
		return r.HeartRate == nil
	case FieldDailySteps:
		return r.DailySteps == nil
	default:
		return true
	}
}

// Sanitize drops values that fall outside the known bounds or closed value
// sets, resetting them to nil. Extractions pass through here before merging
// so a bad value from the language model cannot poison the record.
func (r *PatientRecord) Sanitize() {
	if r.Gender != nil && !containsFold(KnownGenders, *r.Gender) {
		r.Gender = nil
	}
	if r.Age != nil && (*r.Age < MinAge || *r.Age > MaxAge) {
		r.Age = nil
	}
	if r.Occupation != nil && !containsFold(KnownOccupations, *r.Occupation) {
		r.Occupation = nil
	}
	if r.SleepDuration != nil && (*r.SleepDuration < MinSleepDuration || *r.SleepDuration > MaxSleepDuration) {
		r.SleepDuration = nil
	}
	if r.SleepQuality != nil && (*r.SleepQuality < MinSleepQuality || *r.SleepQuality > MaxSleepQuality) {
		r.SleepQuality = nil
	}
	if r.PhysicalActivityLevel != nil && (*r.PhysicalActivityLevel < MinActivityLevel || *r.PhysicalActivityLevel > MaxActivityLevel) {
		r.PhysicalActivityLevel = nil
	}
	if r.StressLevel != nil && (*r.StressLevel < MinStressLevel || *r.StressLevel > MaxStressLevel) {
		r.StressLevel = nil
	}
	if r.BMICategory != nil && !containsFold(KnownBMICategories, *r.BMICategory) {
		r.BMICategory = nil
	}
	if r.BloodPressure != nil {
		if _, _, err := SplitBloodPressure(*r.BloodPressure); err != nil {
			r.BloodPressure = nil
		}
	}
	if r.HeartRate != nil && (*r.HeartRate < MinHeartRate || *r.HeartRate > MaxHeartRate) {
		r.HeartRate = nil
	}
	if r.DailySteps != nil && (*r.DailySteps < MinDailySteps || *r.DailySteps > MaxDailySteps) {
		r.DailySteps = nil
	}
}

// SplitBloodPressure decomposes a combined "120/80" reading into its
// systolic and diastolic components. The classifier expects the two numbers
// separately, and the decomposition is the caller's job, not the model's.
func SplitBloodPressure(reading string) (systolic, diastolic int, err error) {
	parts := strings.Split(strings.TrimSpace(reading), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: blood pressure %q (expected SYS/DIA)", ErrInvalidFormat, reading)
	}

	systolic, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: systolic component %q", ErrInvalidFormat, parts[0])
	}

	diastolic, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: diastolic component %q", ErrInvalidFormat, parts[1])
	}

	if systolic <= 0 || diastolic <= 0 || diastolic >= systolic {
		return 0, 0, fmt.Errorf("%w: blood pressure %q", ErrInvalidFormat, reading)
	}

	return systolic, diastolic, nil
}

func containsFold(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}
