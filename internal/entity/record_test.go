package entity

import (
	"errors"
	"testing"
)

func strPtr(s string) *string   { return &s }
func intPtr(v int) *int         { return &v }
func f64Ptr(v float64) *float64 { return &v }

func completeRecord() PatientRecord {
	return PatientRecord{
		Gender:                strPtr("Male"),
		Age:                   intPtr(43),
		Occupation:            strPtr("Teacher"),
		SleepDuration:         f64Ptr(6.5),
		SleepQuality:          intPtr(7),
		PhysicalActivityLevel: intPtr(3),
		StressLevel:           intPtr(4),
		BMICategory:           strPtr("Overweight"),
		BloodPressure:         strPtr("130/85"),
		HeartRate:             intPtr(72),
		DailySteps:            intPtr(6000),
	}
}

func TestMergeOverwritesOnlyNonNil(t *testing.T) {
	record := PatientRecord{
		Gender: strPtr("Male"),
		Age:    intPtr(43),
	}

	record.Merge(PatientRecord{
		Age:        intPtr(44),
		Occupation: strPtr("Doctor"),
	})

	if record.Gender == nil || *record.Gender != "Male" {
		t.Errorf("gender changed unexpectedly: %v", record.Gender)
	}
	if record.Age == nil || *record.Age != 44 {
		t.Errorf("expected age re-asserted to 44, got %v", record.Age)
	}
	if record.Occupation == nil || *record.Occupation != "Doctor" {
		t.Errorf("expected occupation 'Doctor', got %v", record.Occupation)
	}
}

func TestMergeNilNeverClears(t *testing.T) {
	record := completeRecord()

	record.Merge(PatientRecord{})

	if !record.IsComplete() {
		t.Errorf("merging an empty extraction cleared fields: missing %v", record.MissingFields())
	}
}

func TestMissingFieldsOrder(t *testing.T) {
	record := PatientRecord{
		Age:        intPtr(30),
		DailySteps: intPtr(5000),
	}

	missing := record.MissingFields()
	want := []string{
		FieldGender, FieldOccupation, FieldSleepDuration, FieldSleepQuality,
		FieldPhysicalActivityLevel, FieldStressLevel, FieldBMICategory,
		FieldBloodPressure, FieldHeartRate,
	}

	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %d: %v", len(want), len(missing), missing)
	}
	for i, name := range want {
		if missing[i] != name {
			t.Errorf("missing[%d]: expected %q, got %q", i, name, missing[i])
		}
	}
}

func TestIsComplete(t *testing.T) {
	record := completeRecord()
	if !record.IsComplete() {
		t.Fatalf("complete record reported missing fields: %v", record.MissingFields())
	}

	record.HeartRate = nil
	if record.IsComplete() {
		t.Error("record with nil heart rate reported complete")
	}
}

func TestSanitizeDropsOutOfRangeValues(t *testing.T) {
	record := PatientRecord{
		Gender:        strPtr("unsure"),
		Age:           intPtr(150),
		Occupation:    strPtr("Astronaut"),
		SleepDuration: f64Ptr(25.0),
		SleepQuality:  intPtr(7),
		StressLevel:   intPtr(0),
		BMICategory:   strPtr("Skinny"),
		BloodPressure: strPtr("eighty over sixty"),
		HeartRate:     intPtr(20),
		DailySteps:    intPtr(200000),
	}

	record.Sanitize()

	if record.Gender != nil {
		t.Errorf("unknown gender survived sanitize: %v", *record.Gender)
	}
	if record.Age != nil {
		t.Errorf("age 150 survived sanitize")
	}
	if record.Occupation != nil {
		t.Errorf("unknown occupation survived sanitize: %v", *record.Occupation)
	}
	if record.SleepDuration != nil {
		t.Errorf("sleep duration 25h survived sanitize")
	}
	if record.SleepQuality == nil || *record.SleepQuality != 7 {
		t.Errorf("valid sleep quality dropped: %v", record.SleepQuality)
	}
	if record.StressLevel != nil {
		t.Errorf("stress level 0 survived sanitize")
	}
	if record.BMICategory != nil {
		t.Errorf("unknown BMI category survived sanitize: %v", *record.BMICategory)
	}
	if record.BloodPressure != nil {
		t.Errorf("unparsable blood pressure survived sanitize: %v", *record.BloodPressure)
	}
	if record.HeartRate != nil {
		t.Errorf("heart rate 20 survived sanitize")
	}
	if record.DailySteps != nil {
		t.Errorf("daily steps 200000 survived sanitize")
	}
}

func TestSanitizeKeepsCaseInsensitiveMatches(t *testing.T) {
	record := PatientRecord{
		Gender:      strPtr("female"),
		BMICategory: strPtr("normal weight"),
		Occupation:  strPtr("software engineer"),
	}

	record.Sanitize()

	if record.Gender == nil {
		t.Error("lowercase gender dropped")
	}
	if record.BMICategory == nil {
		t.Error("lowercase BMI category dropped")
	}
	if record.Occupation == nil {
		t.Error("lowercase occupation dropped")
	}
}

func TestSplitBloodPressure(t *testing.T) {
	tests := []struct {
		name      string
		reading   string
		systolic  int
		diastolic int
		wantErr   bool
	}{
		{name: "typical", reading: "120/80", systolic: 120, diastolic: 80},
		{name: "spaces", reading: " 135 / 90 ", systolic: 135, diastolic: 90},
		{name: "missing separator", reading: "12080", wantErr: true},
		{name: "too many parts", reading: "120/80/60", wantErr: true},
		{name: "non numeric", reading: "high/low", wantErr: true},
		{name: "diastolic above systolic", reading: "80/120", wantErr: true},
		{name: "zero", reading: "0/0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, dia, err := SplitBloodPressure(tt.reading)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %d/%d", tt.reading, sys, dia)
				}
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("expected ErrInvalidFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sys != tt.systolic || dia != tt.diastolic {
				t.Errorf("expected %d/%d, got %d/%d", tt.systolic, tt.diastolic, sys, dia)
			}
		})
	}
}
