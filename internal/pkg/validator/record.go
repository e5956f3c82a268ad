package validator

import (
	"fmt"
	"strings"

	"github.com/somnihealth/intake-backend/internal/entity"
)

// ValidateCompleteRecord checks that the record is fully populated and that
// every value sits inside the bounds of the original intake form. Used both
// for direct form submissions and as the last gate before classification.
func (v *Validator) ValidateCompleteRecord(r *entity.PatientRecord) error {
	if missing := r.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", entity.ErrMissingField, strings.Join(missing, ", "))
	}

	if !oneOfFold(entity.KnownGenders, *r.Gender) {
		return fmt.Errorf("%w: gender %q", entity.ErrInvalidParameter, *r.Gender)
	}

	if *r.Age < entity.MinAge || *r.Age > entity.MaxAge {
		return fmt.Errorf("%w: age %d (expected %d-%d)", entity.ErrInvalidParameter, *r.Age, entity.MinAge, entity.MaxAge)
	}

	if !oneOfFold(entity.KnownOccupations, *r.Occupation) {
		return fmt.Errorf("%w: occupation %q", entity.ErrInvalidParameter, *r.Occupation)
	}

	if *r.SleepDuration < entity.MinSleepDuration || *r.SleepDuration > entity.MaxSleepDuration {
		return fmt.Errorf("%w: sleep duration %.1f (expected %.0f-%.0f hours)",
			entity.ErrInvalidParameter, *r.SleepDuration, entity.MinSleepDuration, entity.MaxSleepDuration)
	}

	if *r.SleepQuality < entity.MinSleepQuality || *r.SleepQuality > entity.MaxSleepQuality {
		return fmt.Errorf("%w: sleep quality %d (expected %d-%d)",
			entity.ErrInvalidParameter, *r.SleepQuality, entity.MinSleepQuality, entity.MaxSleepQuality)
	}

	if *r.PhysicalActivityLevel < entity.MinActivityLevel || *r.PhysicalActivityLevel > entity.MaxActivityLevel {
		return fmt.Errorf("%w: physical activity level %d (expected %d-%d)",
			entity.ErrInvalidParameter, *r.PhysicalActivityLevel, entity.MinActivityLevel, entity.MaxActivityLevel)
	}

	if *r.StressLevel < entity.MinStressLevel || *r.StressLevel > entity.MaxStressLevel {
		return fmt.Errorf("%w: stress level %d (expected %d-%d)",
			entity.ErrInvalidParameter, *r.StressLevel, entity.MinStressLevel, entity.MaxStressLevel)
	}

	if !oneOfFold(entity.KnownBMICategories, *r.BMICategory) {
		return fmt.Errorf("%w: BMI category %q", entity.ErrInvalidParameter, *r.BMICategory)
	}

	if _, _, err := entity.SplitBloodPressure(*r.BloodPressure); err != nil {
		return err
	}

	if *r.HeartRate < entity.MinHeartRate || *r.HeartRate > entity.MaxHeartRate {
		return fmt.Errorf("%w: heart rate %d (expected %d-%d bpm)",
			entity.ErrInvalidParameter, *r.HeartRate, entity.MinHeartRate, entity.MaxHeartRate)
	}

	if *r.DailySteps < entity.MinDailySteps || *r.DailySteps > entity.MaxDailySteps {
		return fmt.Errorf("%w: daily steps %d (expected %d-%d)",
			entity.ErrInvalidParameter, *r.DailySteps, entity.MinDailySteps, entity.MaxDailySteps)
	}

	return nil
}

func oneOfFold(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}
