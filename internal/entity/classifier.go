package entity

// Disorder labels the classifier service may return. Anything outside this
// set is surfaced to the user verbatim as an error-string label.
const (
	DisorderLabelHealthy    = "Healthy"
	DisorderLabelInsomnia   = "Insomnia"
	DisorderLabelSleepApnea = "Sleep Apnea"
)

func KnownDisorderLabels() []string {
	return []string{DisorderLabelHealthy, DisorderLabelInsomnia, DisorderLabelSleepApnea}
}

// ClassifyRequest is the flattened, fully-populated feature row the
// classifier service expects. Blood pressure arrives already decomposed.
type ClassifyRequest struct {
	Gender                string  `json:"gender"`
	Age                   int     `json:"age"`
	Occupation            string  `json:"occupation"`
	SleepDuration         float64 `json:"sleep_duration"`
	SleepQuality          int     `json:"sleep_quality"`
	PhysicalActivityLevel int     `json:"physical_activity_level"`
	StressLevel           int     `json:"stress_level"`
	BMICategory           string  `json:"bmi_category"`
	SystolicBP            int     `json:"systolic_bp"`
	DiastolicBP           int     `json:"diastolic_bp"`
	HeartRate             int     `json:"heart_rate"`
	DailySteps            int     `json:"daily_steps"`
}

type ClassifyResponse struct {
	Label string `json:"label"`
}
