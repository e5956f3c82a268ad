package validator

// Validator performs request-level validation for the intake API.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}
