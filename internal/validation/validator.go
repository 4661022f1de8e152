package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudops/cloud-console-tool/internal/errors"
)

// Validator provides validation functions for various inputs
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAccountID validates AWS account ID format
func (v *Validator) ValidateAccountID(accountID string) error {
	if accountID == "" {
		return errors.NewValidationError("account ID cannot be empty", nil)
	}

	if len(accountID) != 12 {
		return errors.NewValidationError("account ID must be 12 digits", nil)
	}

	for _, char := range accountID {
		if char < '0' || char > '9' {
			return errors.NewValidationError("account ID must contain only digits", nil)
		}
	}

	return nil
}

// ValidateRegion validates that a concrete region was supplied. The "all"
// wildcard is only meaningful for browse views and is rejected here.
func (v *Validator) ValidateRegion(region string) error {
	if region == "" || region == "all" {
		return errors.NewInvalidRegionError(region)
	}

	parts := strings.Split(region, "-")
	if len(parts) < 3 {
		return errors.NewValidationError(
			fmt.Sprintf("invalid region '%s'. Expected format: us-east-1", region),
			nil,
		)
	}

	return nil
}

// ValidateEnvironment validates a deployment environment name
func (v *Validator) ValidateEnvironment(environment string) error {
	if environment == "" {
		return errors.NewValidationError("environment is required", nil)
	}

	validEnvironments := []string{"dev", "staging", "production"}
	for _, env := range validEnvironments {
		if environment == env {
			return nil
		}
	}

	return errors.NewValidationError(
		fmt.Sprintf("invalid environment '%s'. Valid options: %v", environment, validEnvironments),
		nil,
	)
}

// ValidateRejectionReason validates that a rejection carries a reason
func (v *Validator) ValidateRejectionReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return errors.NewInvalidParametersError("rejection reason must not be empty", nil)
	}
	return nil
}

// ValidateRequiredString validates that a string is not empty
func (v *Validator) ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(fmt.Sprintf("%s is required", fieldName), nil)
	}
	return nil
}

// ValidateStringInSlice validates that a string is in a given slice
func (v *Validator) ValidateStringInSlice(value string, validValues []string, fieldName string) error {
	if value == "" {
		return nil // Allow empty values for optional fields
	}

	for _, validValue := range validValues {
		if value == validValue {
			return nil
		}
	}

	return errors.NewValidationError(
		fmt.Sprintf("invalid %s '%s'. Valid options: %v", fieldName, value, validValues),
		nil,
	)
}

// ParseTriggerParameters parses a JSON object of pipeline parameters.
// Anything other than a flat string-to-string object is rejected before
// any pipeline is started.
func (v *Validator) ParseTriggerParameters(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var parameters map[string]string
	if err := json.Unmarshal([]byte(raw), &parameters); err != nil {
		return nil, errors.NewInvalidParametersError(
			"parameters must be a JSON object of string values", err)
	}

	for key := range parameters {
		if strings.TrimSpace(key) == "" {
			return nil, errors.NewInvalidParametersError("parameter keys must not be empty", nil)
		}
	}

	return parameters, nil
}
