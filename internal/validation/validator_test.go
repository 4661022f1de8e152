package validation

import (
	"testing"

	"github.com/cloudops/cloud-console-tool/internal/errors"
)

func TestValidator_ValidateAccountID(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name      string
		accountID string
		wantErr   bool
	}{
		{
			name:      "valid account ID",
			accountID: "123456789012",
			wantErr:   false,
		},
		{
			name:      "empty account ID",
			accountID: "",
			wantErr:   true,
		},
		{
			name:      "too short",
			accountID: "12345",
			wantErr:   true,
		},
		{
			name:      "contains letters",
			accountID: "12345678901a",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateAccountID(tt.accountID)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAccountID() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateRegion(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		region  string
		wantErr bool
		errType errors.ErrorType
	}{
		{
			name:    "valid region",
			region:  "us-east-1",
			wantErr: false,
		},
		{
			name:    "all wildcard rejected",
			region:  "all",
			wantErr: true,
			errType: errors.ErrorTypeInvalidRegion,
		},
		{
			name:    "empty region rejected",
			region:  "",
			wantErr: true,
			errType: errors.ErrorTypeInvalidRegion,
		},
		{
			name:    "malformed region",
			region:  "useast",
			wantErr: true,
			errType: errors.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateRegion(tt.region)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegion() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && !errors.IsType(err, tt.errType) {
				t.Errorf("ValidateRegion() error type = %v, want %v", err, tt.errType)
			}
		})
	}
}

func TestValidator_ValidateEnvironment(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name        string
		environment string
		wantErr     bool
	}{
		{name: "dev", environment: "dev", wantErr: false},
		{name: "staging", environment: "staging", wantErr: false},
		{name: "production", environment: "production", wantErr: false},
		{name: "empty", environment: "", wantErr: true},
		{name: "unknown", environment: "qa", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateEnvironment(tt.environment)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEnvironment() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateRejectionReason(t *testing.T) {
	validator := NewValidator()

	if err := validator.ValidateRejectionReason("needs review"); err != nil {
		t.Errorf("ValidateRejectionReason() error = %v, want nil", err)
	}

	for _, reason := range []string{"", "   ", "\t"} {
		err := validator.ValidateRejectionReason(reason)
		if !errors.IsType(err, errors.ErrorTypeInvalidParams) {
			t.Errorf("ValidateRejectionReason(%q) error = %v, want invalid parameters", reason, err)
		}
	}
}

func TestValidator_ParseTriggerParameters(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{
			name: "valid object",
			raw:  `{"InstanceType":"t3.large","Replicas":"2"}`,
			want: 2,
		},
		{
			name: "empty input is no parameters",
			raw:  "",
			want: 0,
		},
		{
			name:    "not an object",
			raw:     `["a","b"]`,
			wantErr: true,
		},
		{
			name:    "non-string values",
			raw:     `{"Replicas":2}`,
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			raw:     `{"Replicas":`,
			wantErr: true,
		},
		{
			name:    "blank key",
			raw:     `{" ":"v"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parameters, err := validator.ParseTriggerParameters(tt.raw)
			if tt.wantErr {
				if !errors.IsType(err, errors.ErrorTypeInvalidParams) {
					t.Errorf("ParseTriggerParameters() error = %v, want invalid parameters", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTriggerParameters() error = %v", err)
			}
			if len(parameters) != tt.want {
				t.Errorf("ParseTriggerParameters() = %d parameters, want %d", len(parameters), tt.want)
			}
		})
	}
}
