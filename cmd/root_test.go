package cmd

import (
	"testing"

	"github.com/cloudops/cloud-console-tool/internal/config"
	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/models"
)

func TestAccountIDForFlag(t *testing.T) {
	cfg := &config.Config{
		Accounts: []models.Account{
			{ID: "111111111111", Name: "prod-main"},
		},
	}

	tests := []struct {
		name    string
		flag    string
		want    string
		wantErr bool
	}{
		{name: "configured id", flag: "111111111111", want: "111111111111"},
		{name: "configured name", flag: "prod-main", want: "111111111111"},
		{name: "unconfigured but well-formed id", flag: "222222222222", want: "222222222222"},
		{name: "unknown name", flag: "sandbox", wantErr: true},
		{name: "too short", flag: "12345", wantErr: true},
		{name: "non-numeric", flag: "11111111111x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accountIDForFlag(cfg, tt.flag)
			if tt.wantErr {
				if !errors.IsType(err, errors.ErrorTypeValidation) {
					t.Errorf("accountIDForFlag(%q) error = %v, want validation error", tt.flag, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("accountIDForFlag(%q) error = %v", tt.flag, err)
			}
			if got != tt.want {
				t.Errorf("accountIDForFlag(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}
