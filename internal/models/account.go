package models

// Account represents one logical cloud account known to the console.
// Accounts are loaded from configuration at startup and are immutable
// afterwards.
type Account struct {
	ID            string   `json:"id" yaml:"id" mapstructure:"id"`
	Name          string   `json:"name" yaml:"name" mapstructure:"name"`
	CredentialRef string   `json:"credential_ref" yaml:"credential_ref" mapstructure:"credential_ref"`
	Regions       []string `json:"regions" yaml:"regions" mapstructure:"regions"`
}

// HasRegion reports whether the account has the given region enabled.
// An account with no explicit region list is treated as all-regions.
func (a Account) HasRegion(region string) bool {
	if len(a.Regions) == 0 {
		return true
	}
	for _, r := range a.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// Credentials is the material the credential store resolves for an account.
// Either the static key pair or the role ARN is set, not both.
type Credentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key" mapstructure:"secret_access_key"`
	SessionToken    string `json:"session_token,omitempty" yaml:"session_token,omitempty" mapstructure:"session_token"`
	RoleARN         string `json:"role_arn,omitempty" yaml:"role_arn,omitempty" mapstructure:"role_arn"`
	ExternalID      string `json:"external_id,omitempty" yaml:"external_id,omitempty" mapstructure:"external_id"`
}

// IsRole reports whether the credentials are role-based
func (c Credentials) IsRole() bool {
	return c.RoleARN != ""
}

// IsZero reports whether no credential material is present
func (c Credentials) IsZero() bool {
	return c.AccessKeyID == "" && c.RoleARN == ""
}
