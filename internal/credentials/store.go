package credentials

import (
	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/models"
)

// Store resolves credential material for configured accounts.
// It is a pure lookup over configuration loaded at startup; rotation is
// done by editing the configuration and invalidating cached sessions.
type Store interface {
	Get(accountID string) (models.Credentials, error)
}

// ConfigStore is a Store backed by the credentials section of the
// application configuration, keyed by credential reference.
type ConfigStore struct {
	refs     map[string]models.Credentials
	accounts map[string]models.Account
}

// NewConfigStore builds a store from configured accounts and credentials
func NewConfigStore(accounts []models.Account, refs map[string]models.Credentials) *ConfigStore {
	byID := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	if refs == nil {
		refs = make(map[string]models.Credentials)
	}
	return &ConfigStore{refs: refs, accounts: byID}
}

// Get returns the credential material for the given account id
func (s *ConfigStore) Get(accountID string) (models.Credentials, error) {
	account, ok := s.accounts[accountID]
	if !ok {
		return models.Credentials{}, errors.NewNotFoundError("account", accountID)
	}

	creds, ok := s.refs[account.CredentialRef]
	if !ok || creds.IsZero() {
		return models.Credentials{}, errors.NewCredentialError(accountID, nil)
	}

	return creds, nil
}
