package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cloudops/cloud-console-tool/internal/aws"
	"github.com/cloudops/cloud-console-tool/internal/credentials"
	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/logger"
	"github.com/cloudops/cloud-console-tool/internal/models"
)

// RegionAll is the sentinel callers use for "every region" in browse views.
// Region-scoped operations reject it; it never silently maps to a default.
const RegionAll = "all"

// Handle is an authenticated client bundle bound to exactly one
// (account, region) pair. Handles are owned by the Manager and reused
// until invalidated.
type Handle struct {
	AccountID string
	Region    string
	Client    *aws.Client
}

// Factory builds a client bundle from resolved credential material.
// Injectable so tests can substitute a fake that does no network I/O.
type Factory func(ctx context.Context, creds models.Credentials, region string) (*aws.Client, error)

type handleKey struct {
	accountID string
	region    string
}

// Manager resolves (account, region) pairs to session handles and owns
// the cache of live handles for one interactive session.
type Manager struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	store    credentials.Store
	factory  Factory
	handles  map[handleKey]*Handle
}

// NewManager creates a session manager over the configured accounts
func NewManager(accounts []models.Account, store credentials.Store, factory Factory) *Manager {
	byID := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	if factory == nil {
		factory = aws.NewClient
	}
	return &Manager{
		accounts: byID,
		store:    store,
		factory:  factory,
		handles:  make(map[handleKey]*Handle),
	}
}

// Resolve returns the session handle for the given account and region,
// building and caching one on first use
func (m *Manager) Resolve(ctx context.Context, accountID, region string) (*Handle, error) {
	if region == "" || region == RegionAll {
		return nil, errors.NewInvalidRegionError(region)
	}

	account, ok := m.accounts[accountID]
	if !ok {
		return nil, errors.NewNotFoundError("account", accountID)
	}
	if !account.HasRegion(region) {
		return nil, errors.NewInvalidRegionError(region).
			WithContext("account_id", accountID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := handleKey{accountID: accountID, region: region}
	if handle, ok := m.handles[key]; ok {
		logger.GetLogger().Debug("Session cache hit",
			zap.String("account", accountID), zap.String("region", region))
		return handle, nil
	}

	creds, err := m.store.Get(accountID)
	if err != nil {
		return nil, err
	}

	client, err := m.factory(ctx, creds, region)
	if err != nil {
		return nil, errors.NewCredentialError(accountID, err).
			WithContext("region", region)
	}

	handle := &Handle{AccountID: accountID, Region: region, Client: client}
	m.handles[key] = handle
	logger.GetLogger().Debug("Session established",
		zap.String("account", accountID), zap.String("region", region))
	return handle, nil
}

// Invalidate drops cached handles for the account. With no regions given
// every region's handle is dropped; otherwise only the named ones. Used
// after credential rotation or an explicit reconnect.
func (m *Manager) Invalidate(accountID string, regions ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(regions) == 0 {
		for key := range m.handles {
			if key.accountID == accountID {
				delete(m.handles, key)
			}
		}
		return
	}
	for _, region := range regions {
		delete(m.handles, handleKey{accountID: accountID, region: region})
	}
}

// ActiveCount returns the number of live session handles
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Accounts returns the configured accounts in no particular order
func (m *Manager) Accounts() []models.Account {
	accounts := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	return accounts
}
