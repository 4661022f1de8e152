package console

import (
	"context"

	"github.com/cloudops/cloud-console-tool/internal/config"
	"github.com/cloudops/cloud-console-tool/internal/credentials"
	"github.com/cloudops/cloud-console-tool/internal/deploy"
	"github.com/cloudops/cloud-console-tool/internal/inventory"
	"github.com/cloudops/cloud-console-tool/internal/models"
	"github.com/cloudops/cloud-console-tool/internal/resultcache"
	"github.com/cloudops/cloud-console-tool/internal/session"
	"github.com/cloudops/cloud-console-tool/internal/stacks"
)

// Console is one operator session over the configured accounts. It owns
// the session manager, the result cache and the deployment registry;
// nothing in here is shared between Console instances.
type Console struct {
	cfg       *config.Config
	sessions  *session.Manager
	cache     *resultcache.Cache
	registry  *deploy.Registry
	inventory *inventory.Service
	stacks    *stacks.Manager
}

// Options overrides collaborators during construction. Zero fields take
// the production default.
type Options struct {
	Store    credentials.Store
	Factory  session.Factory
	Provider deploy.Provider
}

// New creates a console session from configuration
func New(cfg *config.Config, opts Options) *Console {
	store := opts.Store
	if store == nil {
		store = credentials.NewConfigStore(cfg.Accounts, cfg.Credentials)
	}

	provider := opts.Provider
	if provider == nil {
		provider = deploy.NewDemoProvider()
	}

	cache := resultcache.New()

	return &Console{
		cfg:      cfg,
		sessions: session.NewManager(cfg.Accounts, store, opts.Factory),
		cache:    cache,
		registry: deploy.NewRegistry(provider, cfg.Approval, deploy.NewStore(cfg.Cache.Directory)),
		inventory: inventory.NewService(cache, inventory.TTLConfig{
			Inventory: cfg.Cache.InventoryTTL,
			Databases: cfg.Cache.DatabasesTTL,
			Buckets:   cfg.Cache.BucketsTTL,
		}),
		stacks: stacks.NewManager(cache, cfg.Cache.StacksTTL),
	}
}

// Resolve returns the session handle for the account and region
func (c *Console) Resolve(ctx context.Context, accountID, region string) (*session.Handle, error) {
	return c.sessions.Resolve(ctx, accountID, region)
}

// InvalidateSessions drops cached session handles for the account
func (c *Console) InvalidateSessions(accountID string, regions ...string) {
	c.sessions.Invalidate(accountID, regions...)
}

// Accounts returns the configured accounts
func (c *Console) Accounts() []models.Account {
	return c.sessions.Accounts()
}

// Deployments returns the deployment registry
func (c *Console) Deployments() *deploy.Registry {
	return c.registry
}

// Inventory returns the inventory service
func (c *Console) Inventory() *inventory.Service {
	return c.inventory
}

// Stacks returns the stack manager
func (c *Console) Stacks() *stacks.Manager {
	return c.stacks
}

// ClearCache drops every cached read result for this session
func (c *Console) ClearCache() {
	c.cache.Invalidate()
}

// CacheLen returns the number of cached read results
func (c *Console) CacheLen() int {
	return c.cache.Len()
}

// ActiveSessions returns the number of live session handles
func (c *Console) ActiveSessions() int {
	return c.sessions.ActiveCount()
}

// Config returns the loaded configuration
func (c *Console) Config() *config.Config {
	return c.cfg
}
