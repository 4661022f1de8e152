package console

import (
	"github.com/cloudops/cloud-console-tool/internal/errors"
)

// Module identifies one console view. Navigation dispatches on this tag
// through the lookup table, so an unknown module name fails at parse time
// instead of falling through a string switch.
type Module int

const (
	ModuleDashboard Module = iota
	ModuleInventory
	ModuleStacks
	ModuleBuckets
	ModuleDatabases
	ModuleDeployments
	ModuleApprovals
	ModuleHistory
	ModuleAccounts
	ModuleCache
)

var moduleNames = map[Module]string{
	ModuleDashboard:   "dashboard",
	ModuleInventory:   "inventory",
	ModuleStacks:      "stacks",
	ModuleBuckets:     "buckets",
	ModuleDatabases:   "databases",
	ModuleDeployments: "deployments",
	ModuleApprovals:   "approvals",
	ModuleHistory:     "history",
	ModuleAccounts:    "accounts",
	ModuleCache:       "cache",
}

var modulesByName = func() map[string]Module {
	byName := make(map[string]Module, len(moduleNames))
	for module, name := range moduleNames {
		byName[name] = module
	}
	return byName
}()

func (m Module) String() string {
	if name, ok := moduleNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseModule resolves a module name to its tag
func ParseModule(name string) (Module, error) {
	if module, ok := modulesByName[name]; ok {
		return module, nil
	}
	return 0, errors.NewNotFoundError("module", name)
}

// Modules returns every module in navigation order
func Modules() []Module {
	return []Module{
		ModuleDashboard,
		ModuleInventory,
		ModuleStacks,
		ModuleBuckets,
		ModuleDatabases,
		ModuleDeployments,
		ModuleApprovals,
		ModuleHistory,
		ModuleAccounts,
		ModuleCache,
	}
}
