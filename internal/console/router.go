package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/logger"
)

// RenderFunc renders one console view
type RenderFunc func(ctx context.Context) error

// Router dispatches navigation to the render function registered for a
// module tag
type Router struct {
	routes map[Module]RenderFunc
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{routes: make(map[Module]RenderFunc)}
}

// Register binds a render function to a module. Re-registering replaces
// the previous binding.
func (r *Router) Register(module Module, fn RenderFunc) {
	r.routes[module] = fn
}

// Render runs the render function for the module
func (r *Router) Render(ctx context.Context, module Module) error {
	fn, ok := r.routes[module]
	if !ok {
		return errors.NewNotFoundError("module", module.String())
	}

	logger.GetLogger().Debug("Rendering module", zap.String("module", module.String()))
	return fn(ctx)
}

// RenderByName parses the module name and renders it
func (r *Router) RenderByName(ctx context.Context, name string) error {
	module, err := ParseModule(name)
	if err != nil {
		return err
	}
	return r.Render(ctx, module)
}

// Registered returns the modules with a bound render function, in
// navigation order
func (r *Router) Registered() []Module {
	var registered []Module
	for _, module := range Modules() {
		if _, ok := r.routes[module]; ok {
			registered = append(registered, module)
		}
	}
	return registered
}
