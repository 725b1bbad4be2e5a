package commands

import (
	"context"
	"sync"

	"github.com/doeshing/unlp/internal/app"
	configinfra "github.com/doeshing/unlp/internal/infrastructure/config"
)

// Env carries the global flags and builds the container once, after cobra has
// parsed them.
type Env struct {
	Options app.Options

	once      sync.Once
	container *app.Container
	err       error
}

// Container returns the shared container, building it on first use.
func (e *Env) Container(ctx context.Context) (*app.Container, error) {
	e.once.Do(func() {
		e.container, e.err = app.BuildContainer(ctx, e.Options)
	})
	return e.container, e.err
}

// Close releases the container if one was built.
func (e *Env) Close(ctx context.Context) error {
	if e.container == nil {
		return nil
	}
	return e.container.Close(ctx)
}

// fileLoader reads the configuration without building the container, so config
// subcommands keep working when the file is invalid.
func (e *Env) fileLoader() *configinfra.FileLoader {
	return configinfra.NewFileLoader(e.Options.ConfigPath)
}
