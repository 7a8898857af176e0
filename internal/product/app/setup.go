// Package app wires the inventory components together.
package app

import (
	"io"
	"log/slog"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/product/menu"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/abgdnv/inventory/internal/product/store"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
}

// SetupDependencies opens the data file and builds the service on top of it.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	productStore, err := store.NewFileStore(cfg.Store.Path, logger)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		ProductService: service.NewService(productStore, logger),
		Logger:         logger,
	}, nil
}

// SetupMenu creates the interactive menu bound to the given input and output.
func SetupMenu(deps *Dependencies, in io.Reader, out io.Writer) *menu.Menu {
	return menu.NewMenu(deps.ProductService, in, out, deps.Logger)
}
