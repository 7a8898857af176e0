// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/go-playground/validator/v10"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(id int) (*ProductDto, error)

	// FindAll returns all products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll() []ProductDto

	// FindByName returns products whose name contains query, ignoring case.
	FindByName(query string) []ProductDto

	// Create adds a new product to the inventory.
	// Returns ErrDuplicateProduct if the ID is taken and ErrInvalidValue if validation fails.
	Create(ctx context.Context, product ProductDto) (*ProductDto, error)

	// Update changes the fields present in patch.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int, patch PatchDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int) error

	// ChangeFile switches the data file and writes the current inventory to it.
	ChangeFile(ctx context.Context, path string) error

	// CurrentFile returns the data file in use.
	CurrentFile() string

	// Summary aggregates the inventory.
	Summary() SummaryDto
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger.With("component", "service"),
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       int
	Name     string `validate:"required,max=100"`
	Quantity int    `validate:"min=0"`
	Price    int64  `validate:"min=0"` // Price in cents
}

// PatchDto carries the fields to change. Nil members are left as they are.
type PatchDto struct {
	Name     *string `validate:"omitnil,min=1,max=100"`
	Quantity *int    `validate:"omitnil,min=0"`
	Price    *int64  `validate:"omitnil,min=0"` // Price in cents
}

// SummaryDto aggregates the whole inventory.
type SummaryDto struct {
	Products int
	Units    int
	Value    int64 // Sum of quantity * price, in cents
	// Overflow is set when Units or Value exceeded their range and were capped.
	Overflow bool
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(id int) (*ProductDto, error) {
	product, ok := s.repository.Get(id)
	if !ok {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, producterrors.ErrProductNotFound)
	}

	return toDto(product), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
func (s *Service) FindAll() []ProductDto {
	products := s.repository.List()
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(item)
	}

	return productDTOs
}

// FindByName performs a case-insensitive substring search on product names.
// An empty query matches everything.
func (s *Service) FindByName(query string) []ProductDto {
	query = strings.ToLower(strings.TrimSpace(query))
	productDTOs := make([]ProductDto, 0)

	for _, item := range s.repository.List() {
		if strings.Contains(strings.ToLower(item.Name), query) {
			productDTOs = append(productDTOs, *toDto(item))
		}
	}

	return productDTOs
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, product ProductDto) (*ProductDto, error) {
	product.Name = strings.TrimSpace(product.Name)
	if err := s.validate.Struct(product); err != nil {
		return nil, validationError(err)
	}

	p := toProduct(product)
	if err := s.repository.Add(p); err != nil {
		return nil, fmt.Errorf("failed to create product with ID %d: %w", product.ID, err)
	}
	s.logger.InfoContext(ctx, "Product created", "id", p.ID, "name", p.Name)

	return toDto(p), nil
}

// Update applies patch to the product with the given ID.
// Nothing is changed if any value in the patch is invalid.
func (s *Service) Update(ctx context.Context, id int, patch PatchDto) (*ProductDto, error) {
	if _, ok := s.repository.Get(id); !ok {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, producterrors.ErrProductNotFound)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}

	updated, err := s.repository.Update(id, store.ProductPatch{
		Name:     patch.Name,
		Quantity: patch.Quantity,
		Price:    patch.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product updated", "id", id)

	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int) error {
	if err := s.repository.Delete(id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product deleted", "id", id)
	return nil
}

// ChangeFile points the repository at path and writes the current inventory there.
// Existing records in that file are replaced, not merged.
func (s *Service) ChangeFile(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if err := s.repository.SetPath(path); err != nil {
		return fmt.Errorf("failed to change data file to %q: %w", path, err)
	}
	s.logger.InfoContext(ctx, "Data file changed", "path", path)
	return nil
}

// CurrentFile returns the data file in use.
func (s *Service) CurrentFile() string {
	return s.repository.Path()
}

// Summary counts products and units and totals the stock value.
func (s *Service) Summary() SummaryDto {
	var sum SummaryDto
	for _, p := range s.repository.List() {
		sum.Products++
		if p.Quantity > math.MaxInt-sum.Units {
			sum.Units = math.MaxInt
			sum.Overflow = true
		} else {
			sum.Units += p.Quantity
		}
		if p.Quantity == 0 || p.Price == 0 {
			continue
		}
		q := int64(p.Quantity)
		if p.Price > math.MaxInt64/q || q*p.Price > math.MaxInt64-sum.Value {
			sum.Value = math.MaxInt64
			sum.Overflow = true
			continue
		}
		sum.Value += q * p.Price
	}
	if sum.Overflow {
		s.logger.Warn("Inventory totals overflowed and were capped", "units", sum.Units, "value", sum.Value)
	}
	return sum
}

// validationError turns validator output into ErrInvalidValue with a readable message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", producterrors.ErrInvalidValue, err)
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", producterrors.ErrInvalidValue, field)
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", producterrors.ErrInvalidValue, field, fe.Param())
	case "min":
		if field == "name" {
			return fmt.Errorf("%w: %s must not be empty", producterrors.ErrInvalidValue, field)
		}
		return fmt.Errorf("%w: %s must not be negative", producterrors.ErrInvalidValue, field)
	}
	return fmt.Errorf("%w: %s failed %s validation", producterrors.ErrInvalidValue, field, fe.Tag())
}

// toDto converts a store.Product to a ProductDto.
func toDto(product store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID,
		Name:     product.Name,
		Quantity: product.Quantity,
		Price:    product.Price,
	}
}

func toProduct(dto ProductDto) store.Product {
	return store.Product{
		ID:       dto.ID,
		Name:     dto.Name,
		Quantity: dto.Quantity,
		Price:    dto.Price,
	}
}
