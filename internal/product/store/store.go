// Package store provides the file-backed product record store.
package store

// DefaultPath is the data file used when no path is configured.
const DefaultPath = "inventory.csv"

// Product is one inventory record.
type Product struct {
	ID       int
	Name     string
	Quantity int   `validate:"min=0"`
	Price    int64 `validate:"min=0"` // Price in cents
}

// ProductPatch is a sparse update. Nil members are left unchanged.
type ProductPatch struct {
	Name     *string
	Quantity *int   `validate:"omitnil,min=0"`
	Price    *int64 `validate:"omitnil,min=0"` // Price in cents
}

// ProductStore is an interface for product storage operations.
// Every mutation is written through to durable storage before it returns.
type ProductStore interface {
	// Ensure creates the data file with only a header row if it does not exist.
	// Returns ErrPermissionDenied if the file cannot be created.
	Ensure() error

	// Load replaces the in-memory records with the content of the data file.
	// Corrupt rows are logged and skipped. Returns ErrCorruptFile if the file has no valid header.
	Load() error

	// List returns all products ordered by ascending ID.
	// Returns an empty slice if no products exist.
	List() []Product

	// Get retrieves a single product by its ID.
	// The boolean is false if no product exists with the given ID.
	Get(id int) (Product, bool)

	// Add inserts a new product and persists.
	// Returns ErrDuplicateProduct if a product with the same ID exists.
	Add(p Product) error

	// Update applies a patch to an existing product and persists.
	// Returns ErrProductNotFound if no product exists with the given ID and
	// ErrInvalidValue, without applying anything, if any patched value is invalid.
	Update(id int, patch ProductPatch) (Product, error)

	// Delete removes a product by its ID and persists.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(id int) error

	// SetPath points the store at another data file and writes the current records to it.
	// Existing content of the new file is overwritten, the old file is left untouched.
	SetPath(path string) error

	// Path returns the current data file.
	Path() string
}
