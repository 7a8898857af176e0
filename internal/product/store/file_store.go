package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/go-playground/validator/v10"
	"github.com/kjk/common/atomicfile"
)

const filePerm = 0o644

var _ ProductStore = (*FileStore)(nil)

// FileStore implements ProductStore on top of a CSV file.
// Reads are served from memory, every mutation rewrites the whole file.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	products *index
	validate *validator.Validate
	logger   *slog.Logger
}

// NewFileStore creates the data file if needed and loads it.
// An empty path selects DefaultPath.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &FileStore{
		path:     path,
		products: newIndex(),
		validate: newValidator(),
		logger:   logger.With("component", "store"),
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the current data file.
func (s *FileStore) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.path
}

// Ensure creates the data file with a header row if it does not exist.
func (s *FileStore) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ensure(s.path)
}

// Load reads the data file into memory. On failure the in-memory records are left as they were.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// List returns all products ordered by ascending ID.
func (s *FileStore) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.products.list()
}

// Get retrieves a product by its ID.
func (s *FileStore) Get(id int) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.products.get(id)
}

// Add inserts a new product and persists.
func (s *FileStore) Add(p Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if err := s.validateProduct(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products.get(p.ID); exists {
		return fmt.Errorf("%w: id %d", producterrors.ErrDuplicateProduct, p.ID)
	}
	s.products.put(p)
	return s.persist(s.path)
}

// Update applies patch to the product with the given ID and persists.
// The patch is validated as a whole before any field is applied.
func (s *FileStore) Update(id int, patch ProductPatch) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products.get(id)
	if !ok {
		return Product{}, fmt.Errorf("%w: id %d", producterrors.ErrProductNotFound, id)
	}
	if err := s.validatePatch(patch); err != nil {
		return Product{}, err
	}

	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	s.products.put(p)
	return p, s.persist(s.path)
}

// Delete removes the product with the given ID and persists.
func (s *FileStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.products.remove(id) {
		return fmt.Errorf("%w: id %d", producterrors.ErrProductNotFound, id)
	}
	return s.persist(s.path)
}

// SetPath points the store at path, creating the file if absent, and writes
// the current records to it. Records already in that file are not read.
// On failure the store keeps its previous path.
func (s *FileStore) SetPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty data file path", producterrors.ErrInvalidValue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensure(path); err != nil {
		return err
	}
	if err := s.persist(path); err != nil {
		return err
	}
	s.logger.Info("Data file changed", "from", s.path, "to", path)
	s.path = path
	return nil
}

func (s *FileStore) ensure(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return s.fsError("stat", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return s.fsError("create", path, err)
	}
	w := csv.NewWriter(f)
	errWrite := w.Write(header)
	w.Flush()
	if errWrite == nil {
		errWrite = w.Error()
	}
	errClose := f.Close()
	if errWrite == nil {
		errWrite = errClose
	}
	if errWrite != nil {
		_ = os.Remove(path)
		return s.fsError("create", path, errWrite)
	}
	s.logger.Info("Created data file", "path", path)
	return nil
}

func (s *FileStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Data file vanished before load, recreating it", "path", s.path)
			if err := s.ensure(s.path); err != nil {
				return err
			}
			s.products = newIndex()
			return nil
		}
		return s.fsError("open", s.path, err)
	}
	defer f.Close()

	loaded, err := s.decode(f)
	if err != nil {
		return err
	}
	s.products = loaded
	s.logger.Debug("Loaded data file", "path", s.path, "records", loaded.len())
	return nil
}

// decode reads the header and all data rows. Rows that fail to parse are
// logged with their physical line number and skipped; a later row with the
// same ID replaces an earlier one.
func (s *FileStore) decode(r io.Reader) (*index, error) {
	cr := csv.NewReader(r)
	// field count is checked per row so a short row doesn't stop the load
	cr.FieldsPerRecord = -1

	fields, err := cr.Read()
	if err != nil && !errors.Is(err, io.EOF) && !isCSVError(err) {
		return nil, s.fsError("read", s.path, err)
	}
	if err != nil || !validHeader(fields) {
		s.logger.Error("Data file has no valid header", "path", s.path, "header", strings.Join(fields, ","))
		return nil, fmt.Errorf("%w: %s: expected header %q", producterrors.ErrCorruptFile, s.path, strings.Join(header, ","))
	}

	products := newIndex()
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var line int
		var p Product
		var perr *csv.ParseError
		switch {
		case errors.As(err, &perr):
			line = perr.StartLine
		case err != nil:
			return nil, s.fsError("read", s.path, err)
		default:
			line, _ = cr.FieldPos(0)
			if p, err = parseRow(fields); err == nil {
				err = s.validateProduct(p)
			}
		}
		if err != nil {
			s.logger.Warn("Skipping corrupt row",
				"line", line,
				"path", s.path,
				"error", err,
				"row", strings.Join(fields, ","))
			continue
		}
		products.put(p)
	}
	return products, nil
}

// persist writes all records to path, replacing it atomically.
func (s *FileStore) persist(path string) error {
	products := s.products.list()
	f, err := atomicfile.New(path)
	if err != nil {
		return s.fsError("write", path, err)
	}
	defer f.RemoveIfNotClosed()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return s.fsError("write", path, err)
	}
	for _, p := range products {
		if err := cw.Write(formatRow(p)); err != nil {
			return s.fsError("write", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return s.fsError("write", path, err)
	}
	if err := f.Close(); err != nil {
		return s.fsError("write", path, err)
	}
	// the temporary file is created owner-only
	if err := os.Chmod(path, filePerm); err != nil {
		s.logger.Warn("Failed to set data file permissions", "path", path, "error", err)
	}
	s.logger.Debug("Persisted data file", "path", path, "records", len(products))
	return nil
}

func (s *FileStore) validateProduct(p Product) error {
	return validationError(s.validate.Struct(p))
}

func (s *FileStore) validatePatch(patch ProductPatch) error {
	return validationError(s.validate.Struct(patch))
}

// fsError logs a filesystem failure and classifies it as ErrPermissionDenied or ErrStoreIO.
func (s *FileStore) fsError(op, path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		s.logger.Error("Permission denied", "op", op, "path", path, "error", err)
		return fmt.Errorf("%w: failed to %s %s: %w", producterrors.ErrPermissionDenied, op, path, err)
	}
	s.logger.Error("Data file I/O failure", "op", op, "path", path, "error", err)
	return fmt.Errorf("%w: failed to %s %s: %w", producterrors.ErrStoreIO, op, path, err)
}

func isCSVError(err error) bool {
	var perr *csv.ParseError
	return errors.As(err, &perr)
}
