package menu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	perrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// runScript runs the menu against a fresh data file with the given input lines.
func runScript(t *testing.T, lines ...string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	st, err := store.NewFileStore(path, discardLogger)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	m := NewMenu(service.NewService(st, discardLogger), in, out, discardLogger)

	require.NoError(t, m.Run(context.Background()))
	return out.String(), path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(d)
}

func Test_Menu_Scenario(t *testing.T) {
	// when
	out, path := runScript(t,
		"4", "1", "Pencil", "100", "0.25",
		"4", "2", "Notebook", "50", "1.75",
		"5", "1", "", "120", "",
		"6", "2",
		"1",
		"0",
	)
	// then
	assert.Contains(t, out, "Product 1 added.")
	assert.Contains(t, out, "Product 2 added.")
	assert.Contains(t, out, "Product 1 updated.")
	assert.Contains(t, out, "Product 2 deleted.")
	assert.Contains(t, out, "Bye.")
	assert.Equal(t, "id,name,quantity,price\n1,Pencil,120,0.25\n", readFile(t, path))
}

func Test_Menu_ReasksOnUnparseableInput(t *testing.T) {
	out, path := runScript(t,
		"4", "abc", "3", "Pen", "1", "-2", "two", "2.50",
		"q",
	)

	assert.Contains(t, out, `Invalid value "abc": enter a whole number.`)
	assert.Contains(t, out, `price "-2" is negative`)
	assert.Contains(t, out, `price "two" is not a decimal number`)
	assert.Contains(t, out, "Product 3 added.")
	assert.Equal(t, "id,name,quantity,price\n3,Pen,1,2.50\n", readFile(t, path))
}

func Test_Menu_ReportsFailures(t *testing.T) {
	testCases := []struct {
		name     string
		lines    []string
		expected string
	}{
		{
			name:     "find missing product",
			lines:    []string{"2", "99", "0"},
			expected: "Product not found.",
		},
		{
			name:     "delete missing product",
			lines:    []string{"6", "99", "0"},
			expected: "Product not found.",
		},
		{
			name:     "update missing product",
			lines:    []string{"5", "99", "0"},
			expected: "Product not found.",
		},
		{
			name:     "duplicate id",
			lines:    []string{"4", "1", "A", "1", "1", "4", "1", "B", "1", "1", "0"},
			expected: "A product with this ID already exists.",
		},
		{
			name:     "negative quantity",
			lines:    []string{"4", "1", "A", "-5", "1", "0"},
			expected: "Rejected: invalid value: quantity must not be negative",
		},
		{
			name:     "blank name",
			lines:    []string{"4", "1", "   ", "5", "1", "0"},
			expected: "Rejected: invalid value: name is required",
		},
		{
			name:     "unknown option",
			lines:    []string{"42", "0"},
			expected: `Unknown option "42".`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := runScript(t, tc.lines...)

			assert.Contains(t, out, tc.expected)
			assert.Contains(t, out, "Bye.")
		})
	}
}

func Test_Menu_UpdateWithoutChanges(t *testing.T) {
	out, path := runScript(t,
		"4", "1", "Pencil", "100", "0.25",
		"5", "1", "", "", "",
		"0",
	)

	assert.Contains(t, out, "Nothing to update.")
	assert.Equal(t, "id,name,quantity,price\n1,Pencil,100,0.25\n", readFile(t, path))
}

func Test_Menu_SearchAndSummary(t *testing.T) {
	out, _ := runScript(t,
		"4", "1", "Pencil", "120", "0.25",
		"4", "2", "Notebook", "50", "1.75",
		"3", "pen",
		"8",
		"0",
	)

	assert.Contains(t, out, "Pencil")
	assert.Contains(t, out, "Products: 2")
	assert.Contains(t, out, "Units in stock: 170")
	assert.Contains(t, out, "Stock value: 117.50")
}

func Test_Menu_ChangeFile(t *testing.T) {
	newPath := filepath.Join(t.TempDir(), "other.csv")

	out, oldPath := runScript(t,
		"4", "1", "Pencil", "1", "0.25",
		"7", newPath,
		"4", "2", "Pen", "1", "0.50",
		"0",
	)

	assert.Contains(t, out, "Now using "+newPath)
	assert.Equal(t, "id,name,quantity,price\n1,Pencil,1,0.25\n", readFile(t, oldPath))
	assert.Equal(t, "id,name,quantity,price\n1,Pencil,1,0.25\n2,Pen,1,0.50\n", readFile(t, newPath))
}

func Test_Menu_EndOfInput(t *testing.T) {
	// input ends in the middle of the add prompts
	out, path := runScript(t, "4", "1", "Pencil")

	assert.NotContains(t, out, "Bye.")
	assert.Equal(t, "id,name,quantity,price\n", readFile(t, path))
}

func Test_Menu_ReadError(t *testing.T) {
	errBoom := errors.New("boom")
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "inventory.csv"), discardLogger)
	require.NoError(t, err)
	m := NewMenu(service.NewService(st, discardLogger), iotest.ErrReader(errBoom), io.Discard, discardLogger)

	err = m.Run(context.Background())

	assert.ErrorIs(t, err, errBoom)
}

func Test_Menu_StopsOnCancel(t *testing.T) {
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "inventory.csv"), discardLogger)
	require.NoError(t, err)
	pr, pw := io.Pipe()
	defer pw.Close()
	m := NewMenu(service.NewService(st, discardLogger), pr, io.Discard, discardLogger)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("menu did not stop after cancellation")
	}
}

// mockProductService lets tests inject storage failures.
type mockProductService struct {
	service.ProductService
	error   error
	summary service.SummaryDto
}

func (m mockProductService) Summary() service.SummaryDto {
	return m.summary
}

func (m mockProductService) DeleteByID(_ context.Context, _ int) error {
	return m.error
}

func (m mockProductService) ChangeFile(_ context.Context, _ string) error {
	return m.error
}

func (m mockProductService) CurrentFile() string {
	return "inventory.csv"
}

func Test_Menu_StorageFailures(t *testing.T) {
	testCases := []struct {
		name        string
		error       error
		lines       []string
		expected    string
		notSavedMsg bool
	}{
		{
			name:        "delete not persisted",
			error:       perrors.ErrStoreIO,
			lines:       []string{"6", "1", "0"},
			expected:    "Storage error:",
			notSavedMsg: true,
		},
		{
			name:        "delete permission denied",
			error:       perrors.ErrPermissionDenied,
			lines:       []string{"6", "1", "0"},
			expected:    "Permission denied:",
			notSavedMsg: true,
		},
		{
			name:     "change file permission denied",
			error:    perrors.ErrPermissionDenied,
			lines:    []string{"7", "/locked/x.csv", "0"},
			expected: "Permission denied:",
		},
		{
			name:     "corrupt file",
			error:    perrors.ErrCorruptFile,
			lines:    []string{"7", "x.csv", "0"},
			expected: "Data file is corrupt:",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			out := &bytes.Buffer{}
			in := strings.NewReader(strings.Join(tc.lines, "\n") + "\n")
			m := NewMenu(mockProductService{error: tc.error}, in, out, discardLogger)
			// when
			err := m.Run(context.Background())
			// then
			require.NoError(t, err)
			assert.Contains(t, out.String(), tc.expected)
			if tc.notSavedMsg {
				assert.Contains(t, out.String(), "NOT saved")
			} else {
				assert.NotContains(t, out.String(), "NOT saved")
			}
		})
	}
}

func Test_Menu_SummaryOverflow(t *testing.T) {
	// given
	out := &bytes.Buffer{}
	in := strings.NewReader("8\n0\n")
	svc := mockProductService{summary: service.SummaryDto{Products: 1, Units: 1, Value: 100, Overflow: true}}
	m := NewMenu(svc, in, out, discardLogger)
	// when
	err := m.Run(context.Background())
	// then
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Stock value: 1.00")
	assert.Contains(t, out.String(), "were capped")
}
