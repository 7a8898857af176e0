package store

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/go-playground/validator/v10"
)

// header is the mandatory first row of the data file.
var header = []string{"id", "name", "quantity", "price"}

const utf8BOM = "\ufeff"

// validHeader reports whether fields is the data file header.
// A leading BOM and whitespace around names are tolerated.
func validHeader(fields []string) bool {
	if len(fields) != len(header) {
		return false
	}
	for i, f := range fields {
		if i == 0 {
			f = strings.TrimPrefix(f, utf8BOM)
		}
		if strings.TrimSpace(f) != header[i] {
			return false
		}
	}
	return true
}

// parseRow converts one data row into a Product. Range checks are left to the caller.
func parseRow(fields []string) (Product, error) {
	if len(fields) != len(header) {
		return Product{}, fmt.Errorf("expected %d fields, got %d", len(header), len(fields))
	}
	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Product{}, fmt.Errorf("invalid id %q: %w", fields[0], err)
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return Product{}, fmt.Errorf("invalid quantity %q: %w", fields[2], err)
	}
	price, err := ParsePrice(fields[3])
	if err != nil {
		return Product{}, err
	}
	return Product{
		ID:       id,
		Name:     strings.TrimSpace(fields[1]),
		Quantity: quantity,
		Price:    price,
	}, nil
}

// formatRow is the inverse of parseRow.
func formatRow(p Product) []string {
	return []string{
		strconv.Itoa(p.ID),
		p.Name,
		strconv.Itoa(p.Quantity),
		FormatPrice(p.Price),
	}
}

// ParsePrice converts a non-negative decimal literal such as "1.75" to cents,
// rounding half away from zero on the third fraction digit.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: price %q is negative", producterrors.ErrInvalidValue, s)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if (whole == "" && frac == "") || !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("%w: price %q is not a decimal number", producterrors.ErrInvalidValue, s)
	}
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > math.MaxInt64/100 {
		return 0, fmt.Errorf("%w: price %q is too large", producterrors.ErrInvalidValue, s)
	}

	frac += "000"
	cents, _ := strconv.ParseInt(frac[:2], 10, 64)
	if frac[2] >= '5' {
		cents++
	}
	if units*100 > math.MaxInt64-cents {
		return 0, fmt.Errorf("%w: price %q is too large", producterrors.ErrInvalidValue, s)
	}
	return units*100 + cents, nil
}

func isDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}

// FormatPrice renders cents with exactly two fraction digits.
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validationError maps validator failures to ErrInvalidValue.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s must satisfy %s=%s, got %v",
			producterrors.ErrInvalidValue, strings.ToLower(fe.Field()), fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Errorf("%w: %w", producterrors.ErrInvalidValue, err)
}
