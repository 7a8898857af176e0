// Package menu implements the interactive text menu for the inventory.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/abgdnv/inventory/internal/product/store"
)

type Menu struct {
	service service.ProductService
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
}

// NewMenu creates a menu reading commands from in and writing to out.
func NewMenu(service service.ProductService, in io.Reader, out io.Writer, logger *slog.Logger) *Menu {
	return &Menu{
		service: service,
		in:      in,
		out:     out,
		logger:  logger.With("component", "menu"),
	}
}

type action struct {
	key   string
	title string
	run   func(m *Menu, ctx context.Context, lr *lineReader) error
}

var actions = []action{
	{key: "1", title: "List products", run: (*Menu).list},
	{key: "2", title: "Find product by ID", run: (*Menu).find},
	{key: "3", title: "Search products by name", run: (*Menu).search},
	{key: "4", title: "Add product", run: (*Menu).add},
	{key: "5", title: "Update product", run: (*Menu).update},
	{key: "6", title: "Delete product", run: (*Menu).remove},
	{key: "7", title: "Change data file", run: (*Menu).changeFile},
	{key: "8", title: "Inventory summary", run: (*Menu).summary},
}

// Run shows the menu until the user quits, input ends or ctx is cancelled.
// Failed operations are reported and the loop continues; only input errors are returned.
func (m *Menu) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lr := newLineReader(ctx, m.in, m.out)

	for {
		m.printMenu()
		choice, err := lr.prompt("Choose an option")
		if err != nil {
			return endOfInput(err)
		}
		if choice == "0" || choice == "q" {
			fmt.Fprintln(m.out, "Bye.")
			return nil
		}
		a, ok := findAction(choice)
		if !ok {
			fmt.Fprintf(m.out, "Unknown option %q.\n", choice)
			continue
		}
		if err := a.run(m, ctx, lr); err != nil {
			return endOfInput(err)
		}
	}
}

func findAction(key string) (action, bool) {
	for _, a := range actions {
		if a.key == key {
			return a, true
		}
	}
	return action{}, false
}

// endOfInput treats EOF and cancellation as a normal end of the session.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (m *Menu) printMenu() {
	fmt.Fprintf(m.out, "\n=== Inventory (%s) ===\n", m.service.CurrentFile())
	for _, a := range actions {
		fmt.Fprintf(m.out, "%s. %s\n", a.key, a.title)
	}
	fmt.Fprintln(m.out, "0. Quit")
}

func (m *Menu) list(_ context.Context, _ *lineReader) error {
	m.printProducts(m.service.FindAll())
	return nil
}

func (m *Menu) find(ctx context.Context, lr *lineReader) error {
	id, err := lr.promptInt("Product ID", false)
	if err != nil {
		return err
	}
	p, err := m.service.FindByID(*id)
	if err != nil {
		m.report(ctx, "find", err)
		return nil
	}
	m.printProducts([]service.ProductDto{*p})
	return nil
}

func (m *Menu) search(_ context.Context, lr *lineReader) error {
	query, err := lr.prompt("Name contains")
	if err != nil {
		return err
	}
	m.printProducts(m.service.FindByName(query))
	return nil
}

func (m *Menu) add(ctx context.Context, lr *lineReader) error {
	id, err := lr.promptInt("Product ID", false)
	if err != nil {
		return err
	}
	name, err := lr.prompt("Name")
	if err != nil {
		return err
	}
	quantity, err := lr.promptInt("Quantity", false)
	if err != nil {
		return err
	}
	price, err := lr.promptPrice("Price", false)
	if err != nil {
		return err
	}

	created, err := m.service.Create(ctx, service.ProductDto{
		ID:       *id,
		Name:     name,
		Quantity: *quantity,
		Price:    *price,
	})
	if err != nil {
		m.report(ctx, "add", err)
		return nil
	}
	fmt.Fprintf(m.out, "Product %d added.\n", created.ID)
	return nil
}

func (m *Menu) update(ctx context.Context, lr *lineReader) error {
	id, err := lr.promptInt("Product ID", false)
	if err != nil {
		return err
	}
	current, err := m.service.FindByID(*id)
	if err != nil {
		m.report(ctx, "update", err)
		return nil
	}
	m.printProducts([]service.ProductDto{*current})
	fmt.Fprintln(m.out, "Leave a field empty to keep its value.")

	var patch service.PatchDto
	name, err := lr.prompt("New name")
	if err != nil {
		return err
	}
	if name != "" {
		patch.Name = &name
	}
	if patch.Quantity, err = lr.promptInt("New quantity", true); err != nil {
		return err
	}
	if patch.Price, err = lr.promptPrice("New price", true); err != nil {
		return err
	}
	if patch.Name == nil && patch.Quantity == nil && patch.Price == nil {
		fmt.Fprintln(m.out, "Nothing to update.")
		return nil
	}

	updated, err := m.service.Update(ctx, *id, patch)
	if err != nil {
		m.report(ctx, "update", err)
		return nil
	}
	fmt.Fprintf(m.out, "Product %d updated.\n", updated.ID)
	return nil
}

func (m *Menu) remove(ctx context.Context, lr *lineReader) error {
	id, err := lr.promptInt("Product ID", false)
	if err != nil {
		return err
	}
	if err := m.service.DeleteByID(ctx, *id); err != nil {
		m.report(ctx, "delete", err)
		return nil
	}
	fmt.Fprintf(m.out, "Product %d deleted.\n", *id)
	return nil
}

func (m *Menu) changeFile(ctx context.Context, lr *lineReader) error {
	path, err := lr.prompt("New data file")
	if err != nil {
		return err
	}
	if err := m.service.ChangeFile(ctx, path); err != nil {
		m.report(ctx, "change file", err)
		return nil
	}
	fmt.Fprintf(m.out, "Now using %s. Existing content of that file was replaced with the current inventory.\n", m.service.CurrentFile())
	return nil
}

func (m *Menu) summary(_ context.Context, _ *lineReader) error {
	sum := m.service.Summary()
	fmt.Fprintf(m.out, "Products: %d\nUnits in stock: %d\nStock value: %s\n",
		sum.Products, sum.Units, store.FormatPrice(sum.Value))
	if sum.Overflow {
		fmt.Fprintln(m.out, "Totals are too large to represent and were capped.")
	}
	return nil
}

func (m *Menu) printProducts(products []service.ProductDto) {
	if len(products) == 0 {
		fmt.Fprintln(m.out, "No products.")
		return
	}
	tw := tabwriter.NewWriter(m.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tQuantity\tPrice")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", p.ID, p.Name, p.Quantity, store.FormatPrice(p.Price))
	}
	_ = tw.Flush()
}

// report renders a failed operation as a single line.
func (m *Menu) report(ctx context.Context, op string, err error) {
	m.logger.WarnContext(ctx, "Operation failed", "op", op, "error", err)

	switch {
	case errors.Is(err, producterrors.ErrProductNotFound):
		fmt.Fprintln(m.out, "Product not found.")
	case errors.Is(err, producterrors.ErrDuplicateProduct):
		fmt.Fprintln(m.out, "A product with this ID already exists.")
	case errors.Is(err, producterrors.ErrInvalidValue):
		fmt.Fprintf(m.out, "Rejected: %v\n", err)
	case errors.Is(err, producterrors.ErrPermissionDenied):
		fmt.Fprintf(m.out, "Permission denied: %v\n", err)
		m.warnNotSaved(op)
	case errors.Is(err, producterrors.ErrCorruptFile):
		fmt.Fprintf(m.out, "Data file is corrupt: %v\n", err)
	case errors.Is(err, producterrors.ErrStoreIO):
		fmt.Fprintf(m.out, "Storage error: %v\n", err)
		m.warnNotSaved(op)
	default:
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
}

// warnNotSaved explains that a failed write leaves the change in memory only.
func (m *Menu) warnNotSaved(op string) {
	switch op {
	case "add", "update", "delete":
		fmt.Fprintln(m.out, "The change is applied in memory but was NOT saved to disk.")
	}
}
