package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abgdnv/inventory/internal/product/store"
)

// lineReader delivers input lines and gives up as soon as ctx is done,
// even while the underlying reader is blocked.
type lineReader struct {
	ctx   context.Context
	out   io.Writer
	lines <-chan string
	errc  <-chan error
}

func newLineReader(ctx context.Context, r io.Reader, out io.Writer) *lineReader {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- fmt.Errorf("error reading input: %w", err)
		}
	}()
	return &lineReader{ctx: ctx, out: out, lines: lines, errc: errc}
}

// next returns the next trimmed line, io.EOF at end of input or ctx.Err() on cancellation.
func (lr *lineReader) next() (string, error) {
	select {
	case <-lr.ctx.Done():
		return "", lr.ctx.Err()
	case line, ok := <-lr.lines:
		if !ok {
			select {
			case err := <-lr.errc:
				return "", err
			default:
				return "", io.EOF
			}
		}
		return strings.TrimSpace(line), nil
	}
}

func (lr *lineReader) prompt(label string) (string, error) {
	fmt.Fprintf(lr.out, "%s: ", label)
	return lr.next()
}

// promptInt asks until it gets a whole number. With optional set, an empty
// answer returns nil.
func (lr *lineReader) promptInt(label string, optional bool) (*int, error) {
	for {
		s, err := lr.prompt(label)
		if err != nil {
			return nil, err
		}
		if optional && s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			fmt.Fprintf(lr.out, "Invalid value %q: enter a whole number.\n", s)
			continue
		}
		return &n, nil
	}
}

// promptPrice asks until it gets a non-negative decimal and returns it in cents.
func (lr *lineReader) promptPrice(label string, optional bool) (*int64, error) {
	for {
		s, err := lr.prompt(label)
		if err != nil {
			return nil, err
		}
		if optional && s == "" {
			return nil, nil
		}
		cents, err := store.ParsePrice(s)
		if err != nil {
			fmt.Fprintf(lr.out, "%v. Enter an amount like 1.75.\n", err)
			continue
		}
		return &cents, nil
	}
}
