// Package prompt asks the operator yes/no questions during a run.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/homestead/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Modes accepted by New
const (
	ModeAsk = "ask"
	ModeYes = "yes"
	ModeNo  = "no"
)

// Confirmer answers a yes/no question. defaultYes is the answer on an empty
// reply.
type Confirmer interface {
	Confirm(ctx context.Context, question string, defaultYes bool) (bool, error)
}

// New returns the Confirmer for mode. In ask mode a terminal gets an
// interactive prompt and anything else is read line by line from in.
func New(mode string, in *os.File, out io.Writer) (Confirmer, error) {
	switch mode {
	case ModeYes:
		return Fixed(true), nil
	case ModeNo:
		return Fixed(false), nil
	case ModeAsk, "":
		if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
			return Interactive{}, nil
		}
		return NewConsole(in, out), nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown prompt mode %q", mode)
}

// Fixed answers every question the same way
type Fixed bool

// Confirm implements Confirmer
func (f Fixed) Confirm(context.Context, string, bool) (bool, error) {
	return bool(f), nil
}

// Interactive prompts on the terminal with pterm
type Interactive struct{}

// Confirm implements Confirmer
func (Interactive) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(err, errors.ErrPrompt, "prompt cancelled")
	}
	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText(question).
		WithDefaultValue(defaultYes).
		Show()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrPrompt, "read answer")
	}
	return ok, nil
}

// Console reads answers line by line, for piped input
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a Console reading from in and writing questions to out
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Confirm implements Confirmer. End of input takes the default.
func (c *Console) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(err, errors.ErrPrompt, "prompt cancelled")
	}

	marker := "[y/N]"
	if defaultYes {
		marker = "[Y/n]"
	}
	fmt.Fprintf(c.out, "%s %s ", question, marker)

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, errors.ErrPrompt, "read answer")
	}
	if err == io.EOF {
		fmt.Fprintln(c.out)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
