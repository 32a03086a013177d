// Package terminal renders the catalog view on a line-oriented terminal and reads commands.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/iyhunko/catalogo-prodotti/internal/catalog"
)

// Terminal implements catalog.UI over a reader and a writer.
// Alerts are printed without waiting for acknowledgement because a background
// completion may alert while the shell is waiting for the next command.
// Input is read by a single goroutine, so Stop can release a pending
// ReadLine or Confirm without closing the reader.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Scanner
	out io.Writer

	lines     chan string
	stop      chan struct{}
	startRead sync.Once
	stopOnce  sync.Once
}

// New creates a Terminal reading answers and commands from in and writing to out.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:    bufio.NewScanner(in),
		out:   out,
		lines: make(chan string),
		stop:  make(chan struct{}),
	}
}

// Stop makes every pending and future ReadLine report end of input,
// so Confirm answers no. It is safe to call more than once.
func (t *Terminal) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Render prints the product table, the draft and the open edit session.
func (t *Terminal) Render(state catalog.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "\n== %s ==\n", catalog.Title)
	if len(state.Products) == 0 {
		fmt.Fprintln(t.out, "(nessun prodotto)")
	} else {
		tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "ID\tNOME\tPREZZO\tDISPONIBILE\t")
		for _, p := range state.Products {
			marker := ""
			if state.Editing != nil && state.Editing.ID == p.ID {
				marker = " *"
			}
			fmt.Fprintf(tw, "%d%s\t%s\t%.2f\t%s\t\n", p.ID, marker, p.Name, p.Price, yesNo(p.Available))
		}
		_ = tw.Flush()
	}
	if state.Draft.Name != "" || state.Draft.Price != 0 {
		fmt.Fprintf(t.out, "nuovo: nome=%q prezzo=%.2f\n", state.Draft.Name, state.Draft.Price)
	}
	if e := state.Editing; e != nil {
		fmt.Fprintf(t.out, "modifica #%d: nome=%q prezzo=%.2f disponibile=%s\n",
			e.ID, e.Fields.Name, e.Fields.Price, yesNo(e.Fields.Available))
	}
}

// Alert prints message.
func (t *Terminal) Alert(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "! %s\n", message)
}

// Confirm asks a yes/no question and blocks until a line is read.
// Anything but an explicit yes, including end of input, is a no.
func (t *Terminal) Confirm(message string) bool {
	t.mu.Lock()
	fmt.Fprintf(t.out, "? %s [s/N] ", message)
	t.mu.Unlock()

	line, ok := t.ReadLine()
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sì", "y", "yes":
		return true
	default:
		return false
	}
}

// Printf writes a formatted line for the shell.
func (t *Terminal) Printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// ReadLine reads the next input line. It reports false at end of input or after Stop.
func (t *Terminal) ReadLine() (string, bool) {
	select {
	case <-t.stop:
		return "", false
	default:
	}

	t.startRead.Do(func() { go t.read() })
	select {
	case line, ok := <-t.lines:
		return line, ok
	case <-t.stop:
		return "", false
	}
}

func (t *Terminal) read() {
	defer close(t.lines)
	for t.in.Scan() {
		select {
		case t.lines <- t.in.Text():
		case <-t.stop:
			return
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "si"
	}
	return "no"
}
