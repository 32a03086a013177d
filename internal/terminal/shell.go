package terminal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iyhunko/catalogo-prodotti/internal/catalog"
	"github.com/iyhunko/catalogo-prodotti/internal/model"
)

const help = `comandi:
  list                      ricarica il catalogo
  add <nome> <prezzo>       aggiunge un prodotto
  del <id>                  elimina un prodotto (chiede conferma)
  toggle <id>               cambia la disponibilita
  edit <id>                 apre la modifica di un prodotto
  set nome <valore>         modifica il nome in corso
  set prezzo <valore>       modifica il prezzo in corso
  set disponibile <si|no>   modifica la disponibilita in corso
  save                      salva la modifica
  cancel                    annulla la modifica
  help                      mostra questo aiuto
  quit                      esce
`

var errUsage = errors.New("usage")

// View is the part of catalog.View the shell drives.
type View interface {
	Reload() error
	Add(name string, price float64) error
	Remove(id int64) error
	ToggleAvailability(id int64) error
	StartEdit(id int64) error
	UpdateEdit(fields catalog.EditFields) error
	CancelEdit() error
	SaveEdit() error
	State() (catalog.State, error)
	Settle()
}

// Shell reads commands from the terminal and turns them into view events.
type Shell struct {
	view View
	term *Terminal
}

// NewShell creates a Shell driving view through term.
func NewShell(view View, term *Terminal) *Shell {
	return &Shell{view: view, term: term}
}

// Run executes commands until quit, end of input or ctx is done.
// After each command it waits for the gateway calls it started, so output stays in order.
func (s *Shell) Run(ctx context.Context) error {
	s.view.Settle()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.term.Printf("> ")
		line, ok := s.term.ReadLine()
		if !ok {
			return nil
		}
		quit, err := s.Execute(line)
		if quit {
			return nil
		}
		switch {
		case err == nil:
		case errors.Is(err, catalog.ErrStopped):
			return err
		case errors.Is(err, model.ErrInvalidProduct):
			// already alerted
		default:
			s.term.Printf("errore: %v\n", err)
		}
		s.view.Settle()
	}
}

// Execute runs a single command line. It reports true when the line asks to quit.
func (s *Shell) Execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		s.term.Printf("%s", help)
		return false, nil
	case "list", "reload":
		return false, s.view.Reload()
	case "add":
		if len(args) < 2 {
			return false, usage("add <nome> <prezzo>")
		}
		price, err := parsePrice(args[len(args)-1])
		if err != nil {
			return false, err
		}
		return false, s.view.Add(strings.Join(args[:len(args)-1], " "), price)
	case "del", "delete", "rm":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		return false, s.view.Remove(id)
	case "toggle":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		return false, s.view.ToggleAvailability(id)
	case "edit":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		return false, s.view.StartEdit(id)
	case "set":
		return false, s.set(args)
	case "save":
		return false, s.view.SaveEdit()
	case "cancel":
		return false, s.view.CancelEdit()
	default:
		return false, fmt.Errorf("comando sconosciuto %q (help per l'elenco)", cmd)
	}
}

func (s *Shell) set(args []string) error {
	if len(args) < 2 {
		return usage("set <nome|prezzo|disponibile> <valore>")
	}
	state, err := s.view.State()
	if err != nil {
		return err
	}
	if state.Editing == nil {
		return catalog.ErrNotEditing
	}

	fields := state.Editing.Fields
	value := strings.Join(args[1:], " ")
	switch strings.ToLower(args[0]) {
	case "nome", "name":
		fields.Name = value
	case "prezzo", "price":
		price, err := parsePrice(value)
		if err != nil {
			return err
		}
		fields.Price = price
	case "disponibile", "available":
		available, err := parseBool(value)
		if err != nil {
			return err
		}
		fields.Available = available
	default:
		return usage("set <nome|prezzo|disponibile> <valore>")
	}
	return s.view.UpdateEdit(fields)
}

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, usage("<comando> <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	return id, nil
}

func parsePrice(value string) (float64, error) {
	price, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", value, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("invalid price %q: not a finite number", value)
	}
	return price, nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "si", "sì", "s", "yes", "y", "true", "1":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid availability %q", value)
}
