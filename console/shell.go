package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"retailadmin/views"
)

// ErrQuit ends the shell loop.
var ErrQuit = errors.New("quit")

const shellHelp = `Commands:
  open <path>              go to a location (/dashboard, /items, /new-item, /items/3/edit, /items/3)
  search <term>            filter the current list, back to page 1
  page <n> [limit]         change page of the current list
  reload                   load the current list again
  view|edit|delete <id>    act on a record of the current list; delete asks first
  new                      open the create form of the current list
  set <field>=<value>      fill a form field; an empty value clears it
  upload <field> <file>    upload an image into a form field
  submit                   validate and save the current form
  cancel                   leave the current form
  show                     render the current screen again
  login <id> <password>    log in
  logout                   log out
  help                     this text
  quit                     leave the shell`

// Shell reads commands line by line and applies them to an App.
type Shell struct {
	app *App
	out io.Writer
	// lines is the input Run reads from; confirmations read their answer from it too.
	lines *bufio.Scanner
}

// NewShell creates a shell over app writing prompts and errors to out.
func NewShell(app *App, out io.Writer) *Shell {
	return &Shell{app: app, out: out}
}

// Run opens start and processes commands from in until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader, start string) error {
	if err := s.app.Open(ctx, start); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}

	scanner := bufio.NewScanner(in)
	s.lines = scanner
	for {
		fmt.Fprintf(s.out, "%s> ", s.app.Location())
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch cmd {
	case "open":
		if rest == "" {
			return errors.New("usage: open <path>")
		}
		return s.app.Open(ctx, rest)
	case "search":
		err = s.withList(func(l *views.ListView) error { return l.Search(ctx, rest) })
	case "page":
		err = s.page(ctx, rest)
	case "reload":
		err = s.withList(func(l *views.ListView) error { return l.Load(ctx) })
	case "delete":
		if rest == "" {
			return errors.New("usage: delete <id>")
		}
		err = s.withList(func(l *views.ListView) error {
			if !askYesNo(s.lines, s.out, deleteQuestion(l.Schema().Noun())) {
				fmt.Fprintln(s.out, "Delete cancelled")
				return nil
			}
			return l.Delete(ctx, rest)
		})
	case "view", "edit":
		if rest == "" {
			return fmt.Errorf("usage: %s <id>", cmd)
		}
		err = s.withList(func(l *views.ListView) error {
			if cmd == "view" {
				l.View(rest)
			} else {
				l.Edit(rest)
			}
			return nil
		})
	case "new":
		err = s.withList(func(l *views.ListView) error { l.Create(); return nil })
	case "set":
		err = s.set(rest)
	case "upload":
		err = s.upload(ctx, rest)
	case "submit":
		err = s.withForm(func(f *views.FormView) error { return f.Submit(ctx) })
	case "cancel":
		err = s.withForm(func(f *views.FormView) error { f.Cancel(); return nil })
	case "show":
		return s.app.Show()
	case "login":
		err = s.login(ctx, rest)
	case "logout":
		err = views.Logout(s.app.store, s.app, s.app)
	case "help":
		_, err = fmt.Fprintln(s.out, shellHelp)
		return err
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}

	if next := s.app.takePending(); next != "" {
		if openErr := s.app.Open(ctx, next); openErr != nil {
			return openErr
		}
		return err
	}
	// a failed list load keeps the previous page on screen
	if err == nil || isList(s.app.Current()) {
		if showErr := s.showAfter(cmd); showErr != nil {
			return showErr
		}
	}
	return err
}

// askYesNo prints question and reads one answer line from lines. Only y or yes accepts; a missing input declines.
func askYesNo(lines *bufio.Scanner, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	if lines == nil || !lines.Scan() {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(lines.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func deleteQuestion(noun string) string {
	return fmt.Sprintf("Are you sure you want to delete this %s?", strings.ToLower(noun))
}

func (s *Shell) showAfter(cmd string) error {
	switch cmd {
	case "search", "page", "reload", "delete", "set", "upload":
		return s.app.Show()
	}
	return nil
}

func (s *Shell) page(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return errors.New("usage: page <n> [limit]")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("page must be a number: %w", err)
	}
	limit := 0
	if len(fields) == 2 {
		if limit, err = strconv.Atoi(fields[1]); err != nil {
			return fmt.Errorf("limit must be a number: %w", err)
		}
		if limit == 0 {
			return errors.New("limit must be at least 1")
		}
	}
	return s.withList(func(l *views.ListView) error { return l.ChangePage(ctx, n, limit) })
}

func (s *Shell) set(args string) error {
	field, value, ok := strings.Cut(args, "=")
	if !ok {
		return errors.New("usage: set <field>=<value>")
	}
	return s.withForm(func(f *views.FormView) error {
		return f.Set(strings.TrimSpace(field), value)
	})
}

func (s *Shell) upload(ctx context.Context, args string) error {
	field, path, ok := strings.Cut(args, " ")
	if !ok {
		return errors.New("usage: upload <field> <file>")
	}
	return s.withForm(func(f *views.FormView) error {
		file, err := os.Open(strings.TrimSpace(path))
		if err != nil {
			return err
		}
		defer file.Close()
		return f.Upload(ctx, field, file.Name(), file)
	})
}

func (s *Shell) login(ctx context.Context, args string) error {
	identifier, password, ok := strings.Cut(args, " ")
	if !ok {
		return errors.New("usage: login <email or phone> <password>")
	}
	v := views.NewLoginView(s.app.api, s.app.store, s.app, s.app, s.app.Location())
	if screen, isLogin := s.app.Current().(*LoginScreen); isLogin {
		v = screen.View
	}
	_, err := v.Submit(ctx, identifier, strings.TrimSpace(password))
	return err
}

func (s *Shell) withList(fn func(*views.ListView) error) error {
	screen, ok := s.app.Current().(*ListScreen)
	if !ok {
		return errors.New("not on a list, open one first")
	}
	return fn(screen.View)
}

func (s *Shell) withForm(fn func(*views.FormView) error) error {
	screen, ok := s.app.Current().(*FormScreen)
	if !ok {
		return errors.New("not on a form, open one first")
	}
	return fn(screen.View)
}

func isList(screen Screen) bool {
	_, ok := screen.(*ListScreen)
	return ok
}
