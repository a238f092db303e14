// Command gridterm runs a shell inside the emulator core and renders it
// with tcell. It is a demonstration harness for the library, not a
// finished terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/gridterm/gridterm"
	"github.com/gridterm/gridterm/config"
	"github.com/gridterm/gridterm/logger"
	"github.com/gridterm/gridterm/terminal"
	"github.com/gridterm/gridterm/terminal/color"
	"github.com/gridterm/gridterm/terminal/core"
	"github.com/gridterm/gridterm/terminal/grid"
	"github.com/gridterm/gridterm/terminal/selection"
	"github.com/gridterm/gridterm/terminal/tty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gridterm:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a JSON config file")
	command := flag.String("e", "", "command to run instead of the shell")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("stdin is not a terminal")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *command != "" {
		cfg.Shell = *command
		cfg.ShellArgs = nil
	}

	log := logger.DefaultLogger
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log = logger.New(logger.Options{
			Buffer: f,
			Level:  logger.InfoLevel,
			Type:   logger.TypeText,
		})
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	cols, rows := screen.Size()

	session, err := tty.Start(tty.Options{
		Command: cfg.Shell,
		Args:    cfg.ShellArgs,
		Cols:    uint16(cols),
		Rows:    uint16(rows),
		Logger:  log,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	emu := gridterm.New(gridterm.Options{
		Cols:   cols,
		Rows:   rows,
		Config: &cfg,
		Reply:  session,
		Logger: log,
	})

	app := &app{
		screen:  screen,
		session: session,
		emu:     emu,
		cfg:     cfg,
	}
	return app.loop()
}

type app struct {
	screen  tcell.Screen
	session *tty.Session
	emu     *gridterm.Core
	cfg     config.Config

	selecting bool
}

func (a *app) loop() error {
	// The PTY pump: output goes through the core, then the event loop
	// is poked to redraw. The interrupt event carries nil when the
	// child is still alive and a sentinel when it hung up.
	go func() {
		for chunk := range a.session.Output() {
			_ = a.emu.ProcessOutput(chunk)
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(childExited{}))
	}()

	a.draw()
	for {
		switch ev := a.screen.PollEvent().(type) {
		case *tcell.EventInterrupt:
			if _, exited := ev.Data().(childExited); exited {
				return a.session.Wait()
			}
			a.draw()

		case *tcell.EventResize:
			cols, rows := ev.Size()
			a.emu.Resize(cols, rows)
			if err := a.session.Resize(uint16(cols), uint16(rows)); err != nil {
				return err
			}
			a.screen.Sync()
			a.draw()

		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlQ {
				return nil
			}
			if b := a.encodeKey(ev); b != nil {
				if _, err := a.session.Write(b); err != nil {
					return err
				}
			}

		case *tcell.EventMouse:
			a.handleMouse(ev)
			a.draw()
		}
	}
}

type childExited struct{}

// encodeKey translates a tcell key event into the byte sequence the
// child expects.
func (a *app) encodeKey(ev *tcell.EventKey) []byte {
	appCursor := false
	a.emu.WithTerminal(func(t *terminal.Terminal) {
		appCursor = t.Modes.Get(core.ModeCursorKeys)
	})

	arrow := func(normal, application string) []byte {
		if appCursor {
			return []byte(application)
		}
		return []byte(normal)
	}

	switch ev.Key() {
	case tcell.KeyUp:
		return arrow("\x1b[A", "\x1bOA")
	case tcell.KeyDown:
		return arrow("\x1b[B", "\x1bOB")
	case tcell.KeyRight:
		return arrow("\x1b[C", "\x1bOC")
	case tcell.KeyLeft:
		return arrow("\x1b[D", "\x1bOD")
	case tcell.KeyHome:
		return []byte("\x1b[H")
	case tcell.KeyEnd:
		return []byte("\x1b[F")
	case tcell.KeyDelete:
		return []byte("\x1b[3~")
	case tcell.KeyPgUp:
		return []byte("\x1b[5~")
	case tcell.KeyPgDn:
		return []byte("\x1b[6~")
	case tcell.KeyEnter:
		return []byte("\r")
	case tcell.KeyTab:
		return []byte("\t")
	case tcell.KeyBacktab:
		return []byte("\x1b[Z")
	case tcell.KeyEsc:
		return []byte("\x1b")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	}

	if ev.Key() == tcell.KeyRune {
		return []byte(string(ev.Rune()))
	}
	// Remaining tcell keys in the C0 range (Ctrl combinations) map
	// straight to their byte value.
	if ev.Key() < 0x20 {
		return []byte{byte(ev.Key())}
	}
	return nil
}

func (a *app) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		a.emu.ScrollDisplay(a.cfg.ScrollMultiplier)
	case buttons&tcell.WheelDown != 0:
		a.emu.ScrollDisplay(-a.cfg.ScrollMultiplier)
	case buttons&tcell.Button1 != 0:
		p := a.emu.Snapshot().BufferPoint(x, y)
		if !a.selecting {
			a.selecting = true
			kind := selection.KindSimple
			if ev.Modifiers()&tcell.ModCtrl != 0 {
				kind = selection.KindSemantic
			}
			a.emu.StartSelection(kind, p)
		}
		a.emu.UpdateSelection(p)
	default:
		a.selecting = false
	}
}

func (a *app) draw() {
	frame := a.emu.Snapshot()

	frame.Each(func(x, y int, cell grid.Cell) {
		if cell.Flags.Has(grid.FlagWideCharSpacer) ||
			cell.Flags.Has(grid.FlagLeadingWideCharSpacer) {
			return
		}
		style := a.cellStyle(frame, cell)
		if frame.Selected(x, y) {
			style = style.Reverse(true)
		}
		r := cell.Rune
		if r == 0 {
			r = ' '
		}
		a.screen.SetContent(x, y, r, cell.Zerowidth(), style)
	})

	if frame.CursorVisible && frame.DisplayOffset == 0 {
		a.screen.ShowCursor(int(frame.Cursor.X), int(frame.Cursor.Y))
	} else {
		a.screen.HideCursor()
	}
	a.screen.SetTitle(frame.Title)
	a.screen.Show()
}

func (a *app) cellStyle(frame *gridterm.Frame, cell grid.Cell) tcell.Style {
	toTcell := func(c color.Color) tcell.Color {
		rgb := frame.Palette.Resolve(c)
		return tcell.NewRGBColor(int32(rgb.R), int32(rgb.G), int32(rgb.B))
	}

	style := tcell.StyleDefault.
		Foreground(toTcell(cell.FG)).
		Background(toTcell(cell.BG))
	style = style.Bold(cell.Flags.Has(grid.FlagBold))
	style = style.Dim(cell.Flags.Has(grid.FlagDim))
	style = style.Italic(cell.Flags.Has(grid.FlagItalic))
	style = style.Underline(cell.Flags.Has(grid.FlagUnderline))
	style = style.Reverse(cell.Flags.Has(grid.FlagInverse))
	style = style.StrikeThrough(cell.Flags.Has(grid.FlagStrikeout))
	if link := cell.Hyperlink(); link != nil {
		style = style.Url(link.URI)
	}
	return style
}
