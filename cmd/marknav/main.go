// Package main is the entry point for the marknav outline browser.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/marknav/internal/config"
	"github.com/dshills/marknav/internal/docwatch"
	"github.com/dshills/marknav/internal/editorview"
	"github.com/dshills/marknav/internal/host"
	"github.com/dshills/marknav/internal/listview"
	"github.com/dshills/marknav/internal/logging"
	"github.com/dshills/marknav/internal/panel"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	ConfigPath string
	LogLevel   string
	Debug      bool
}

func run() int {
	opts, path := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	log, logFile := newLogger(cfg, opts.Debug)
	if logFile != nil {
		defer logFile.Close()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", path, err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()

	app := newApp(screen, cfg, log, path, content)
	defer app.Close()

	watcher, err := docwatch.New(path, docwatch.DefaultDebounce, func(p string, content []byte) {
		app.Reload(content)
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}, log)
	if err != nil {
		log.Warn("file watching disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	// Handle signals for graceful shutdown.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		screen.PostEvent(tcell.NewEventError(errQuit))
	}()

	return app.Run()
}

var errQuit = fmt.Errorf("quit")

// app owns the terminal UI: the outline panel on the left, the document on
// the right.
type app struct {
	screen   tcell.Screen
	cfg      config.Config
	log      *logging.Logger
	view     *editorview.TextView
	panel    *panel.Panel
	renderer *listview.Renderer
	service  *host.Service
}

func newApp(screen tcell.Screen, cfg config.Config, log *logging.Logger, path string, content []byte) *app {
	_, rows := screen.Size()
	view := editorview.NewTextView(editorview.TextViewConfig{
		Height:     float64(rows),
		LineHeight: 1,
	})
	view.SetText(content)

	notes := host.NewNoteRegistry()
	noteID := notes.Register(filepath.Base(path))
	service := host.NewService(notes, screenClipboard{screen}, log)

	a := &app{
		screen:   screen,
		cfg:      cfg,
		log:      log,
		view:     view,
		renderer: listview.NewRenderer(),
		service:  service,
	}
	a.panel = panel.New(panel.Options{
		Config:     cfg,
		View:       view,
		NoteID:     noteID,
		SendToHost: service.Dispatch,
		Logger:     log,
	})
	return a
}

// Run drives the event loop until the user quits.
func (a *app) Run() int {
	for {
		a.draw()

		switch ev := a.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return 0
			}
			if ev.Key() == tcell.KeyCtrlY {
				a.panel.Gestures().CopyLink(a.selectedRow())
				continue
			}
			a.panel.Gestures().HandleKey(ev)
		case *tcell.EventResize:
			_, rows := a.screen.Size()
			a.view.SetHeight(float64(rows))
			a.screen.Sync()
		case *tcell.EventError:
			return 0
		case *tcell.EventInterrupt:
			// Document reload already applied; fall through to redraw.
		case nil:
			return 0
		}
	}
}

// Reload applies externally changed document content.
func (a *app) Reload(content []byte) {
	a.view.SetText(content)
	a.panel.SetDocument(content)
}

// Close tears down the panel.
func (a *app) Close() {
	a.panel.Close()
}

func (a *app) draw() {
	a.screen.Clear()
	cols, rows := a.screen.Size()

	panelCols := a.cfg.Panel.WidthPx / cellWidthPx
	if panelCols > cols/2 {
		panelCols = cols / 2
	}

	a.renderer.Draw(a.screen, 0, 0, panelCols, rows, a.panel.Navigator().FilterText(), a.panel.List())
	a.drawDocument(panelCols+1, 0, cols-panelCols-1, rows)
	a.screen.Show()
}

// cellWidthPx approximates one terminal cell for the pixel-based panel
// width configuration.
const cellWidthPx = 10

// drawDocument renders the visible slice of the document with the current
// selection highlighted.
func (a *app) drawDocument(x, y, width, height int) {
	if width <= 0 {
		return
	}

	lines := strings.Split(string(a.view.DocumentText()), "\n")
	top := int(a.view.ScrollTop())
	sel := a.view.Selection()

	offset := 0
	for i := 0; i < top && i < len(lines); i++ {
		offset += len(lines[i]) + 1
	}

	for row := 0; row < height; row++ {
		idx := top + row
		if idx >= len(lines) {
			break
		}
		style := tcell.StyleDefault
		if sel.To > sel.From && offset <= sel.From && sel.From < offset+len(lines[idx])+1 {
			style = tcell.StyleDefault.Bold(true).Underline(true)
		}
		col := 0
		for _, ch := range lines[idx] {
			if col >= width {
				break
			}
			a.screen.SetContent(x+col, y+row, ch, nil, style)
			col++
		}
		offset += len(lines[idx]) + 1
	}
}

// selectedRow locates the selected heading's row in the filtered list.
func (a *app) selectedRow() int {
	selected := a.panel.Navigator().SelectedID()
	for i, n := range a.panel.List().Nodes() {
		if n.Key == selected {
			return i
		}
	}
	return -1
}

// screenClipboard writes through the terminal's OSC 52 clipboard support.
type screenClipboard struct {
	screen tcell.Screen
}

func (c screenClipboard) Write(text string) error {
	c.screen.SetClipboard([]byte(text))
	return nil
}

func newLogger(cfg config.Config, debug bool) (*logging.Logger, *os.File) {
	if !debug {
		return logging.Null, nil
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	file, err := os.OpenFile("marknav.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return logging.New(logging.Config{Level: level, Output: os.Stderr, Prefix: "marknav"}), nil
	}
	return logging.New(logging.Config{Level: level, Output: file, Prefix: "marknav"}), file
}

func parseFlags() (options, string) {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", defaultConfigPath(), "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", defaultConfigPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Debug, "debug", false, "Write a debug log to marknav.log")
	flag.BoolVar(&opts.Debug, "d", false, "Write a debug log to marknav.log (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Marknav - markdown heading navigator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: marknav [options] <file.md>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  Up/Down     Move selection (previews the heading)\n")
		fmt.Fprintf(os.Stderr, "  Enter       Jump to the selected heading\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+Y      Copy a link to the selected heading\n")
		fmt.Fprintf(os.Stderr, "  Type        Filter headings; Backspace deletes\n")
		fmt.Fprintf(os.Stderr, "  Esc/Ctrl+C  Quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("Marknav %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	return opts, flag.Arg(0)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "marknav.toml"
	}
	return filepath.Join(home, ".config", "marknav", "config.toml")
}
