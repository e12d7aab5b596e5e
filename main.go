package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lotas/tabwart/internal/applog"
	"github.com/lotas/tabwart/internal/config"
	"github.com/lotas/tabwart/internal/export"
	"github.com/lotas/tabwart/internal/registry"
	"github.com/lotas/tabwart/internal/server"
	"github.com/lotas/tabwart/internal/store"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "clear":
			runClear(os.Args[2:])
			return
		case "config":
			runConfigPath()
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	// Default: markdown view of the saved session.
	runExport(os.Args[1:])
}

// openRegistry loads config, opens the store and restores the saved
// session into a fresh registry.
func openRegistry(cfgPath, dbPath, windowKey string) (*registry.Registry, *store.Store, error) {
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
		dbPath = p
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}

	applog.Init(filepath.Dir(dbPath))

	reg := registry.New(cfg, st, st, server.NoContentFactory, windowKey)
	if err := reg.LoadSaved(); err != nil {
		st.Close()
		return nil, nil, err
	}
	return reg, st, nil
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 19192, "WebSocket port for the UI bridge")
	window := fs.String("window", "default", "Window/session identity key")
	cfgPath := fs.String("config", "", "Config file path")
	dbPath := fs.String("db", "", "Database file path")
	fs.Parse(args)

	reg, st, err := openRegistry(*cfgPath, *dbPath, *window)
	if err != nil {
		fatal(err)
	}
	defer st.Close()
	defer applog.Close()

	srv := server.New(*port, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Serving tab state on ws://127.0.0.1:%d (window %q)\n", *port, *window)
	if err := srv.ListenAndServe(ctx); err != nil {
		fatal(err)
	}

	// Durable write on the way out; the debounced writer may still be armed.
	if err := reg.PersistNow(); err != nil {
		applog.Error("main.persist", err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Export as JSON instead of markdown")
	out := fs.String("out", "", "Output file path (default: stdout)")
	window := fs.String("window", "default", "Window/session identity key")
	cfgPath := fs.String("config", "", "Config file path")
	dbPath := fs.String("db", "", "Database file path")
	fs.Parse(args)

	reg, st, err := openRegistry(*cfgPath, *dbPath, *window)
	if err != nil {
		fatal(err)
	}
	defer st.Close()
	defer applog.Close()

	view := viewOf(reg, *window)

	var content string
	if *asJSON {
		content, err = export.JSON(view)
		if err != nil {
			fatal(err)
		}
	} else {
		content = export.Markdown(view)
	}

	if *out == "" {
		fmt.Print(content)
		return
	}
	if err := os.WriteFile(*out, []byte(content), 0o644); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", *out)
}

func viewOf(reg *registry.Registry, window string) export.View {
	titles := map[string]string{}
	for id, g := range reg.Groups() {
		titles[id] = g.Title
	}
	for id, g := range reg.ArchivedGroups() {
		titles[id] = g.Title
	}
	return export.View{
		Window:     window,
		Tabs:       reg.Tabs(),
		Archived:   reg.Archived(),
		GroupTitle: titles,
		Now:        time.Now(),
	}
}

func runClear(args []string) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	window := fs.String("window", "default", "Window/session identity key")
	dbPath := fs.String("db", "", "Database file path")
	yes := fs.Bool("yes", false, "Skip confirmation")
	fs.Parse(args)

	if !*yes {
		fmt.Fprintf(os.Stderr, "Delete the saved session for window %q? [y/N] ", *window)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return
		}
	}

	path := *dbPath
	if path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			fatal(err)
		}
		path = p
	}
	st, err := store.Open(path)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	if err := st.Clear(*window); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Cleared saved session for window %q.\n", *window)
}

func runConfigPath() {
	p, err := config.DefaultPath()
	if err != nil {
		fatal(err)
	}
	fmt.Println(p)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printHelp() {
	fmt.Print(`tabwart — browser tab lifecycle engine

Usage:
  tabwart [export flags]                 Print the saved session (default)

  tabwart serve                          Run the engine + UI bridge
    --port <n>         WebSocket port (default: 19192)
    --window <key>     Window/session identity key (default: "default")
    --config <file>    Config file path
    --db <file>        Database file path

  tabwart export                         Export the saved session
    --json             Export as JSON instead of markdown
    --out <file>       Output file path (default: stdout)
    --window <key>     Window/session identity key
    --config / --db    As above

  tabwart clear [--window X] [--yes]     Delete a saved session
  tabwart config                         Print the config file path

Config (~/.config/tabwart/config.toml):
  retention = "7d" | "30d" | "forever"   Archive retention (default: 30d)
  close_incognito_on_exit = true|false
  save_debounce_ms = 100
  [group_names]                          rootID -> custom group name
  [match]                                URL group-match policy flags
`)
}
