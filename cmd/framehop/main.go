package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidyasagar/framehop/internal/app"
	"github.com/vidyasagar/framehop/internal/document"
	"github.com/vidyasagar/framehop/internal/logging"
	"github.com/vidyasagar/framehop/internal/storage"
	"github.com/vidyasagar/framehop/internal/theme"
)

var (
	version = "0.1.0"
)

func main() {
	var (
		docPath     string
		themeName   string
		policy      string
		store       string
		capacity    int
		reset       bool
		showVersion bool
	)

	flag.StringVar(&docPath, "document", "", "host document to open (YAML); defaults to the bundled sample")
	flag.StringVar(&themeName, "theme", "", "first-run panel theme (dark, light)")
	flag.StringVar(&policy, "policy", "", "revisit policy (append, move-to-front)")
	flag.StringVar(&store, "store", "", "state store (sqlite, file)")
	flag.IntVar(&capacity, "capacity", 0, "first-run history size (4, 8, 16, 20)")
	flag.BoolVar(&reset, "reset", false, "wipe saved history, favorites and settings before starting")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "framehop - back/forward history and favorites for design documents\n\n")
		fmt.Fprintf(os.Stderr, "Usage: framehop [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  framehop                             # browse the bundled sample\n")
		fmt.Fprintf(os.Stderr, "  framehop -document design.yaml       # open a document outline\n")
		fmt.Fprintf(os.Stderr, "  framehop -policy move-to-front       # revisits jump to the newest slot\n")
		fmt.Fprintf(os.Stderr, "  FRAMEHOP_STORE=file framehop         # keep state in state.json\n")
		fmt.Fprintf(os.Stderr, "  framehop -reset                      # start over with no saved state\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("framehop %s\n", version)
		os.Exit(0)
	}

	cfg, err := storage.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file and environment.
	if docPath != "" {
		cfg.Document = docPath
	}
	if themeName != "" {
		cfg.Theme = themeName
	}
	if policy != "" {
		cfg.DedupPolicy = policy
	}
	if store != "" {
		cfg.Store = store
	}
	if capacity != 0 {
		cfg.HistoryCapacity = capacity
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", cfg.Path(), err)
		os.Exit(1)
	}

	dataDir, err := storage.DataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(dataDir, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		// Logging is best-effort.
		logger = logging.Discard()
	}
	defer logCloser.Close()

	stateStore, closeStore, err := cfg.OpenStateStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening %s store: %v\n", cfg.Store, err)
		os.Exit(1)
	}
	defer closeStore()

	if reset {
		removed, err := stateStore.Reset()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: resetting %s: %v\n", stateStore.Path(), err)
			os.Exit(1)
		}
		logger.Info("saved state reset", "path", stateStore.Path(), "removed", removed)
	}

	doc := document.Sample()
	if cfg.Document != "" {
		doc, err = document.Load(cfg.Document)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	settings := cfg.Settings()
	theme.Set(settings.Theme)
	logger.Info("framehop starting",
		"version", version,
		"document", doc.Name,
		"store", cfg.Store,
		"state", stateStore.Path(),
		"policy", cfg.Policy().String(),
	)

	m := app.New(app.Options{
		Document: doc,
		Store:    stateStore,
		Policy:   cfg.Policy(),
		Defaults: settings,
		Logger:   logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
