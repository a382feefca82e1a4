package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rgehrsitz/tanda/internal/calculation"
	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/rgehrsitz/tanda/internal/tui"
)

const debugLogFile = "tanda-tui.log"

// newEngine logs to a file when TANDA_DEBUG is set since the terminal belongs to the TUI
func newEngine(settings config.Settings) (*calculation.CalculationEngine, func(), error) {
	engine := calculation.NewCalculationEngine()
	if !settings.Debug {
		return engine, func() {}, nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{debugLogFile}
	cfg.ErrorOutputPaths = []string{debugLogFile}
	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	sugar := logger.Named("tui").Sugar()
	engine.SetLogger(sugar)
	engine.Debug = true
	return engine, func() { _ = sugar.Sync() }, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tanda-tui <config-file>")
		os.Exit(1)
	}
	configPath := os.Args[1]

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Error: Config file not found: %s\n", configPath)
		os.Exit(1)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	engine, flush, err := newEngine(settings)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	p := tea.NewProgram(tui.NewModel(configPath, engine), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		flush()
		os.Exit(1)
	}
}
