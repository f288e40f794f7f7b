package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jdharms/jumpking-autosplitter/internal/config"
	"github.com/jdharms/jumpking-autosplitter/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultConfigName is used when no configuration exists yet
const DefaultConfigName = "default"

// CLI handles the command-line interface for the autosplitter
type CLI struct {
	logger       *logrus.Logger
	appConfig    *config.AppConfig
	configLoader *config.ConfigLoader
	scanner      *bufio.Scanner
}

// NewCLI creates a new CLI interface reading commands from stdin
func NewCLI(logger *logrus.Logger, appConfig *config.AppConfig, configLoader *config.ConfigLoader) *CLI {
	return newCLI(logger, appConfig, configLoader, os.Stdin)
}

func newCLI(logger *logrus.Logger, appConfig *config.AppConfig, configLoader *config.ConfigLoader, in io.Reader) *CLI {
	return &CLI{
		logger:       logger,
		appConfig:    appConfig,
		configLoader: configLoader,
		scanner:      bufio.NewScanner(in),
	}
}

// Start selects a configuration, starts every component and runs the
// interactive console until the user quits
func (c *CLI) Start(ctx context.Context, configName string) error {
	c.printHeader()

	name, doc, err := c.selectConfiguration(ctx, configName)
	if err != nil {
		return err
	}

	controller := NewEngineController(c.logger, c, c.appConfig, c.configLoader)
	if err := controller.Initialize(name, doc); err != nil {
		return fmt.Errorf("failed to initialize autosplitter: %w", err)
	}

	if err := controller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start autosplitter: %w", err)
	}
	defer controller.Stop()

	c.printInfo("Entering interactive mode...")
	c.printInfo("The autosplitter runs automatically; type 'h' for manual commands")

	if err := controller.RunInteractiveMode(ctx); err != nil {
		c.printWarning(fmt.Sprintf("Interactive mode ended: %v", err))
	}

	return nil
}

// selectConfiguration resolves the configuration to use and loads it.
// A missing configuration starts out empty and is created on first save.
func (c *CLI) selectConfiguration(ctx context.Context, configName string) (string, *config.Document, error) {
	c.printInfo("Discovering split configurations...")
	names, err := c.configLoader.DiscoverDocuments(ctx)
	if err != nil {
		return "", nil, err
	}
	c.printSuccess(fmt.Sprintf("Found %d configuration(s)", len(names)))

	var name string
	switch {
	case len(names) == 0:
		name = configName
		if name == "" {
			name = DefaultConfigName
		}
		c.printWarning(fmt.Sprintf("No configurations found - starting '%s' with an empty split list", name))
		return name, &config.Document{}, nil

	case configName != "":
		name, err = c.configLoader.FindByName(names, configName)
		if err != nil {
			c.printError(fmt.Sprintf("Configuration selection failed: %v", err))
			c.printInfo("Available configurations:")
			c.listConfigurations(names)
			return "", nil, err
		}

	default:
		name, err = c.selectConfigurationInteractive(names)
		if err != nil {
			return "", nil, fmt.Errorf("configuration selection failed: %w", err)
		}
	}

	doc, err := c.configLoader.LoadDocument(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		c.printWarning(fmt.Sprintf("Configuration '%s' disappeared - starting empty", name))
		return name, &config.Document{}, nil
	}
	if err != nil {
		return "", nil, err
	}

	c.printSuccess(fmt.Sprintf("Selected configuration: %s", name))
	return name, doc, nil
}

// selectConfigurationInteractive presents an interactive menu for
// configuration selection
func (c *CLI) selectConfigurationInteractive(names []string) (string, error) {
	c.printInfo("Available configurations:")
	c.listConfigurations(names)

	for {
		fmt.Print("\nSelect configuration (1-" + strconv.Itoa(len(names)) + ") or 'q' to quit: ")

		if !c.scanner.Scan() {
			return "", fmt.Errorf("failed to read input")
		}

		input := strings.TrimSpace(c.scanner.Text())

		if input == "q" || input == "quit" {
			return "", fmt.Errorf("user quit")
		}

		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(names) {
			c.printError(fmt.Sprintf("Invalid selection. Please enter a number between 1 and %d, or 'q' to quit.", len(names)))
			continue
		}

		return names[choice-1], nil
	}
}

// listConfigurations displays a numbered list of configurations
func (c *CLI) listConfigurations(names []string) {
	for i, name := range names {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
}

// printHeader displays the application header
func (c *CLI) printHeader() {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("┌─────────────────────────────────────────────────────────────┐")
	header.Println("│                  Jump King AutoSplitter                     │")
	header.Println("│               LiveSplit One + Jump King mod                 │")
	header.Println("└─────────────────────────────────────────────────────────────┘")
	fmt.Println()
}

// printInfo prints an informational message
func (c *CLI) printInfo(message string) {
	info := color.New(color.FgBlue)
	info.Printf("[INFO] %s\n", message)
}

// printSuccess prints a success message
func (c *CLI) printSuccess(message string) {
	success := color.New(color.FgGreen)
	success.Printf("[SUCCESS] %s\n", message)
}

// printError prints an error message
func (c *CLI) printError(message string) {
	errorColor := color.New(color.FgRed)
	errorColor.Printf("[ERROR] %s\n", message)
}

// printWarning prints a warning message
func (c *CLI) printWarning(message string) {
	warning := color.New(color.FgYellow)
	warning.Printf("[WARNING] %s\n", message)
}
