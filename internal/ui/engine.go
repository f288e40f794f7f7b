// internal/ui/engine.go
package ui

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/jdharms/jumpking-autosplitter/internal/adapter"
	"github.com/jdharms/jumpking-autosplitter/internal/config"
	"github.com/jdharms/jumpking-autosplitter/internal/engine"
	"github.com/jdharms/jumpking-autosplitter/internal/health"
	"github.com/jdharms/jumpking-autosplitter/internal/livesplit"
	"github.com/jdharms/jumpking-autosplitter/internal/split"
	"github.com/sirupsen/logrus"
)

var errQuit = errors.New("quit")

// EngineController wires the splitting engine to the game adapter, the
// LiveSplit One server and the health server, and provides UI feedback
type EngineController struct {
	logger       *logrus.Logger
	cli          *CLI
	appConfig    *config.AppConfig
	configLoader *config.ConfigLoader

	configName      string
	engine          *engine.SplittingEngine
	timer           *livesplit.Timer
	liveSplitServer *livesplit.Server
	adapter         *adapter.Adapter
	health          *health.Server
	cancel          context.CancelFunc
}

// NewEngineController creates a new engine controller
func NewEngineController(logger *logrus.Logger, cli *CLI, appConfig *config.AppConfig, configLoader *config.ConfigLoader) *EngineController {
	return &EngineController{
		logger:       logger,
		cli:          cli,
		appConfig:    appConfig,
		configLoader: configLoader,
	}
}

// Initialize creates every component and loads the configuration document
func (ec *EngineController) Initialize(configName string, doc *config.Document) error {
	ec.cli.printInfo("Initializing splitting engine...")
	ec.configName = configName

	ec.liveSplitServer = livesplit.NewServer(ec.logger, ec.appConfig.LiveSplitHost, ec.appConfig.LiveSplitPort)
	ec.timer = livesplit.NewTimer(ec.liveSplitServer, ec.appConfig.Segments, func() {
		ec.engine.ResetProgress()
	})
	ec.engine = engine.NewSplittingEngine(ec.logger, ec.timer, engine.DefaultEngineConfig())

	ec.adapter = adapter.NewAdapter(ec.logger, adapter.DefaultConfig(ec.appConfig.AdapterURL), ec.engine.HandleEvent)
	ec.health = health.NewServer(ec.logger)
	ec.adapter.OnStateChange(ec.health.AdapterStateListener())
	ec.adapter.OnStateChange(ec.handleAdapterState)

	ec.loadDocument(doc)

	ec.cli.printSuccess("Splitting engine initialized")
	return nil
}

// Start starts the servers and connects to the game
func (ec *EngineController) Start(ctx context.Context) error {
	if ec.engine == nil {
		return fmt.Errorf("engine not initialized")
	}

	ctx, ec.cancel = context.WithCancel(ctx)

	ec.cli.printInfo("Starting LiveSplit server...")
	if err := ec.liveSplitServer.Start(ctx); err != nil {
		ec.logger.WithError(err).Error("Failed to start LiveSplit server")
		// Continue even if LiveSplit server fails to start
		ec.cli.printError(fmt.Sprintf("LiveSplit server failed: %v", err))
	} else {
		ec.cli.printSuccess(fmt.Sprintf("LiveSplit server listening on %s:%d", ec.appConfig.LiveSplitHost, ec.appConfig.LiveSplitPort))
	}

	if ec.appConfig.HealthAddr != "" {
		if err := ec.health.Listen(ec.appConfig.HealthAddr); err != nil {
			ec.logger.WithError(err).Error("Failed to start health server")
			ec.cli.printWarning(fmt.Sprintf("Health server failed: %v", err))
		}
	}

	go ec.monitorEngineEvents(ctx)

	ec.cli.printInfo(fmt.Sprintf("Connecting to game at %s...", ec.appConfig.AdapterURL))
	ec.adapter.Start(ctx)

	ec.displayEngineStatus()
	return nil
}

// Stop shuts every component down
func (ec *EngineController) Stop() {
	if ec.engine == nil {
		return
	}

	ec.cli.printInfo("Stopping autosplitter...")

	ec.adapter.Shutdown()

	if err := ec.liveSplitServer.Stop(context.Background()); err != nil {
		ec.logger.WithError(err).Error("Failed to stop LiveSplit server")
	}

	ec.health.Stop()
	ec.engine.Close()
	if ec.cancel != nil {
		ec.cancel()
	}

	ec.cli.printSuccess("Autosplitter stopped")
}

// RunInteractiveMode runs the interactive engine control mode
func (ec *EngineController) RunInteractiveMode(ctx context.Context) error {
	if ec.engine == nil {
		return fmt.Errorf("engine not initialized")
	}

	ec.displayCommands()

	// Read input separately so a cancelled context ends the session
	lines := make(chan string)
	go func() {
		defer close(lines)
		for ec.cli.scanner.Scan() {
			select {
			case lines <- ec.cli.scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Print("\nCommand (h for help): ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		if err := ec.handleCommand(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			ec.cli.printError(fmt.Sprintf("Command error: %v", err))
		}
	}
}

// handleCommand processes interactive commands
func (ec *EngineController) handleCommand(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	command, args := fields[0], fields[1:]

	switch command {
	case "h", "help":
		ec.displayCommands()
	case "s", "status":
		ec.displayEngineStatus()
	case "l", "splits":
		ec.displaySplits()
	case "hash":
		ec.cli.printInfo(fmt.Sprintf("Configuration hash: %d", ec.engine.Fingerprint()))
	case "split":
		return ec.engine.ManualSplit()
	case "skip":
		return ec.engine.ManualSkipSplit()
	case "undo":
		return ec.engine.ManualUndoSplit()
	case "reset":
		if err := ec.engine.ManualReset(); err != nil {
			return err
		}
		ec.cli.printSuccess("Run reset")
	case "toggle":
		return ec.handleToggle(args)
	case "add":
		return ec.handleAdd(args)
	case "clear":
		ec.engine.Clear()
		ec.syncSegments()
		ec.cli.printSuccess("Split list cleared")
	case "save":
		return ec.handleSave(ctx)
	case "reload":
		return ec.handleReload(ctx)
	case "reconnect":
		ec.adapter.ForceReconnect(ctx)
	case "stats":
		ec.displayDetailedStats()
	case "q", "quit":
		return errQuit
	default:
		ec.cli.printError(fmt.Sprintf("Unknown command: %s (type 'h' for help)", command))
	}
	return nil
}

// displayCommands shows available interactive commands
func (ec *EngineController) displayCommands() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  h, help                 - Show this help")
	fmt.Println("  s, status               - Show current status")
	fmt.Println("  l, splits               - List configured splits")
	fmt.Println("  hash                    - Show the configuration hash")
	fmt.Println("  split / skip / undo     - Manually control the current segment")
	fmt.Println("  reset                   - Reset the run")
	fmt.Println("  toggle <name> [on|off]  - Change AutoStartTimer, AutoResetTimer or UndoSplit")
	fmt.Println("  add <type> [key=value]  - Append a split, e.g. 'add Screen screen=12 name=Midnight'")
	fmt.Println("  clear                   - Remove every split")
	fmt.Println("  save / reload           - Save or reload the configuration")
	fmt.Println("  reconnect               - Reconnect to the game")
	fmt.Println("  stats                   - Show detailed statistics")
	fmt.Println("  q, quit                 - Exit")
}

func (ec *EngineController) handleToggle(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: toggle <name> [on|off]")
	}

	name, err := resolveToggle(args[0])
	if err != nil {
		return err
	}

	settings := ec.engine.Settings()
	current, err := settings.Get(name)
	if err != nil {
		return err
	}
	value := !current
	if len(args) == 2 {
		if value, err = parseOnOff(args[1]); err != nil {
			return err
		}
	}

	if err := ec.engine.SetToggle(name, value); err != nil {
		return err
	}
	ec.cli.printSuccess(fmt.Sprintf("%s = %v", name, value))
	return nil
}

func (ec *EngineController) handleAdd(args []string) error {
	node, err := parseSplitArgs(args)
	if err != nil {
		return err
	}
	condition, err := split.Parse(node)
	if err != nil {
		return err
	}

	ec.engine.AddSplits(condition)
	ec.syncSegments()
	ec.cli.printSuccess(fmt.Sprintf("Added split: %s", condition.Name()))
	return nil
}

func (ec *EngineController) handleSave(ctx context.Context) error {
	doc := ec.engine.Document()
	if err := ec.configLoader.SaveDocument(ctx, ec.configName, doc); err != nil {
		return err
	}
	ec.cli.printSuccess(fmt.Sprintf("Saved configuration '%s' (hash %d)", ec.configName, *doc.Hash))
	return nil
}

func (ec *EngineController) handleReload(ctx context.Context) error {
	doc, err := ec.configLoader.LoadDocument(ctx, ec.configName)
	if err != nil {
		return err
	}
	ec.loadDocument(doc)
	return nil
}

// loadDocument sizes the timer for the document and hands it to the engine
func (ec *EngineController) loadDocument(doc *config.Document) {
	if ec.appConfig.Segments == 0 {
		var list split.List
		list.Load(nil, doc.Splits)
		ec.timer.SetSegmentCount(list.Len())
	}

	report := ec.engine.LoadDocument(doc)
	ec.cli.printSuccess(fmt.Sprintf("Loaded '%s': %d splits", ec.configName, report.Loaded))
	if report.Skipped > 0 {
		ec.cli.printWarning(fmt.Sprintf("%d malformed split(s) were skipped", report.Skipped))
	}
	if report.HashMismatch {
		ec.cli.printWarning(fmt.Sprintf("Stored hash %d does not match computed hash %d", report.StoredHash, report.Fingerprint))
	}
	if report.SegmentMismatch {
		ec.cli.printWarning(fmt.Sprintf("%d splits but the timer has %d segments", report.Loaded, ec.timer.SegmentCount()))
	}
}

// syncSegments keeps the timer's segment count equal to the split count
// unless it was configured explicitly
func (ec *EngineController) syncSegments() {
	if ec.appConfig.Segments == 0 {
		ec.timer.SetSegmentCount(len(ec.engine.Splits()))
	}
}

// displayEngineStatus shows the current engine status
func (ec *EngineController) displayEngineStatus() {
	stats := ec.engine.GetStats()
	settings := ec.engine.Settings()

	fmt.Println("\n" + strings.Repeat("─", 60))
	fmt.Printf("Configuration: %s (hash %d)\n", ec.configName, stats.Fingerprint)
	fmt.Printf("Game: %s\n", ec.adapter.State())
	fmt.Printf("Timer: %s, segment %d/%d\n", ec.timer.Phase(), stats.CurrentIndex+1, stats.SegmentCount)
	if stats.CurrentSplitName != "" {
		fmt.Printf("Current Split: %s\n", stats.CurrentSplitName)
	}
	fmt.Printf("AutoStartTimer: %v  AutoResetTimer: %v  UndoSplit: %v\n",
		settings.AutoStartTimer, settings.AutoResetTimer, settings.UndoSplit)
	if stats.UndoPending {
		fmt.Printf("Undo pending for segment %d\n", stats.UndoIndex+1)
	}
	fmt.Println(strings.Repeat("─", 60))
}

// displaySplits lists the configured splits
func (ec *EngineController) displaySplits() {
	splits := ec.engine.Splits()
	if len(splits) == 0 {
		ec.cli.printInfo("No splits configured")
		return
	}
	for _, s := range splits {
		marker := " "
		if s.Current {
			marker = ">"
		}
		fmt.Printf(" %s %2d. %-30s %s\n", marker, s.Index+1, s.Name, s.Kind)
	}
}

// displayDetailedStats shows detailed statistics
func (ec *EngineController) displayDetailedStats() {
	stats := ec.engine.GetStats()
	adapterStats := ec.adapter.GetStats()
	serverStats := ec.liveSplitServer.GetStats()

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("DETAILED STATISTICS")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("Engine:\n")
	fmt.Printf("  Splits: %d\n", stats.TotalSplits)
	fmt.Printf("  Evaluation cycles: %d\n", stats.Cycles)
	if !stats.LastEvent.IsZero() {
		fmt.Printf("  Last game event: %s\n", stats.LastEvent.Format("15:04:05.000"))
	}

	fmt.Printf("\nGame Connection:\n")
	fmt.Printf("  State: %s\n", adapterStats.State)
	if adapterStats.ConnectionID != "" {
		fmt.Printf("  Connection: %s\n", adapterStats.ConnectionID)
	}
	fmt.Printf("  Connections: %d\n", adapterStats.Connections)
	fmt.Printf("  Frames: %d received, %d dropped\n", adapterStats.FramesReceived, adapterStats.FramesDropped)

	fmt.Printf("\nLiveSplit One:\n")
	fmt.Printf("  Address: %s\n", serverStats.Address)
	fmt.Printf("  Clients: %d (%d total)\n", serverStats.ClientCount, serverStats.TotalConnections)
	fmt.Printf("  Messages: %d sent, %d received\n", serverStats.MessagesSent, serverStats.MessagesReceived)

	fmt.Println(strings.Repeat("=", 60))
}

// monitorEngineEvents monitors engine events and provides UI feedback
func (ec *EngineController) monitorEngineEvents(ctx context.Context) {
	splitChan := ec.engine.RegisterSplitChannel(ctx)

	for event := range splitChan {
		ec.handleSplitEvent(event)
	}
}

// handleSplitEvent handles split events from the engine
func (ec *EngineController) handleSplitEvent(event engine.SplitEvent) {
	switch event.Action {
	case engine.SplitActionSplit:
		ec.cli.printSuccess(fmt.Sprintf("SPLIT: %s (Split %d)", event.SplitName, event.SplitIndex+1))
	case engine.SplitActionSkip:
		ec.cli.printWarning(fmt.Sprintf("SKIP: %s (Split %d)", event.SplitName, event.SplitIndex+1))
	case engine.SplitActionUndo:
		ec.cli.printInfo(fmt.Sprintf("UNDO: back to %s (Split %d)", event.SplitName, event.SplitIndex+1))
	default:
		ec.cli.printInfo(fmt.Sprintf("%s: %s (Split %d)", event.Action.String(), event.SplitName, event.SplitIndex+1))
	}
}

// handleAdapterState reports game connection changes
func (ec *EngineController) handleAdapterState(state adapter.State) {
	switch state {
	case adapter.StateConnected:
		ec.cli.printSuccess("Connected to game")
	case adapter.StateConnecting:
		ec.cli.printInfo("Waiting for game...")
	}
}

// resolveToggle matches a toggle name case-insensitively
func resolveToggle(name string) (string, error) {
	for _, toggle := range config.Toggles {
		if strings.EqualFold(toggle, name) {
			return toggle, nil
		}
	}
	return "", fmt.Errorf("unknown setting '%s' (want one of %s)", name, strings.Join(config.Toggles, ", "))
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value '%s' (want on or off)", s)
	}
}

// parseSplitArgs builds a split node from console arguments of the form
// <type> [key=value ...]
func parseSplitArgs(args []string) (split.Node, error) {
	if len(args) == 0 {
		return split.Node{}, fmt.Errorf("usage: add <type> [key=value ...]")
	}

	node := split.Node{Type: args[0]}
	for _, kind := range split.Kinds {
		if strings.EqualFold(string(kind), args[0]) {
			node.Type = string(kind)
		}
	}

	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return split.Node{}, fmt.Errorf("invalid argument '%s' (want key=value)", arg)
		}
		if key == "name" {
			node.Name = value
			continue
		}
		node.Attrs = append(node.Attrs, xml.Attr{Name: xml.Name{Local: key}, Value: value})
	}
	return node, nil
}
