package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"sysmon/internal/collector"
	"sysmon/internal/config"
	"sysmon/internal/display"
	"sysmon/internal/export"
	"sysmon/internal/handler"
	"sysmon/internal/manager"
	"sysmon/internal/scheduler"
)

const defaultConfigFile = "config.yaml"

type Mode int

const (
	ModeWatch Mode = iota
	ModeShow
	ModeExport
	ModeServe
	ModeHelp
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help") {
		printHelp()
		return
	}

	var (
		configFile string
		listenAddr string
		interval   float64
		outPath    string
	)

	flagSet := flag.NewFlagSet("sysmon", flag.ExitOnError)
	flagSet.StringVar(&configFile, "config", defaultConfigFile, "Path to config file")
	flagSet.StringVar(&listenAddr, "listen", "", "Listen address for serve mode")
	flagSet.Float64Var(&interval, "interval", 0, "Auto-refresh interval in seconds")
	flagSet.StringVar(&outPath, "out", "", "Output path for export mode")

	mode, args := parseArgs(os.Args[1:])
	flagSet.Parse(args)

	zapLog, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	logger := zapr.NewLogger(zapLog)

	cfg, err := config.Load(configFile)
	if err != nil {
		logger.Error(err, "failed to load config", "path", configFile)
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.ListenAddress = listenAddr
	}
	if interval > 0 {
		cfg.RefreshInterval = interval
	}
	if outPath != "" {
		cfg.ExportPath = outPath
	}

	col := collector.New(logger, cfg.CPUSampleDuration())
	mgr := manager.New(col, logger)

	switch mode {
	case ModeWatch:
		runWatch(cfg, mgr, logger)
	case ModeShow:
		runShow(cfg, mgr, logger)
	case ModeExport:
		runExport(cfg, mgr, logger)
	case ModeServe:
		runServe(cfg, mgr, logger)
	case ModeHelp:
		printHelp()
	}
}

func parseArgs(args []string) (Mode, []string) {
	if len(args) == 0 {
		return ModeWatch, args
	}

	switch args[0] {
	case "watch":
		return ModeWatch, args[1:]
	case "show":
		return ModeShow, args[1:]
	case "export":
		return ModeExport, args[1:]
	case "serve":
		return ModeServe, args[1:]
	}

	if isFlag(args[0]) {
		return ModeWatch, args
	}

	fmt.Fprintf(os.Stderr, "unknown mode %q\n\n", args[0])
	printHelp()
	os.Exit(2)
	return ModeHelp, nil
}

func isFlag(arg string) bool {
	return len(arg) > 0 && arg[0] == '-'
}

// runShow performs one collection cycle and prints it.
func runShow(cfg *config.Config, mgr *manager.Manager, logger logr.Logger) {
	snap, err := mgr.Collect(context.Background())
	if err != nil {
		logger.Error(err, "collection failed")
		os.Exit(1)
	}
	fmt.Print(display.New(cfg.TopProcesses).Render(snap))
}

// runExport performs one collection cycle and writes it to a JSON file. A
// failed cycle still produces a document recording the failure.
func runExport(cfg *config.Config, mgr *manager.Manager, logger logr.Logger) {
	snap, err := mgr.Collect(context.Background())
	if err != nil {
		if werr := export.WriteFailure(cfg.ExportPath, err); werr != nil {
			logger.Error(werr, "failed to write failure document")
		}
		logger.Error(err, "collection failed", "path", cfg.ExportPath)
		os.Exit(1)
	}
	if err := export.Write(cfg.ExportPath, snap); err != nil {
		logger.Error(err, "failed to write snapshot")
		os.Exit(1)
	}
	fmt.Printf("System data has been collected and saved to %s\n", cfg.ExportPath)
}

// runServe publishes snapshots over HTTP until interrupted.
func runServe(cfg *config.Config, mgr *manager.Manager, logger logr.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(mgr, cfg.RefreshDuration(), logger)
	h := handler.New(sched, logger)
	go sched.Run(ctx)

	server := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: h.Routes(),
	}

	go func() {
		logger.Info("starting server", "address", cfg.ListenAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(err, "server failed")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")
	if err := server.Close(); err != nil {
		logger.Error(err, "error during shutdown")
	}
}

// runWatch drives the live console view. Line commands on stdin mirror the
// refresh controls: r triggers a refresh, t toggles auto-refresh, q quits.
func runWatch(cfg *config.Config, mgr *manager.Manager, logger logr.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderer := display.New(cfg.TopProcesses)
	sched := scheduler.New(mgr, cfg.RefreshDuration(), logger)
	sched.Subscribe(func(res scheduler.Result) {
		fmt.Print(renderer.RenderLive(sched.LastSnapshot(), res.Err, sched.AutoRefreshEnabled()))
	})
	go sched.Run(ctx)

	lines := readCommands(ctx, os.Stdin)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				<-ctx.Done()
				return
			}
			switch line {
			case "q", "quit":
				return
			case "r":
				sched.TriggerRefresh()
			case "t":
				sched.ToggleAutoRefresh()
				res, _ := sched.LastResult()
				fmt.Print(renderer.RenderLive(sched.LastSnapshot(), res.Err, sched.AutoRefreshEnabled()))
			}
		}
	}
}

// readCommands feeds trimmed lines from r into the returned channel until
// the input ends or ctx is cancelled. The ctx escape keeps the reader
// goroutine from hanging on a send after the watch loop has quit; the
// channel is closed when the goroutine exits.
func readCommands(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func printHelp() {
	fmt.Println(`sysmon - Live host telemetry snapshots

USAGE:
    sysmon [MODE] [OPTIONS]

MODES:
    watch (default)
        Live console view, refreshed on a fixed interval.
        Line commands: r=refresh now, t=toggle auto-refresh, q=quit

    show
        Collect one snapshot and print it

    export
        Collect one snapshot and write it to a JSON file

    serve
        Serve snapshots over HTTP:
          GET  /             latest snapshot (JSON)
          GET  /status       scheduler state
          POST /refresh      trigger a manual refresh
          POST /autorefresh  toggle auto-refresh
          GET  /ws           websocket stream of new snapshots

OPTIONS:
    -config string
        Path to config file (default: config.yaml)

    -interval float
        Auto-refresh interval in seconds (default: 5)

    -listen string
        Listen address for serve mode (default: :8077)

    -out string
        Output path for export mode (default: system_data.json)

EXAMPLES:
    sysmon
    sysmon show
    sysmon export -out /tmp/host.json
    sysmon serve -listen :9000 -interval 10`)
}
