// Sentinel is a commitment-gate turn engine for convoy campaigns.
// Usage: sentinel [--version] [--plain] [--script <file>] [--trace]
//
//	[--cascade <file>] [--turn-log <file>] [--autosave <file>] <campaign_directory>
package main

import (
	"fmt"
	"os"

	"github.com/KvFxKaido/SENTINEL-sub001/cli"
	"github.com/KvFxKaido/SENTINEL-sub001/engine"
	"github.com/KvFxKaido/SENTINEL-sub001/engine/cascade"
	"github.com/KvFxKaido/SENTINEL-sub001/engine/travel"
	"github.com/KvFxKaido/SENTINEL-sub001/loader"
	"github.com/KvFxKaido/SENTINEL-sub001/persist"
	"github.com/KvFxKaido/SENTINEL-sub001/tui"
	"github.com/KvFxKaido/SENTINEL-sub001/types"
	"github.com/KvFxKaido/SENTINEL-sub001/validate"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	trace := false
	var campaignDir string
	var scriptFile string
	var cascadeFile string
	var turnLogFile string
	var autosaveFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("sentinel %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			scriptFile = flagValue(args, &i, "--script")
		case "--cascade":
			cascadeFile = flagValue(args, &i, "--cascade")
		case "--turn-log":
			turnLogFile = flagValue(args, &i, "--turn-log")
		case "--autosave":
			autosaveFile = flagValue(args, &i, "--autosave")
		default:
			if campaignDir == "" {
				campaignDir = args[i]
			}
		}
	}

	if campaignDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: sentinel [--version] [--plain] [--script <file>] [--trace] [--cascade <file>] [--turn-log <file>] [--autosave <file>] <campaign_directory>\n")
		os.Exit(1)
	}

	// Load and compile Lua campaign content.
	w, err := loader.Load(campaignDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading campaign: %v\n", err)
		os.Exit(1)
	}

	cascadeCfg := cascade.DefaultConfig()
	if cascadeFile != "" {
		cascadeCfg, err = cascade.LoadConfig(cascadeFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading cascade tuning: %v\n", err)
			os.Exit(1)
		}
	}

	cfg := engine.Config{
		Validator: validate.Travel{},
		Cascade:   cascadeCfg,
	}
	if autosaveFile != "" {
		cfg.Persist = persist.FileHook(autosaveFile, func(err error) {
			fmt.Fprintf(os.Stderr, "Autosave failed: %v\n", err)
		})
	}

	eng := engine.New(w, cfg)
	eng.Register(types.ActionTravel, travel.Resolve)

	var turnLog *persist.TurnLog
	if turnLogFile != "" {
		turnLog, err = persist.OpenTurnLog(turnLogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening turn log: %v\n", err)
			os.Exit(1)
		}
		defer turnLog.Close()
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		fmt.Printf("%s — session %d\n\n", w.CampaignName, w.SessionNumber)
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.TurnLog = turnLog
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Printf("%s — session %d\n\n", w.CampaignName, w.SessionNumber)
		c := cli.New(eng)
		c.Trace = trace
		c.TurnLog = turnLog
		c.Run()
		return
	}

	if err := tui.Run(eng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func flagValue(args []string, i *int, name string) string {
	if *i+1 >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a file path\n", name)
		os.Exit(1)
	}
	*i++
	return args[*i]
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
