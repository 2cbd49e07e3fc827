package cli

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/contribsys/binheap"
	"github.com/contribsys/binheap/util"
	"github.com/pkg/errors"
)

type CmdOptions struct {
	ConfigFile  string
	LogLevel    string
	Debug       bool
	Prompt      string
	HistoryFile string

	// Heaps to create at startup, keyed by name.
	Heaps map[string]HeapConfig
}

// Config is the layout of the optional TOML file given with -c.
type Config struct {
	LogLevel    string                `toml:"log_level"`
	Prompt      string                `toml:"prompt"`
	HistoryFile string                `toml:"history_file"`
	Heaps       map[string]HeapConfig `toml:"heaps"`
}

type HeapConfig struct {
	Items []ItemConfig `toml:"items"`
}

type ItemConfig struct {
	Key     int    `toml:"key"`
	Payload string `toml:"payload"`
}

var (
	DefaultPrompt      = "> "
	DefaultHistoryFile = "~/.local/.binheap.history"
)

func defaultOptions() CmdOptions {
	return CmdOptions{
		LogLevel:    "warn",
		Prompt:      DefaultPrompt,
		HistoryFile: DefaultHistoryFile,
	}
}

/*
ParseArguments reads the command line, loads the config file if one was given
and returns the merged options. Flags win over the file. The remaining
arguments are left in flag.Args() for the caller.
*/
func ParseArguments() CmdOptions {
	log.SetFlags(0)

	opts, err := parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	return opts
}

func parse(fs *flag.FlagSet, args []string) (CmdOptions, error) {
	opts := defaultOptions()

	var logLevel string
	fs.Usage = func() { help(fs.Output()) }
	fs.StringVar(&opts.ConfigFile, "c", "", "Config file")
	fs.StringVar(&logLevel, "l", "", "Logging level (error, warn, info, debug)")
	fs.BoolVar(&opts.Debug, "debug", false, "Verify heap invariants after every command")
	helpPtr := fs.Bool("help", false, "You're looking at it")
	help2Ptr := fs.Bool("h", false, "You're looking at it")
	versionPtr := fs.Bool("v", false, "Show version")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if *helpPtr || *help2Ptr {
		help(fs.Output())
		os.Exit(0)
	}

	if *versionPtr {
		fmt.Fprintln(fs.Output(), binheap.Name, binheap.Version)
		os.Exit(0)
	}

	if opts.ConfigFile != "" {
		if err := LoadConfig(opts.ConfigFile, &opts); err != nil {
			return opts, err
		}
	}
	if logLevel != "" {
		opts.LogLevel = logLevel
	}
	opts.HistoryFile = util.ExpandHome(opts.HistoryFile)
	return opts, nil
}

/*
LoadConfig decodes the TOML file at path into opts. Only values present in the
file replace what opts already holds. Unknown keys are logged, not rejected.
*/
func LoadConfig(path string, opts *CmdOptions) error {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return errors.Wrapf(err, "unable to parse config %s", path)
	}
	for _, key := range md.Undecoded() {
		util.Warnf("Unknown config key %q in %s", key.String(), path)
	}

	if cfg.LogLevel != "" {
		opts.LogLevel = cfg.LogLevel
	}
	if cfg.Prompt != "" {
		opts.Prompt = cfg.Prompt
	}
	if cfg.HistoryFile != "" {
		opts.HistoryFile = cfg.HistoryFile
	}

	for name, heap := range cfg.Heaps {
		for _, item := range heap.Items {
			if item.Key <= 0 {
				return errors.Errorf("%s: heap %q has non positive key %d", path, name, item.Key)
			}
		}
	}
	opts.Heaps = cfg.Heaps
	return nil
}

func help(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [options] [command args...]\n", binheap.Name)
	fmt.Fprintln(w, "-c [file]\tTOML config file, preloads heaps")
	fmt.Fprintln(w, "-l [level]\tSet logging level (error, warn, info, debug), default: warn")
	fmt.Fprintln(w, "-debug\t\tVerify heap invariants after every command")
	fmt.Fprintln(w, "-v\t\tShow version")
	fmt.Fprintln(w, "-h\t\tThis help screen")
}
