package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/contribsys/binheap"
	"github.com/contribsys/binheap/cli"
	"github.com/contribsys/binheap/util"
)

// Without arguments binheap starts an interactive shell. Otherwise the
// arguments are run as commands, separated by ";", and binheap exits.
func main() {
	opts := cli.ParseArguments()
	args := flag.Args()

	util.InitLogger(opts.LogLevel)

	s := newSession(os.Stdout, opts.Debug)
	if err := s.preload(opts.Heaps); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}

	if len(args) == 0 {
		repl(opts, s)
		return
	}

	if err := runBatch(s, args); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

// runBatch executes the ";" separated commands in args and stops at the first
// failure.
func runBatch(s *session, args []string) error {
	for _, cmd := range splitCommands(args) {
		err := s.execute(cmd)
		if err == errQuit {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func splitCommands(args []string) [][]string {
	var cmds [][]string
	var cur []string
	for _, arg := range args {
		for i, part := range strings.Split(arg, ";") {
			if i > 0 {
				cmds = append(cmds, cur)
				cur = nil
			}
			cur = append(cur, strings.Fields(part)...)
		}
	}
	return append(cmds, cur)
}

func repl(opts cli.CmdOptions, s *session) {
	fmt.Printf("%s %s, type help for commands\n", binheap.Name, binheap.Version)

	var completer = readline.NewPrefixCompleter(
		readline.PcItem("insert"),
		readline.PcItem("min"),
		readline.PcItem("pop"),
		readline.PcItem("decrease"),
		readline.PcItem("delete"),
		readline.PcItem("size"),
		readline.PcItem("trees"),
		readline.PcItem("drain"),
		readline.PcItem("check"),
		readline.PcItem("new"),
		readline.PcItem("use"),
		readline.PcItem("meld"),
		readline.PcItem("heaps"),
		readline.PcItem("version"),
		readline.PcItem("exit"),
		readline.PcItem("help"),
	)

	l, err := readline.NewEx(&readline.Config{
		Prompt:          opts.Prompt,
		HistoryFile:     historyFilePath(opts.HistoryFile),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	log.SetOutput(l.Stderr())
	s.out = l.Stdout()
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			fmt.Println("")
			break
		}

		err = s.execute(strings.Fields(line))
		if err == errQuit {
			break
		}
		if err != nil {
			util.Debugf("Command failed: %+v", err)
			fmt.Fprintln(s.out, err)
		}
	}
}

// historyFilePath makes sure the directory of the history file exists and
// returns the path, or "" to run without history.
func historyFilePath(path string) string {
	if path == "" {
		return ""
	}
	dir := filepath.Dir(path)

	exists, err := util.FileExists(dir)
	if err != nil {
		return ""
	}

	if !exists {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			util.Error("Unable to create history dir "+dir, err)
			return ""
		}
	}

	return path
}
