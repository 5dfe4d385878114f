package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"minml/pkg/compiler"
	"minml/pkg/vm"
)

const (
	historyFile = ".minml_history"
	promptMain  = "==> "
	promptCont  = "... "
	maxSteps    = 10_000_000
)

const banner = `minml REPL
Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.
Definitions ("fun f(x) = ...") persist for the session.`

func main() {
	os.Exit(repl())
}

func repl() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	// Source text of every accepted "fun" definition, recompiled together
	// with each entered expression.
	var defs []string

	for {
		input, ok := readInput(ln, defs)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(input)

		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return 0
			case ":defs":
				for _, d := range defs {
					fmt.Println(d)
				}
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "fun") {
			if err := checkDef(defs, trimmed); err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			defs = append(defs, trimmed)
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
			continue
		}

		src := strings.Join(append(append([]string{}, defs...), trimmed), "\n")
		words, err := compiler.CompileSource(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		m := vm.New(words)
		if err := m.Run(maxSteps); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if result, ok := m.Result(); ok {
			fmt.Println(result)
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
	}
}

// readInput collects one entry, prompting for continuation lines while the
// accumulated text parses as an incomplete program.
func readInput(ln *liner.State, defs []string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(promptMain)
		} else {
			line, err = ln.Prompt(promptCont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		entry := b.String()
		if strings.HasPrefix(strings.TrimSpace(entry), ":") {
			return entry, true
		}
		src := strings.Join(append(append([]string{}, defs...), entry), "\n")
		if perr := probe(src); perr != nil && compiler.IsIncomplete(perr) {
			continue
		}
		return entry, true
	}
}

// probe parses src without compiling it.
func probe(src string) error {
	tokens, err := compiler.Lex(src)
	if err != nil {
		return err
	}
	_, err = compiler.Parse(tokens, src)
	return err
}

// checkDef verifies that a new definition parses against the existing ones.
func checkDef(defs []string, def string) error {
	src := strings.Join(append(append([]string{}, defs...), def), "\n")
	return probe(src)
}
