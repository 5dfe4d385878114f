package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"minml/pkg/code"
	"minml/pkg/compiler"
	"minml/pkg/vm"
)

const maxSteps = 10_000_000

var (
	showTokens = flag.Bool("tokens", false, "print the token stream")
	showIR     = flag.Bool("ir", false, "print the parsed IR")
	showAsm    = flag.Bool("S", false, "print the resolved program disassembly")
	run        = flag.Bool("run", false, "execute the program and print its result")
	watch      = flag.Bool("watch", false, "recompile (and rerun with -run) whenever the file changes")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: minmlc [flags] file.mml")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	if !*watch {
		if err := build(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := watchLoop(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// build compiles path once, printing whatever the flags ask for.
func build(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	src := string(data)

	tokens, err := compiler.Lex(src)
	if err != nil {
		return err
	}
	if *showTokens {
		fmt.Printf("Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		fmt.Println()
	}

	prog, err := compiler.Parse(tokens, src)
	if err != nil {
		return err
	}
	if *showIR {
		fmt.Println("IR")
		for _, fn := range prog.Funcs {
			fmt.Println(" ", fn)
		}
		fmt.Println(" ", prog.Body)
		fmt.Println()
	}

	words, err := compiler.Compile(prog)
	if err != nil {
		return err
	}
	if *showAsm {
		fmt.Print(code.Disassemble(words))
	}

	if *run {
		m := vm.New(words)
		if err := m.Run(maxSteps); err != nil {
			return err
		}
		if result, ok := m.Result(); ok {
			fmt.Println(result)
		}
	}
	return nil
}

// watchLoop rebuilds on every write to the file. The watcher is attached
// to the directory rather than the file itself, so editors that replace
// the file on save do not break the watch.
func watchLoop(path string) error {
	if err := build(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %s\n", path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "-- %s changed --\n", path)
			if err := build(path); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}
