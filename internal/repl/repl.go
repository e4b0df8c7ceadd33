package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
)

const prompt = "blocks> "

var log = commonlog.GetLogger("blocks.repl")

var commands = []string{"run", "eval", "get", "vars", "call", "show", "reset", "reload", "help", "quit"}

// Start reads commands from the terminal until quit or end of input.
// History is kept in histPath when it is not empty.
func Start(c *Console, out io.Writer, histPath string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(complete)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(histPath)
			if err != nil {
				log.Warningf("history: %s", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	fmt.Fprintf(out, "%s console, type help for commands\n", c.doc.Program.Name)
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if c.Exec(line) {
			return nil
		}
	}
}

func complete(line string) []string {
	var out []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, line) {
			out = append(out, cmd)
		}
	}
	return out
}
