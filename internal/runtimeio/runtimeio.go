package runtimeio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var ErrInputUnavailable = errors.New("input is not available")

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// LineReader reads program input one line at a time. Prompts are written to
// echo, which is nil for non-interactive input.
type LineReader struct {
	r    *bufio.Reader
	echo io.Writer
}

func NewLineReader(in io.Reader, echo io.Writer) *LineReader {
	if in == nil {
		return &LineReader{echo: echo}
	}
	return &LineReader{r: bufio.NewReader(in), echo: echo}
}

// Stdin reads os.Stdin and shows prompts on out only when stdin is a terminal.
func Stdin(out io.Writer) *LineReader {
	var echo io.Writer
	if IsInteractive() {
		echo = out
	}
	return NewLineReader(os.Stdin, echo)
}

func (l *LineReader) ReadLine(prompt string) (string, error) {
	if l == nil || l.r == nil {
		return "", ErrInputUnavailable
	}
	if prompt != "" && l.echo != nil {
		_, _ = fmt.Fprint(l.echo, prompt)
	}
	line, err := l.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrInputUnavailable
			}
		} else {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
