package evaluator

import (
	"io"
	"os"

	"blocks/internal/library"
	"blocks/internal/runtimeio"
)

type settings struct {
	out          io.Writer
	in           io.Reader
	libs         []library.Library
	maxRecursion int
	maxMemory    int64
}

type Option func(*settings)

func newSettings(opts []Option) settings {
	s := settings{out: os.Stdout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) input() *runtimeio.LineReader {
	if s.in == nil {
		return runtimeio.Stdin(s.out)
	}
	return runtimeio.NewLineReader(s.in, nil)
}

// WithOutput sends Print output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithInput makes Input read lines from r instead of stdin.
func WithInput(r io.Reader) Option {
	return func(s *settings) { s.in = r }
}

// WithLibraries merges libs after the standard library.
func WithLibraries(libs ...library.Library) Option {
	return func(s *settings) { s.libs = append(s.libs, libs...) }
}

// WithMaxRecursion caps function and method call nesting. Zero disables it.
func WithMaxRecursion(n int) Option {
	return func(s *settings) { s.maxRecursion = n }
}

// WithMaxMemory caps the bytes charged for values created during evaluation.
// Zero disables it.
func WithMaxMemory(bytes int64) Option {
	return func(s *settings) { s.maxMemory = bytes }
}
