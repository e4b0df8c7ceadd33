package lint

import (
	"blocks/internal/code"
	"blocks/internal/diag"
	"blocks/internal/library"
)

type Options struct {
	// CheckUnused reports blocks that nothing refers to.
	CheckUnused bool
}

func DefaultOptions() Options {
	return Options{CheckUnused: true}
}

type Linter struct {
	opts Options
	libs []library.Library
}

func New(libs ...library.Library) *Linter {
	return &Linter{opts: DefaultOptions(), libs: libs}
}

func NewWithOptions(opts Options, libs ...library.Library) *Linter {
	return &Linter{opts: opts, libs: libs}
}

// Run checks program against the standard library plus libs.
func Run(program *code.Program, libs ...library.Library) []diag.Diagnostic {
	return New(libs...).Run(program)
}

func RunWithOptions(program *code.Program, opts Options, libs ...library.Library) []diag.Diagnostic {
	return NewWithOptions(opts, libs...).Run(program)
}

// Run reports problems in the program's own entities. References are
// resolved against the program merged with the libraries, the way the
// interpreter sees it.
func (l *Linter) Run(program *code.Program) []diag.Diagnostic {
	if program == nil {
		return nil
	}
	merged := program.Clone()
	all := append([]library.Library{library.Standard(library.Host{})}, l.libs...)
	library.Load(&merged.Code, all...)

	r := &Runner{own: program, code: &merged.Code, opts: l.opts}
	r.checkMain()
	r.checkClasses()
	r.checkFunctions()
	r.checkAsts()
	r.checkBlocks()
	r.checkBreaks()
	if l.opts.CheckUnused {
		r.checkUnused()
	}
	return r.diags
}
