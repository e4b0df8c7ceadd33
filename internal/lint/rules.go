package lint

import (
	"fmt"
	"sort"

	"blocks/internal/code"
	"blocks/internal/diag"
)

const (
	CodeMissingMain       = "BL0001"
	CodeMissingBlock      = "BL0002"
	CodeMissingAst        = "BL0003"
	CodeMissingFunction   = "BL0004"
	CodeMissingClass      = "BL0005"
	CodeNoConstructor     = "BL0006"
	CodeMissingSuperclass = "BL0007"
	CodeSuperclassCycle   = "BL0008"
	CodeBreakOutsideWhile = "BL0009"
	CodeDeferBlock        = "BL0010"
	CodeUnreachable       = "BL0011"
	CodeUnusedBlock       = "BL0012"
)

const (
	SubjectClass    = "class"
	SubjectFunction = "function"
	SubjectAst      = "ast"
	SubjectBlock    = "block"
)

type Runner struct {
	own   *code.Program
	code  *code.Code
	opts  Options
	diags []diag.Diagnostic
}

func (r *Runner) report(sev diag.Severity, codeID string, subj diag.Subject, format string, args ...any) {
	r.diags = append(r.diags, diag.Diagnostic{
		Code:     codeID,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Subject:  subj,
	})
}

func blockSubject(id code.BlockID) diag.Subject { return diag.Subject{Kind: SubjectBlock, ID: string(id)} }
func astSubject(id code.AstID) diag.Subject     { return diag.Subject{Kind: SubjectAst, ID: string(id)} }

func (r *Runner) checkMain() {
	if !r.own.HasMain() {
		r.report(diag.SeverityError, CodeMissingMain, diag.Subject{}, "program has no %s AST", code.MainAst)
	}
}

func (r *Runner) checkClasses() {
	for _, name := range code.SortedClassNames(&r.own.Code) {
		cls := r.own.Classes[name]
		subj := diag.Subject{Kind: SubjectClass, ID: string(name)}
		for _, m := range sortedMethodNames(cls.Methods) {
			if _, ok := r.code.Functions[cls.Methods[m]]; !ok {
				r.report(diag.SeverityError, CodeMissingFunction, subj, "method %q refers to unknown function %q", m, cls.Methods[m])
			}
		}
		if cls.Super != "" {
			if _, ok := r.code.Classes[cls.Super]; !ok {
				r.report(diag.SeverityWarning, CodeMissingSuperclass, subj, "superclass %q of %s is not defined", cls.Super, name)
				continue
			}
		}
		chain, cyclic := r.chain(name)
		if cyclic {
			r.report(diag.SeverityError, CodeSuperclassCycle, subj, "superclass chain of %s is cyclic: %s", name, chainString(chain))
			continue
		}
		if !r.chainDefines(chain, code.ConstructorMethod) {
			r.report(diag.SeverityWarning, CodeNoConstructor, subj, "%s has no %s", name, code.ConstructorMethod)
		}
	}
}

// chain walks name's superclasses. It stops at the first missing class and
// reports whether a class repeated.
func (r *Runner) chain(name code.ClassName) ([]code.ClassName, bool) {
	var out []code.ClassName
	seen := map[code.ClassName]bool{}
	for cls := name; cls != ""; {
		out = append(out, cls)
		if seen[cls] {
			return out, true
		}
		seen[cls] = true
		def, ok := r.code.Classes[cls]
		if !ok {
			break
		}
		cls = def.Super
	}
	return out, false
}

func (r *Runner) chainDefines(chain []code.ClassName, method string) bool {
	for _, cls := range chain {
		if def, ok := r.code.Classes[cls]; ok {
			if _, ok := def.Methods[method]; ok {
				return true
			}
		}
	}
	return false
}

func chainString(chain []code.ClassName) string {
	out := ""
	for i, c := range chain {
		if i > 0 {
			out += " -> "
		}
		out += string(c)
	}
	return out
}

func (r *Runner) checkFunctions() {
	for _, id := range code.SortedFuncIDs(&r.own.Code) {
		fn := r.own.Functions[id]
		if fn.Kind != code.FuncAST {
			continue
		}
		if _, ok := r.code.Asts[fn.Ast]; !ok {
			r.report(diag.SeverityError, CodeMissingAst, diag.Subject{Kind: SubjectFunction, ID: string(id)}, "function %q refers to unknown ast %q", id, fn.Ast)
		}
	}
}

func (r *Runner) checkAsts() {
	for _, id := range code.SortedAstIDs(&r.own.Code) {
		terminated := false
		for _, ref := range r.own.Asts[id] {
			blk, ok := r.code.Blocks[ref]
			if !ok {
				r.report(diag.SeverityError, CodeMissingBlock, astSubject(id), "ast %q refers to unknown block %q", id, ref)
				continue
			}
			if terminated {
				r.report(diag.SeverityWarning, CodeUnreachable, blockSubject(ref), "block %q is unreachable", ref)
				break
			}
			switch blk.(type) {
			case *code.Return, *code.Break:
				terminated = true
			}
		}
	}
}

func (r *Runner) checkBlocks() {
	for _, id := range code.SortedBlockIDs(&r.own.Code) {
		blk := r.own.Blocks[id]
		subj := blockSubject(id)
		for _, child := range code.Children(blk) {
			if _, ok := r.code.Blocks[child]; !ok {
				r.report(diag.SeverityError, CodeMissingBlock, subj, "block %q refers to unknown block %q", id, child)
			}
		}
		for _, ast := range code.NestedAsts(blk) {
			if _, ok := r.code.Asts[ast]; !ok {
				r.report(diag.SeverityError, CodeMissingAst, subj, "block %q refers to unknown ast %q", id, ast)
			}
		}
		switch b := blk.(type) {
		case *code.Construct:
			if _, ok := r.code.Classes[b.Class]; !ok {
				r.report(diag.SeverityError, CodeMissingClass, subj, "unknown class %q", b.Class)
			}
		case *code.FunctionCall:
			if _, ok := r.code.Functions[b.Func]; !ok {
				r.report(diag.SeverityError, CodeMissingFunction, subj, "unknown function %q", b.Func)
			}
		case *code.Defer:
			r.report(diag.SeverityWarning, CodeDeferBlock, subj, "defer blocks are not evaluated")
		}
	}
}

// checkBreaks walks every function body and Main, tracking whether the
// current AST runs inside a While body.
func (r *Runner) checkBreaks() {
	type visit struct {
		ast     code.AstID
		inWhile bool
	}
	seen := map[visit]bool{}
	var walk func(id code.AstID, inWhile bool)
	walk = func(id code.AstID, inWhile bool) {
		v := visit{id, inWhile}
		if seen[v] {
			return
		}
		seen[v] = true
		for _, ref := range r.code.Asts[id] {
			blk, ok := r.own.Blocks[ref]
			if !ok {
				continue
			}
			switch b := blk.(type) {
			case *code.Break:
				if !inWhile {
					r.report(diag.SeverityWarning, CodeBreakOutsideWhile, blockSubject(ref), "break outside of a while body")
				}
			case *code.If:
				walk(b.Then, inWhile)
				if b.Else != "" {
					walk(b.Else, inWhile)
				}
			case *code.While:
				walk(b.Body, true)
			}
		}
	}

	roots := []code.AstID{}
	if r.own.HasMain() {
		roots = append(roots, code.MainAst)
	}
	for _, id := range code.SortedFuncIDs(&r.own.Code) {
		if fn := r.own.Functions[id]; fn.Kind == code.FuncAST {
			roots = append(roots, fn.Ast)
		}
	}
	for _, root := range roots {
		walk(root, false)
	}
}

func (r *Runner) checkUnused() {
	used := map[code.BlockID]bool{}
	for _, ast := range r.own.Asts {
		for _, ref := range ast {
			used[ref] = true
		}
	}
	for _, blk := range r.own.Blocks {
		for _, child := range code.Children(blk) {
			used[child] = true
		}
	}
	for _, id := range code.SortedBlockIDs(&r.own.Code) {
		if !used[id] {
			r.report(diag.SeverityInfo, CodeUnusedBlock, blockSubject(id), "block %q is never used", id)
		}
	}
}

func sortedMethodNames(m map[string]code.FuncID) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
