package code

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Describe renders one block on a single line.
func Describe(b Block) string {
	switch n := b.(type) {
	case *BooleanLiteral:
		return strconv.FormatBool(n.Value)
	case *StringLiteral:
		return strconv.Quote(n.Value)
	case *ArrayLiteral:
		return "array" + blockList(n.Elements)
	case *Construct:
		return fmt.Sprintf("construct %s%s", n.Class, argList(n.Args))
	case *Set:
		return fmt.Sprintf("set %s <- %s", n.Var, n.Value)
	case *Get:
		return "get " + n.Var.String()
	case *FunctionCall:
		return fmt.Sprintf("call %s%s", n.Func, argList(n.Args))
	case *MethodCall:
		return fmt.Sprintf("method %s %q%s", n.Receiver, n.Method, argList(n.Args))
	case *Return:
		if n.Value == "" {
			return "return"
		}
		return "return " + string(n.Value)
	case *If:
		if n.Else != "" {
			return fmt.Sprintf("if %s then %s else %s", n.Cond, n.Then, n.Else)
		}
		return fmt.Sprintf("if %s then %s", n.Cond, n.Then)
	case *While:
		return fmt.Sprintf("while %s do %s", n.Cond, n.Body)
	case *Break:
		return "break"
	case *Defer:
		return "defer " + string(n.Body)
	case nil:
		return "<nil>"
	}
	return string(b.Kind())
}

func blockList(ids []BlockID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func argList(args Args) string {
	parts := make([]string, 0, len(args))
	for _, name := range args.Names() {
		parts = append(parts, fmt.Sprintf("%s: %s", name, args[name]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Dump renders the classes, functions and ASTs of c as an indented tree.
// ASTs reachable from a function or Main are expanded in place.
func Dump(c *Code) string {
	var out bytes.Buffer

	out.WriteString("== classes ==\n")
	for _, name := range SortedClassNames(c) {
		cls := c.Classes[name]
		if cls.Super != "" {
			fmt.Fprintf(&out, "class %s < %s\n", name, cls.Super)
		} else {
			fmt.Fprintf(&out, "class %s\n", name)
		}
		methods := make([]string, 0, len(cls.Methods))
		for m := range cls.Methods {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		for _, m := range methods {
			fmt.Fprintf(&out, "  %-16s %s\n", m, cls.Methods[m])
		}
	}

	out.WriteString("\n== functions ==\n")
	for _, id := range SortedFuncIDs(c) {
		fn := c.Functions[id]
		if fn.Kind == FuncForeign {
			fmt.Fprintf(&out, "%s <foreign>\n", id)
			continue
		}
		fmt.Fprintf(&out, "%s ast %s\n", id, fn.Ast)
		dumpAst(&out, c, fn.Ast, 1, map[AstID]bool{})
	}

	if _, ok := c.Asts[MainAst]; ok {
		out.WriteString("\n== Main ==\n")
		dumpAst(&out, c, MainAst, 0, map[AstID]bool{})
	}
	return out.String()
}

func dumpAst(out *bytes.Buffer, c *Code, id AstID, depth int, seen map[AstID]bool) {
	pad := strings.Repeat("  ", depth)
	if seen[id] {
		fmt.Fprintf(out, "%s(%s ...)\n", pad, id)
		return
	}
	ast, ok := c.Asts[id]
	if !ok {
		fmt.Fprintf(out, "%s<missing ast %s>\n", pad, id)
		return
	}
	seen[id] = true
	defer delete(seen, id)
	for _, ref := range ast {
		blk, ok := c.Blocks[ref]
		if !ok {
			fmt.Fprintf(out, "%s%-6s <missing block>\n", pad, ref)
			continue
		}
		fmt.Fprintf(out, "%s%-6s %s\n", pad, ref, Describe(blk))
		for _, nested := range NestedAsts(blk) {
			dumpAst(out, c, nested, depth+1, seen)
		}
	}
}
