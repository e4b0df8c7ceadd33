package main

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"blocks/internal/history"
	"blocks/internal/object"
)

func (c *cli) historyPath() (string, error) {
	if c.record != "" {
		return c.record, nil
	}
	return history.DefaultPath()
}

// recordRun stores one finished run. Vars holds whatever Main left in the
// store, rendered with Inspect.
func (c *cli) recordRun(t *target, started time.Time, output string, snap object.Snapshot, runErr error) error {
	db, err := history.Open(c.record)
	if err != nil {
		return err
	}
	defer db.Close()

	r := history.Record{
		Program:  t.doc.Program.Name,
		Path:     t.doc.Path,
		Started:  started.UTC(),
		Duration: time.Since(started),
		Output:   output,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	if len(snap) > 0 {
		r.Vars = make(map[string]string, len(snap))
		for _, id := range snap.IDs() {
			r.Vars[id.String()] = snap[id].Inspect()
		}
	}
	id, err := db.Add(r)
	if err != nil {
		return err
	}
	log.Infof("recorded run %d of %s", id, r.Program)
	return nil
}

func (c *cli) runHistory(args []string) int {
	sub := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	program := fs.String("program", "", "only runs of this program")
	limit := fs.Int("n", 20, "number of runs to list (0 = all)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(c.out, "usage: blocks [-record DB] history [list [-program P] [-n N] | show <id> | clear]")
		return 2
	}

	path, err := c.historyPath()
	if err != nil {
		fmt.Fprintln(c.out, "history error:", err)
		return 1
	}
	db, err := history.Open(path)
	if err != nil {
		fmt.Fprintln(c.out, "history error:", err)
		return 1
	}
	defer db.Close()

	switch sub {
	case "list":
		runs, err := db.List(*program, *limit)
		if err != nil {
			fmt.Fprintln(c.out, "history error:", err)
			return 1
		}
		if len(runs) == 0 {
			fmt.Fprintln(c.out, "no runs recorded")
			return 0
		}
		for _, r := range runs {
			status := "ok"
			if !r.OK() {
				status = "error"
			}
			fmt.Fprintf(c.out, "%4d  %s  %-16s %-5s %s\n", r.ID, r.Started.Local().Format(time.DateTime), r.Program, status, r.Duration.Round(time.Microsecond))
		}
	case "show":
		if fs.NArg() != 1 {
			fmt.Fprintln(c.out, "usage: blocks history show <id>")
			return 2
		}
		id, err := strconv.ParseUint(fs.Arg(0), 10, 64)
		if err != nil {
			fmt.Fprintf(c.out, "history error: invalid run id %q\n", fs.Arg(0))
			return 2
		}
		r, found, err := db.Get(id)
		if err != nil {
			fmt.Fprintln(c.out, "history error:", err)
			return 1
		}
		if !found {
			fmt.Fprintf(c.out, "history error: no run %d\n", id)
			return 1
		}
		printRecord(c.out, r)
	case "clear":
		if err := db.Clear(); err != nil {
			fmt.Fprintln(c.out, "history error:", err)
			return 1
		}
		fmt.Fprintln(c.out, "history cleared")
	default:
		fmt.Fprintln(c.out, "unknown history command:", sub)
		return 2
	}
	return 0
}

func printRecord(out io.Writer, r history.Record) {
	fmt.Fprintf(out, "run %d: %s\n", r.ID, r.Program)
	if r.Path != "" {
		fmt.Fprintf(out, "path:     %s\n", r.Path)
	}
	fmt.Fprintf(out, "started:  %s\n", r.Started.Local().Format(time.DateTime))
	fmt.Fprintf(out, "duration: %s\n", r.Duration)
	if r.Error != "" {
		fmt.Fprintf(out, "error:    %s\n", r.Error)
	}
	if r.Output != "" {
		fmt.Fprintln(out, "output:")
		for _, line := range strings.Split(strings.TrimRight(r.Output, "\n"), "\n") {
			fmt.Fprintln(out, "  "+line)
		}
	}
	if len(r.Vars) > 0 {
		fmt.Fprintln(out, "store:")
		for _, id := range sortedVarKeys(r.Vars) {
			fmt.Fprintf(out, "  %s = %s\n", id, r.Vars[id])
		}
	}
}

// sortedVarKeys orders runtime ids numerically (r2 before r10).
func sortedVarKeys(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	num := func(k string) uint64 {
		n, _ := strconv.ParseUint(strings.TrimPrefix(k, "r"), 10, 64)
		return n
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := num(keys[i]), num(keys[j])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
