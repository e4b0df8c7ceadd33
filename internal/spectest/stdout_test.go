package spectest

import "testing"

func TestMatchStdout(t *testing.T) {
	tests := []struct {
		got  string
		exp  StdoutExpectation
		want bool
	}{
		{"a\r\nb\r\n", StdoutExpectation{Mode: StdoutExact, Value: "a\nb\n"}, true},
		{"a\n", StdoutExpectation{Mode: StdoutExact, Value: "a"}, false},
		{"hello\nworld\n", StdoutExpectation{Mode: StdoutContains, Value: "world\n"}, true},
		{"hello\n", StdoutExpectation{Mode: StdoutContains, Value: "world"}, false},
		{"anything", StdoutExpectation{Mode: StdoutNone}, true},
	}
	for i, tt := range tests {
		ok, reason := MatchStdout(tt.got, tt.exp)
		if ok != tt.want {
			t.Fatalf("tests[%d] - expected %v, got %v (%s)", i, tt.want, ok, reason)
		}
	}
}

func TestStdoutExpectation(t *testing.T) {
	tests := []struct {
		exp  Expectation
		mode StdoutMode
	}{
		{Expectation{Stdout: "x"}, StdoutExact},
		{Expectation{}, StdoutExact},
		{Expectation{IgnoreStdout: true}, StdoutNone},
		{Expectation{StdoutContains: "x", IgnoreStdout: true}, StdoutContains},
	}
	for i, tt := range tests {
		if got := stdoutExpectation(tt.exp).Mode; got != tt.mode {
			t.Fatalf("tests[%d] - expected mode %d, got %d", i, tt.mode, got)
		}
	}
}

func TestRunBothModesAgree(t *testing.T) {
	src := `asts:
  Main: [p]
blocks:
  p: {kind: call, func: Print, args: {Value: s}}
  s: {kind: string, value: hi}
`
	for _, mode := range []Mode{ModeRun, ModeRetained} {
		res := Run(t, Options{Mode: mode, Source: src})
		Assert(t, res, Expectation{Stdout: "hi\n"})
	}
}

func TestRunDecodeError(t *testing.T) {
	res := Run(t, Options{Mode: ModeRun, Source: "blocks:\n  b: {kind: nope}\n"})
	if res.ErrCode != CodeDecode {
		t.Fatalf("expected %s, got %q", CodeDecode, res.ErrCode)
	}
}
