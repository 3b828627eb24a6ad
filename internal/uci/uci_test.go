package uci

import "testing"

func TestParseSetOptionNameOnly(t *testing.T) {
	name, value, ok := parseSetOption([]string{"name", "Hash", "value", "128"})
	if !ok || name != "Hash" || value != "128" {
		t.Fatalf("got name=%q value=%q ok=%v", name, value, ok)
	}
}

func TestParseSetOptionMultiWordName(t *testing.T) {
	name, value, ok := parseSetOption([]string{"name", "Move", "Overhead", "value", "50"})
	if !ok || name != "Move Overhead" || value != "50" {
		t.Fatalf("got name=%q value=%q ok=%v", name, value, ok)
	}
}

func TestParseSetOptionWithoutValue(t *testing.T) {
	name, value, ok := parseSetOption([]string{"name", "SoftNodes"})
	if !ok || name != "SoftNodes" || value != "" {
		t.Fatalf("got name=%q value=%q ok=%v", name, value, ok)
	}
}

func TestParseSetOptionMalformed(t *testing.T) {
	if _, _, ok := parseSetOption([]string{"value", "128"}); ok {
		t.Fatalf("expected malformed setoption (missing name) to be rejected")
	}
	if _, _, ok := parseSetOption(nil); ok {
		t.Fatalf("expected empty args to be rejected")
	}
}

func TestParseGoOptionsDepth(t *testing.T) {
	o := parseGoOptions([]string{"depth", "10"})
	if o.depth != 10 {
		t.Fatalf("expected depth=10, got %d", o.depth)
	}
}

func TestParseGoOptionsTimeControls(t *testing.T) {
	o := parseGoOptions([]string{"wtime", "60000", "btime", "55000", "winc", "1000", "binc", "500", "movestogo", "20"})
	if o.wtime != 60000 || o.btime != 55000 || o.winc != 1000 || o.binc != 500 || o.movesToGo != 20 {
		t.Fatalf("unexpected parsed options: %+v", o)
	}
}

func TestParseGoOptionsInfiniteAndPonder(t *testing.T) {
	o := parseGoOptions([]string{"infinite"})
	if !o.infinite {
		t.Fatalf("expected infinite=true")
	}
	o = parseGoOptions([]string{"ponder"})
	if !o.ponder {
		t.Fatalf("expected ponder=true")
	}
}

func TestToLimitsPonderImpliesInfinite(t *testing.T) {
	u := &UCI{}
	limits := u.toLimits(goOptions{ponder: true})
	if !limits.Infinite {
		t.Fatalf("expected go ponder to translate to an infinite search")
	}
}
