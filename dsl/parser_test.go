package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/tiletext/dsl"
)

const samplePreset = `
// two presets in one file
pattern Poster {
  message: "Meet at ${event.time}"
  width: 800px  height: 400
  font: "Go Mono"
  size: 32
  foreground: #111111
  background: #FFF   # trailing comment
  letter-spacing: -2.5
  repeat: true; flip: yes
  mirror: off
}

pattern Banner {
  message: "HELLO"
  font: Go
}
`

func TestParsePresetFile(t *testing.T) {
	file, err := dsl.ParseString(samplePreset)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(file.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(file.Patterns))
	}

	poster, ok := file.Lookup("")
	if !ok || poster.Name != "Poster" {
		t.Fatalf("expected first pattern Poster, got %+v", poster)
	}
	entries := map[string]*dsl.Value{}
	for _, e := range poster.Entries {
		entries[e.Key] = e.Value
	}

	if got := entries["message"].Raw(); got != "Meet at ${event.time}" {
		t.Fatalf("unexpected message %q", got)
	}
	if w, err := entries["width"].Float(); err != nil || w != 800 {
		t.Fatalf("width: got %g err %v", w, err)
	}
	if ls, err := entries["letter-spacing"].Float(); err != nil || ls != -2.5 {
		t.Fatalf("letter-spacing: got %g err %v", ls, err)
	}
	if got := entries["background"].Raw(); got != "#FFF" {
		t.Fatalf("background: got %q", got)
	}
	if flip, err := entries["flip"].Boolean(); err != nil || !flip {
		t.Fatalf("flip: got %v err %v", flip, err)
	}
	if mirror, err := entries["mirror"].Boolean(); err != nil || mirror {
		t.Fatalf("mirror: got %v err %v", mirror, err)
	}
	if got := entries["font"].Raw(); got != "Go Mono" {
		t.Fatalf("font: got %q", got)
	}
}

func TestLookupByName(t *testing.T) {
	file, err := dsl.Parse(strings.NewReader(samplePreset))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	banner, ok := file.Lookup("Banner")
	if !ok {
		t.Fatalf("Banner not found")
	}
	if len(banner.Entries) != 2 || banner.Entries[1].Value.Raw() != "Go" {
		t.Fatalf("unexpected Banner entries: %+v", banner.Entries)
	}
	if _, ok := file.Lookup("Missing"); ok {
		t.Fatalf("expected Missing to be absent")
	}
}

func TestValueTypeErrors(t *testing.T) {
	file, err := dsl.ParseString(`pattern P { width: "wide" repeat: 1 }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	p := file.Patterns[0]
	if _, err := p.Entries[0].Value.Float(); err == nil {
		t.Fatalf("expected number error for quoted width")
	}
	if _, err := p.Entries[1].Value.Boolean(); err == nil {
		t.Fatalf("expected boolean error for numeric repeat")
	}
}

func TestParseRejectsMissingBrace(t *testing.T) {
	if _, err := dsl.ParseString("pattern P { width: 10"); err == nil {
		t.Fatalf("expected error for unterminated block")
	}
}
