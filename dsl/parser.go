package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	presetLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d+|\d+|\.\d+)(?:px)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;,]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(presetLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// File is the root AST node of a preset file; it may hold several patterns.
type File struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Patterns []*Pattern     `parser:"Newline* ( @@ Newline* )*"`
}

// Pattern is a named block of settings.
type Pattern struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"'pattern' @Ident"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | ',' | Newline )* )* '}'"`
}

// Entry uses colon syntax (key: value).
type Entry struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"Newline* @@"`
}

// Value represents a scalar setting value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Bool   *string        `parser:"| @( 'true' | 'false' | 'yes' | 'no' | 'on' | 'off' )"`
	Ident  *string        `parser:"| @Ident"`
}

// Raw returns the value as written, with strings unquoted.
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Bool != nil:
		return *v.Bool
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Float parses a numeric value; a trailing "px" unit is accepted.
func (v *Value) Float() (float64, error) {
	if v == nil || v.Number == nil {
		return 0, fmt.Errorf("expected number, got %q", v.Raw())
	}
	return strconv.ParseFloat(strings.TrimSuffix(*v.Number, "px"), 64)
}

// Boolean parses true/false and the yes/no, on/off aliases.
func (v *Value) Boolean() (bool, error) {
	if v == nil || v.Bool == nil {
		return false, fmt.Errorf("expected boolean, got %q", v.Raw())
	}
	switch *v.Bool {
	case "true", "yes", "on":
		return true, nil
	default:
		return false, nil
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Lookup returns the pattern with the given name, or the first one when name is empty.
func (f *File) Lookup(name string) (*Pattern, bool) {
	if f == nil || len(f.Patterns) == 0 {
		return nil, false
	}
	if name == "" {
		return f.Patterns[0], true
	}
	for _, p := range f.Patterns {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Parse parses preset content from an io.Reader.
func Parse(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}

// ParseString parses preset content from a string.
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}
