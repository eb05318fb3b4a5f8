package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/codecrafters-io/bencode-go/app"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

// binary strings longer than this are summarized instead of quoted.
const maxQuotedBinary = 32

type dumpConfig struct {
	*cli.Command
	Verbose bool `cli:"name=v desc='log debug output to stderr'"`
	Strict  bool `cli:"name=strict desc='reject whitespace between tokens'"`
	Color   bool `cli:"name=color desc='force colored output'"`
}

// DumpCommand returns the dump subcommand.
func DumpCommand() *cli.Command {
	cfg := &dumpConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "dump").
		WithSynopsis("dump [-color] <file|->").
		WithDescription("print a bencoded value as an indented tree").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *dumpConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: bencode dump [-color] <file|->", cli.ErrUsage)
	}
	setVerbose(cfg.Verbose)

	input, err := readFile(cc.In, args[0])
	if err != nil {
		return err
	}
	v, err := app.Decode(input, decodeOpts(cfg.Strict)...)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}

	var colors *Colors
	if cfg.Color || isTerminal(cc.Out) {
		colors = NewColors()
	}
	dump(cc.Out, v, colors)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// Colors holds a formatting function per kind of token in a dump.
type Colors struct {
	Key  func(string, ...any) string
	Str  func(string, ...any) string
	Int  func(string, ...any) string
	Type func(string, ...any) string
}

// NewColors returns the colors used for dumps on a terminal.
func NewColors() *Colors {
	return &Colors{
		Key:  sprintf(color.RGB(196, 96, 16)),
		Str:  sprintf(color.RGB(8, 196, 16)),
		Int:  sprintf(color.RGB(128, 216, 236)),
		Type: sprintf(color.New(color.FgBlue)),
	}
}

// sprintf enables c even when stdout is not a terminal.
func sprintf(c *color.Color) func(string, ...any) string {
	c.EnableColor()
	return c.SprintfFunc()
}

func plainColors() *Colors {
	return &Colors{Key: fmt.Sprintf, Str: fmt.Sprintf, Int: fmt.Sprintf, Type: fmt.Sprintf}
}

// dump writes v to w as an indented tree, dict keys in canonical order.
func dump(w io.Writer, v app.Value, colors *Colors) {
	if colors == nil {
		colors = plainColors()
	}
	var b strings.Builder
	dumpValue(&b, v, colors, 0)
	io.WriteString(w, b.String())
}

func dumpValue(b *strings.Builder, v app.Value, colors *Colors, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := v.(type) {
	case app.Int:
		b.WriteString(colors.Int("%d", int64(v)))
		b.WriteByte('\n')
	case app.Str:
		b.WriteString(colors.Str("%s", quote(string(v))))
		b.WriteByte('\n')
	case app.List:
		b.WriteString(colors.Type("list[%d]", len(v)))
		b.WriteByte('\n')
		for _, item := range v {
			b.WriteString(indent + "  - ")
			dumpValue(b, item, colors, depth+1)
		}
	case app.Dict:
		b.WriteString(colors.Type("dict[%d]", len(v)))
		b.WriteByte('\n')
		for _, key := range v.Keys() {
			b.WriteString(indent + "  ")
			b.WriteString(colors.Key("%s", quote(key)))
			b.WriteString(": ")
			dumpValue(b, v[key], colors, depth+1)
		}
	}
}

func quote(s string) string {
	if !utf8.ValidString(s) && len(s) > maxQuotedBinary {
		return "<" + strconv.Itoa(len(s)) + " bytes>"
	}
	return strconv.Quote(s)
}
