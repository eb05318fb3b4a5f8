package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/codecrafters-io/bencode-go/app"
	"github.com/goccy/go-yaml"
	"github.com/scott-cotton/cli"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// MainCommand returns the root bencode command.
func MainCommand() *cli.Command {
	return cli.NewCommand("bencode").
		WithSynopsis("bencode command [opts] args").
		WithDescription("bencode decodes, encodes and inspects Bencode data.").
		WithSubs(
			DecodeCommand(),
			EncodeCommand(),
			CanonCommand(),
			DumpCommand(),
			InfoHashCommand())
}

func decodeOpts(strict bool) []app.DecodeOption {
	if strict {
		return []app.DecodeOption{app.Strict()}
	}
	return nil
}

type decodeConfig struct {
	*cli.Command
	Verbose bool `cli:"name=v desc='log debug output to stderr'"`
	Strict  bool `cli:"name=strict desc='reject whitespace between tokens'"`
	YAML    bool `cli:"name=y aliases=yaml desc='output yaml instead of json'"`
}

// DecodeCommand returns the decode subcommand.
func DecodeCommand() *cli.Command {
	cfg := &decodeConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "decode").
		WithAliases("d").
		WithSynopsis("decode [-y] <value|->").
		WithDescription("decode a bencoded value and print it as json or yaml").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *decodeConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: bencode decode <value|->", cli.ErrUsage)
	}
	setVerbose(cfg.Verbose)
	return cfg.decode(cc.In, cc.Out, args[0])
}

func (cfg *decodeConfig) decode(in io.Reader, w io.Writer, arg string) error {
	input, err := readLiteral(in, arg)
	if err != nil {
		return err
	}
	decoded, err := app.Decode(input, decodeOpts(cfg.Strict)...)
	if err != nil {
		return fmt.Errorf("failed to decode bencoded value: %w", err)
	}
	theLog.Debug("decoded", "bytes", len(input), "type", decoded.Type())

	var out []byte
	if cfg.YAML {
		out, err = yaml.Marshal(app.Native(decoded))
	} else {
		out, err = app.ToJSON(decoded)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal decoded value: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		_, err = fmt.Fprintln(w)
	}
	return err
}

type encodeConfig struct {
	*cli.Command
	Verbose bool `cli:"name=v desc='log debug output to stderr'"`
}

// EncodeCommand returns the encode subcommand.
func EncodeCommand() *cli.Command {
	cfg := &encodeConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "encode").
		WithAliases("e").
		WithSynopsis("encode <json|->").
		WithDescription("encode a json document as canonical bencode").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *encodeConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: bencode encode <json|->", cli.ErrUsage)
	}
	setVerbose(cfg.Verbose)
	return cfg.encode(cc.In, cc.Out, args[0])
}

func (cfg *encodeConfig) encode(in io.Reader, w io.Writer, arg string) error {
	input, err := readLiteral(in, arg)
	if err != nil {
		return err
	}
	v, err := app.FromJSON(input)
	if err != nil {
		return err
	}
	out := app.Encode(v)
	theLog.Debug("encoded", "type", v.Type(), "bytes", len(out))
	_, err = w.Write(out)
	return err
}

type canonConfig struct {
	*cli.Command
	Verbose bool `cli:"name=v desc='log debug output to stderr'"`
	Strict  bool `cli:"name=strict desc='reject whitespace between tokens'"`
	Diff    bool `cli:"name=diff desc='show the difference between the input and its canonical form'"`
}

// CanonCommand returns the canon subcommand.
func CanonCommand() *cli.Command {
	cfg := &canonConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "canon").
		WithSynopsis("canon [-diff] <file|->").
		WithDescription("re-encode bencoded input in canonical form").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *canonConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: bencode canon [-diff] <file|->", cli.ErrUsage)
	}
	setVerbose(cfg.Verbose)

	input, err := readFile(cc.In, args[0])
	if err != nil {
		return err
	}
	decoded, err := app.Decode(input, decodeOpts(cfg.Strict)...)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}
	canonical := app.Encode(decoded)
	if !cfg.Diff {
		_, err = cc.Out.Write(canonical)
		return err
	}
	fmt.Fprintln(cc.Out, canonDiff(string(input), string(canonical)))
	return nil
}

// canonDiff renders the edits that turn input into canonical.
func canonDiff(input, canonical string) string {
	if input == canonical {
		return "input is canonical"
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(input, canonical, false)
	return dmp.DiffPrettyText(dmp.DiffCleanupSemantic(diffs))
}

type infoHashConfig struct {
	*cli.Command
	Verbose bool `cli:"name=v desc='log debug output to stderr'"`
	Strict  bool `cli:"name=strict desc='reject whitespace between tokens'"`
}

// InfoHashCommand returns the infohash subcommand.
func InfoHashCommand() *cli.Command {
	cfg := &infoHashConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "infohash").
		WithSynopsis("infohash <torrent-file|->").
		WithDescription("print the hex SHA1 of a torrent's canonical info dict").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *infoHashConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: bencode infohash <torrent-file|->", cli.ErrUsage)
	}
	setVerbose(cfg.Verbose)
	return cfg.infoHash(cc.In, cc.Out, args[0])
}

func (cfg *infoHashConfig) infoHash(in io.Reader, w io.Writer, path string) error {
	input, err := readFile(in, path)
	if err != nil {
		return err
	}
	root, err := app.Decode(input, decodeOpts(cfg.Strict)...)
	if err != nil {
		return fmt.Errorf("failed to parse torrent file: %w", err)
	}
	hash, err := app.InfoHash(root)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hex.EncodeToString(hash))
	return err
}

// readLiteral returns arg itself, or stdin when arg is "-".
func readLiteral(in io.Reader, arg string) ([]byte, error) {
	if arg == "-" {
		return readStdin(in)
	}
	return []byte(arg), nil
}

// readFile returns the contents of the file at path, or stdin when path
// is "-".
func readFile(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return readStdin(in)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	theLog.Debug("read file", "path", path, "bytes", len(data))
	return data, nil
}

func readStdin(in io.Reader) ([]byte, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}
