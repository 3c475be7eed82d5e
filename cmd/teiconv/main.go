// Command teiconv converts TEI documents to editor sections and back.
//
//	teiconv parse [flags] <file.xml>
//	teiconv serialize [flags] <file.json>
//	teiconv roundtrip [flags] <file.xml>
//	teiconv preview [flags] <file.xml>
//
// A file name of "-" reads from standard input.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/uedition/teiconv/model"
	"github.com/uedition/teiconv/preview"
	"github.com/uedition/teiconv/schema"
	"github.com/uedition/teiconv/schema/basic"
	"github.com/uedition/teiconv/tei"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const usage = `Usage: teiconv <command> [flags] <file>

Commands:
  parse      read a TEI document and print its sections as JSON
  serialize  read sections as JSON and print the TEI document
  roundtrip  parse a TEI document and serialize it again
  preview    render a section of a TEI document as HTML

Flags:
`

type config struct {
	schemaPath  string
	editionPath string
	output      string
	section     string
	strict      bool
	debug       bool
}

type command func(cfg *config, s *schema.Schema, log *zap.Logger, in []byte, out io.Writer) error

var commands = map[string]command{
	"parse":     parseCmd,
	"serialize": serializeCmd,
	"roundtrip": roundtripCmd,
	"preview":   previewCmd,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := &config{}
	flags := pflag.NewFlagSet("teiconv", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.schemaPath, "schema", "", "uEditor.yaml to read the schema from (default: built-in schema)")
	flags.StringVar(&cfg.editionPath, "edition", "", "uEdition.yaml with extra blocks and marks")
	flags.StringVarP(&cfg.output, "output", "o", "-", "file to write to")
	flags.StringVar(&cfg.section, "section", "text", "section to preview")
	flags.BoolVar(&cfg.strict, "strict", false, "fail on blocks and marks missing from the schema")
	flags.BoolVar(&cfg.debug, "debug", false, "log debug messages")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	if len(args) == 0 {
		flags.Usage()
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		flags.Usage()
		return 2
	}
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}

	log, err := newLogger(cfg.debug)
	if err != nil {
		fmt.Fprintf(stderr, "Fatal: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	if err := execute(cfg, cmd, flags.Arg(0), stdin, stdout, log); err != nil {
		log.Error("conversion failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(stderr, "Fatal: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func execute(cfg *config, cmd command, name string, stdin io.Reader, stdout io.Writer, log *zap.Logger) error {
	s, err := loadSchema(cfg)
	if err != nil {
		return err
	}
	in, err := readInput(name, stdin)
	if err != nil {
		return err
	}
	if cfg.output == "-" {
		return cmd(cfg, s, log, in, stdout)
	}
	f, err := os.Create(cfg.output)
	if err != nil {
		return err
	}
	if err := cmd(cfg, s, log, in, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadSchema(cfg *config) (*schema.Schema, error) {
	s := basic.Schema
	if cfg.schemaPath != "" {
		loaded, err := schema.Load(cfg.schemaPath)
		if err != nil {
			return nil, err
		}
		s = loaded
	}
	if cfg.editionPath != "" {
		return schema.LoadEdition(s, cfg.editionPath)
	}
	return s, nil
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func options(cfg *config, log *zap.Logger) []tei.Option {
	return []tei.Option{tei.WithLogger(log), tei.WithStrict(cfg.strict)}
}

func parseSections(cfg *config, s *schema.Schema, log *zap.Logger, in []byte) ([]*model.Section, error) {
	p, err := tei.NewParser(s, options(cfg, log)...)
	if err != nil {
		return nil, err
	}
	return p.Parse(in)
}

func writeXML(cfg *config, s *schema.Schema, log *zap.Logger, sections []*model.Section, out io.Writer) error {
	ser, err := tei.NewSerializer(s, options(cfg, log)...)
	if err != nil {
		return err
	}
	data, err := ser.Serialize(sections)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func parseCmd(cfg *config, s *schema.Schema, log *zap.Logger, in []byte, out io.Writer) error {
	sections, err := parseSections(cfg, s, log, in)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(sections)
}

func serializeCmd(cfg *config, s *schema.Schema, log *zap.Logger, in []byte, out io.Writer) error {
	var sections []*model.Section
	if err := json.Unmarshal(in, &sections); err != nil {
		return fmt.Errorf("reading sections: %w", err)
	}
	return writeXML(cfg, s, log, sections, out)
}

func roundtripCmd(cfg *config, s *schema.Schema, log *zap.Logger, in []byte, out io.Writer) error {
	sections, err := parseSections(cfg, s, log, in)
	if err != nil {
		return err
	}
	return writeXML(cfg, s, log, sections, out)
}

func previewCmd(cfg *config, s *schema.Schema, log *zap.Logger, in []byte, out io.Writer) error {
	if _, ok := s.Section(cfg.section); !ok {
		names := lo.Map(s.Sections, func(r *schema.SectionRule, _ int) string { return r.Name })
		return fmt.Errorf("schema has no section %q, have %v", cfg.section, names)
	}
	sections, err := parseSections(cfg, s, log, in)
	if err != nil {
		return err
	}
	sec, ok := lo.Find(sections, func(sec *model.Section) bool { return sec.Name == cfg.section })
	if !ok {
		return fmt.Errorf("no section %q in document", cfg.section)
	}
	serializer := preview.FromSchema(s)
	switch sec.Type {
	case model.TextSection:
		return serializer.Render(out, sec.Doc)
	case model.TextListSection:
		for _, sub := range sec.Texts {
			id, _ := sub.ID()
			if _, err := fmt.Fprintf(out, `<section id="%s">`, html.EscapeString(id)); err != nil {
				return err
			}
			if err := serializer.Render(out, sub.Content); err != nil {
				return err
			}
			if _, err := io.WriteString(out, "</section>\n"); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("section %q of type %s has no preview", sec.Name, sec.Type)
}
