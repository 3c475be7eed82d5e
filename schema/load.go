package schema

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type editorConfig struct {
	TEI *Schema `yaml:"tei"`
}

type editionConfig struct {
	SphinxConfig struct {
		TEI struct {
			Blocks []*NodeRule `yaml:"blocks"`
			Marks  []*NodeRule `yaml:"marks"`
		} `yaml:"tei"`
	} `yaml:"sphinx_config"`
}

// Decode reads the tei section of an editor configuration file and validates
// it. An empty file yields an empty schema.
func Decode(r io.Reader) (*Schema, error) {
	var cfg editorConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	s := cfg.TEI
	if s == nil {
		s = &Schema{}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the schema from an editor configuration file such as
// uEditor.yaml.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// DecodeEdition reads the extra block and mark rules an edition declares
// under sphinx_config.tei.
func DecodeEdition(r io.Reader) (blocks, marks []*NodeRule, err error) {
	var cfg editionConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("decoding edition: %w", err)
	}
	return cfg.SphinxConfig.TEI.Blocks, cfg.SphinxConfig.TEI.Marks, nil
}

// LoadEdition extends s with the rules of an edition configuration file such
// as uEdition.yaml. The result is validated.
func LoadEdition(s *Schema, path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	blocks, marks, err := DecodeEdition(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := s.Extend(blocks, marks)
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
