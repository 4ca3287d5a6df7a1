package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"rptcore/common"
	"rptcore/layout"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	TargetConfig struct {
		Name string `yaml:"name" validate:"required"`
		// points, 0 disables pagination
		PageHeight float64 `yaml:"page_height" validate:"gte=0"`
	}

	LayoutConfig struct {
		Targets               []TargetConfig `yaml:"targets" validate:"min=1,unique=Name,dive"`
		Workers               int            `yaml:"workers" validate:"gte=0"`
		HeaderRowHeight       float64        `yaml:"header_row_height" validate:"gte=0"`
		OutputNameTemplate    string         `yaml:"output_name_template"`
		FileNameTransliterate bool           `yaml:"file_name_transliterate"`
	}

	CrosstabConfig struct {
		DetailMode common.DetailMode `yaml:"detail_mode" validate:"gte=0"`
	}

	SnapConfig struct {
		Grid           float64   `yaml:"grid" validate:"gte=0"`
		Threshold      float64   `yaml:"threshold" validate:"gte=0"`
		EnableGrid     bool      `yaml:"enable_grid"`
		EnableElements bool      `yaml:"enable_elements"`
		EnableGuides   bool      `yaml:"enable_guides"`
		PageGuides     bool      `yaml:"page_guides"`
		Guides         []float64 `yaml:"guides"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Layout    LayoutConfig   `yaml:"layout"`
		Crosstab  CrosstabConfig `yaml:"crosstab"`
		Snap      SnapConfig     `yaml:"snap"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// PageHeightMicro returns target page height in micro-points.
func (t TargetConfig) PageHeightMicro() int64 {
	return layout.FromPoints(t.PageHeight)
}

// GuidesMicro returns configured guide positions in micro-points.
func (s SnapConfig) GuidesMicro() []int64 {
	out := make([]int64, 0, len(s.Guides))
	for _, g := range s.Guides {
		out = append(out, layout.FromPoints(g))
	}
	return out
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// NOTE: sequences (targets, guides) from the file replace defaults as a
	// whole
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
