package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Preset bundles a mode, palette and optional reducer under one name
type Preset struct {
	Name    string `yaml:"name" json:"name" validate:"required,max=64,presetname"`
	Mode    string `yaml:"mode" json:"mode" validate:"required"`
	Palette string `yaml:"palette" json:"palette,omitempty"`
	Reducer string `yaml:"reducer" json:"reducer,omitempty" validate:"omitempty,oneof=average luminance luma bt601 desaturate"`
	Workers int    `yaml:"workers" json:"workers,omitempty" validate:"gte=0,lte=256"`
}

// PresetFile is the on-disk layout of HALFTONE_PRESETS
type PresetFile struct {
	Palettes map[string][]string `yaml:"palettes" validate:"dive,keys,presetname,endkeys,min=1,dive,color"`
	Presets  []Preset            `yaml:"presets" validate:"dive"`
}

// Presets is the merged set of built-in and file presets
type Presets struct {
	Palettes map[string][]string
	order    []string
	byName   map[string]Preset
}

var builtinPresets = []Preset{
	{Name: "eink", Mode: "floyd", Palette: "bw", Reducer: "luma"},
	{Name: "newspaper", Mode: "bayer8", Palette: "bw", Reducer: "bt601"},
	{Name: "poster", Mode: "atkinson", Palette: "basic"},
}

var (
	presetNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
	hexColorRegex   = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	tripletRegex    = regexp.MustCompile(`^\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("presetname", func(fl validator.FieldLevel) bool {
		return presetNameRegex.MatchString(fl.Field().String())
	})
	v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return hexColorRegex.MatchString(s) || tripletRegex.MatchString(s)
	})
	return v
}

// DefaultPresets returns only the built-in presets
func DefaultPresets() *Presets {
	p := &Presets{Palettes: map[string][]string{}, byName: map[string]Preset{}}
	for _, preset := range builtinPresets {
		p.add(preset)
	}
	return p
}

// LoadPresets reads the preset file at path and merges it over the
// built-ins. An empty path yields the built-ins.
func LoadPresets(path string) (*Presets, error) {
	if path == "" {
		return DefaultPresets(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets decodes and validates a preset file
func ParsePresets(data []byte) (*Presets, error) {
	var file PresetFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	if err := newValidator().Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid presets: %s", validationErrorMessage(err))
	}

	p := DefaultPresets()
	seen := map[string]bool{}
	for _, preset := range file.Presets {
		if seen[preset.Name] {
			return nil, fmt.Errorf("invalid presets: duplicate preset %q", preset.Name)
		}
		seen[preset.Name] = true
		p.add(preset)
	}
	for name, colors := range file.Palettes {
		p.Palettes[name] = colors
	}
	return p, nil
}

func (p *Presets) add(preset Preset) {
	if _, exists := p.byName[preset.Name]; !exists {
		p.order = append(p.order, preset.Name)
	}
	p.byName[preset.Name] = preset
}

// Get looks a preset up by name
func (p *Presets) Get(name string) (Preset, bool) {
	preset, ok := p.byName[strings.ToLower(name)]
	return preset, ok
}

// List returns presets in definition order, built-ins first
func (p *Presets) List() []Preset {
	out := make([]Preset, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.byName[name])
	}
	return out
}

// validationErrorMessage returns a readable message for the first failed
// field.
func validationErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	ve := verrs[0]
	switch ve.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", ve.Namespace())
	case "presetname":
		return fmt.Sprintf("%s %q must be lowercase letters, digits, '-' or '_'", ve.Namespace(), ve.Value())
	case "color":
		return fmt.Sprintf("%s %q is not a color (use #rrggbb, #rgb or r,g,b)", ve.Namespace(), ve.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", ve.Namespace(), ve.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", ve.Namespace(), ve.Param())
	}
	return fmt.Sprintf("%s failed %s validation", ve.Namespace(), ve.Tag())
}
