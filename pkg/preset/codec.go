package preset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Format is a preset encoding.
type Format string

const (
	FormatText Format = "text"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Record types of the text format.
const (
	recordSetting = "ApplicationSetting"
	recordControl = "Control"
	separator     = "|"
)

// FormatFromPath picks the format for a file name by its extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".preset", ".txt", "":
		return FormatText, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "no preset format for %q", path)
}

// =============================================================================
// Files
// =============================================================================

// Load reads a preset file in the format given by its extension.
func Load(path string) (*Preset, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "preset %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open preset %s", path)
	}
	defer f.Close()
	p, err := Decode(f, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "read preset %s", path)
	}
	return p, nil
}

// Save writes p to path in the format given by its extension.
func Save(p *Preset, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, p, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write preset %s", path)
	}
	return nil
}

// =============================================================================
// Codecs
// =============================================================================

// Encode writes p in the given format.
func Encode(w io.Writer, p *Preset, format Format) error {
	var err error
	switch format {
	case FormatText:
		err = encodeText(w, p)
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(p); err == nil {
			err = enc.Close()
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown preset format %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s preset", format)
	}
	return nil
}

// Decode reads a preset in the given format.
func Decode(r io.Reader, format Format) (*Preset, error) {
	p := &Preset{}
	switch format {
	case FormatText:
		return decodeText(r)
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "decode toml preset")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(p); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "decode yaml preset")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown preset format %q", format)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func encodeText(w io.Writer, p *Preset) error {
	bw := bufio.NewWriter(w)
	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(bw, "%s|%s|%s\n", recordSetting, k, p.Settings[k])
	}
	for _, s := range p.Sections {
		fmt.Fprintf(bw, "%s|%s\n", s.Kind, s.Name)
		for _, v := range s.Params {
			fmt.Fprintf(bw, "%s|%s|%s\n", recordControl, v.Name, v.Value)
		}
	}
	return bw.Flush()
}

// decodeText reads the line format. A Control line belongs to the section
// opened last; Control lines before any section are dropped.
func decodeText(r io.Reader) (*Preset, error) {
	p := &Preset{}
	current := -1
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		tokens := strings.SplitN(line, separator, 3)
		switch {
		case len(tokens) < 2:
			continue
		case slices.Contains(model.Kinds, tokens[0]):
			p.Sections = append(p.Sections, Section{Kind: tokens[0], Name: tokens[1]})
			current = len(p.Sections) - 1
		case tokens[0] == recordControl && len(tokens) == 3:
			if current >= 0 {
				s := &p.Sections[current]
				s.Params = append(s.Params, param.Value{Name: tokens[1], Value: tokens[2]})
			}
		case tokens[0] == recordSetting && len(tokens) == 3:
			if p.Settings == nil {
				p.Settings = map[string]string{}
			}
			p.Settings[tokens[1]] = tokens[2]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read text preset")
	}
	return p, nil
}
