package items

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pairsort/internal/sorter"
)

//go:embed schema.cue
var schemaCUE string

// MaxIDLength is the longest id accepted, in bytes.
const MaxIDLength = 256

// MinItems is the smallest list worth ranking.
const MinItems = 2

// List is a named item list.
type List struct {
	Name  string        `json:"name,omitempty" yaml:"name,omitempty"`
	Items []sorter.Item `json:"items" yaml:"items"`
}

// ErrUnsupportedFormat is returned for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported item file format")

// ValidationError describes one invalid item.
type ValidationError struct {
	Index   int
	ID      string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Message
	}
	return fmt.Sprintf("items[%d] (%q): %s", e.Index, e.ID, e.Message)
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Load reads, parses and validates an item file.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item file: %w", err)
	}

	var list *List
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		list, err = ParseYAML(data)
	case ".cue":
		list, err = ParseCUE(filepath.Base(path), data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if list.Name == "" {
		list.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := Validate(list.Items); err != nil {
		return nil, err
	}
	return list, nil
}

// entry accepts either a mapping or a bare string. Node.Decode does not
// inherit KnownFields, so mapping keys are checked by hand.
type entry sorter.Item

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*e = entry{ID: s, Label: s}
		return nil
	}
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			switch key := node.Content[i]; key.Value {
			case "id", "label", "attrs":
			default:
				return fmt.Errorf("line %d: field %s not found in item", key.Line, key.Value)
			}
		}
	}
	var it struct {
		ID    string            `yaml:"id"`
		Label string            `yaml:"label"`
		Attrs map[string]string `yaml:"attrs"`
	}
	if err := node.Decode(&it); err != nil {
		return err
	}
	*e = entry{ID: it.ID, Label: it.Label, Attrs: it.Attrs}
	return nil
}

// ParseYAML decodes a YAML or JSON item document.
func ParseYAML(data []byte) (*List, error) {
	var doc struct {
		Name  string  `yaml:"name"`
		Items []entry `yaml:"items"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	list := &List{Name: doc.Name, Items: make([]sorter.Item, len(doc.Items))}
	for i, e := range doc.Items {
		list.Items[i] = sorter.Item(e)
	}
	return list, nil
}

// ParseCUE evaluates a CUE item document against the embedded schema.
func ParseCUE(filename string, data []byte) (*List, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("compile cue: %w", err)
	}

	v := schema.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate cue: %w", err)
	}

	var list List
	if err := v.Decode(&list); err != nil {
		return nil, fmt.Errorf("decode cue: %w", err)
	}
	return &list, nil
}

// Validate NFC-normalizes ids in place and checks the list can be ranked:
// at least MinItems items, non-empty ids no longer than MaxIDLength bytes,
// no duplicates after normalization.
func Validate(items []sorter.Item) error {
	if len(items) < MinItems {
		return &ValidationError{
			Index:   -1,
			Message: fmt.Sprintf("need at least %d items, got %d", MinItems, len(items)),
		}
	}

	seen := make(map[string]int, len(items))
	for i := range items {
		id := norm.NFC.String(items[i].ID)
		items[i].ID = id

		switch {
		case strings.TrimSpace(id) == "":
			return &ValidationError{Index: i, ID: id, Message: "id is required"}
		case len(id) > MaxIDLength:
			return &ValidationError{Index: i, ID: id, Message: fmt.Sprintf("id longer than %d bytes", MaxIDLength)}
		}
		if first, dup := seen[id]; dup {
			return &ValidationError{Index: i, ID: id, Message: fmt.Sprintf("duplicate of items[%d]", first)}
		}
		seen[id] = i

		if items[i].Label == "" {
			items[i].Label = id
		}
	}
	return nil
}
