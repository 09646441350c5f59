package keymap

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed profile.schema.json
var profileSchemaJSON []byte

const profileSchemaURL = "profile.schema.json"

var compiledProfileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(profileSchemaURL, bytes.NewReader(profileSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(profileSchemaURL)
})

// ValidationError reports a profile document that failed structural or semantic checks.
// A profile that fails validation never becomes active.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid profile %s: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Profile is a validated, immutable key identity -> action mapping.
type Profile struct {
	Name        string
	Version     int
	Description string

	mappings map[string]ActionDescriptor
}

type profileDocument struct {
	Name        string                     `json:"name"`
	Version     int                        `json:"version,omitempty"`
	Description string                     `json:"description,omitempty"`
	Keymaps     map[string]mappingDocument `json:"keymaps"`
}

type mappingDocument struct {
	Kind        string   `json:"kind"`
	Action      string   `json:"action"`
	Value       any      `json:"value,omitempty"`
	Modifiers   []string `json:"modifiers,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Parse validates data against the profile schema and builds a Profile.
// source names the document in errors (usually its path).
func Parse(data []byte, source string) (*Profile, error) {
	schema, err := compiledProfileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile profile schema: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("not valid JSON: %w", err)}
	}
	if err := schema.Validate(raw); err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}

	var doc profileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}

	profile := &Profile{
		Name:        doc.Name,
		Version:     doc.Version,
		Description: doc.Description,
		mappings:    make(map[string]ActionDescriptor, len(doc.Keymaps)),
	}
	if profile.Version == 0 {
		profile.Version = 1
	}

	keys := make([]string, 0, len(doc.Keymaps))
	for key := range doc.Keymaps {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := doc.Keymaps[key]
		identity, err := ParseIdentity(key, entry.Modifiers)
		if err != nil {
			return nil, &ValidationError{Source: source, Err: err}
		}
		if existing, ok := profile.mappings[identity]; ok {
			return nil, &ValidationError{
				Source: source,
				Err:    fmt.Errorf("keys %q and %q both map %s", existing.Key, key, identity),
			}
		}
		profile.mappings[identity] = ActionDescriptor{
			Key:         key,
			Kind:        ActionKind(entry.Kind),
			Action:      entry.Action,
			Value:       entry.Value,
			Modifiers:   append([]string(nil), entry.Modifiers...),
			Description: entry.Description,
		}
	}

	return profile, nil
}

// Lookup returns the action bound to a canonical identity.
func (p *Profile) Lookup(identity string) (ActionDescriptor, bool) {
	if p == nil {
		return ActionDescriptor{}, false
	}
	action, ok := p.mappings[identity]
	return action, ok
}

func (p *Profile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.mappings)
}

// Identities returns the mapped identities in sorted order.
func (p *Profile) Identities() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.mappings))
	for identity := range p.mappings {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}
