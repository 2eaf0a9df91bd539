package syncer

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/jdmartin/aictl/pkg/fileutil"
	"github.com/jdmartin/aictl/pkg/frontmatter"
)

// Meta is the YAML metadata half of an agent definition.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Tier selects the capability tier whose per-client model identifier
	// is written into the rendered agent's model field.
	Tier string `yaml:"tier,omitempty"`

	// Clients restricts which clients receive this agent. Empty means all.
	Clients []string `yaml:"clients,omitempty"`
}

// Definition is one agent under the global agents directory: either a
// paired YAML metadata file and Markdown body sharing a base filename, or
// a single Markdown file carrying its metadata as frontmatter. Read at
// sync time, never mutated in place.
type Definition struct {
	// Name is the base filename shared by the pair.
	Name string

	Meta Meta

	// Body is the Markdown prompt, possibly containing {{model:<tier>}}
	// placeholder tokens.
	Body string
}

// modelToken matches placeholder tier tokens in agent bodies.
var modelToken = regexp.MustCompile(`\{\{model:([A-Za-z0-9_-]+)\}\}`)

// SubstituteModels replaces every {{model:<tier>}} token in body with the
// client's model identifier for that tier. Unmapped tiers are left
// verbatim so the gap stays visible in the rendered file.
func SubstituteModels(body string, mapping *ModelMapping, clientName string) string {
	return modelToken.ReplaceAllStringFunc(body, func(token string) string {
		tier := modelToken.FindStringSubmatch(token)[1]
		if model := mapping.Model(tier, clientName); model != "" {
			return model
		}
		return token
	})
}

// LoadDefinitions enumerates agent definitions in dir, sorted by name.
// Pairs that cannot be read or parsed are returned as ItemErrors alongside
// the good definitions; one broken pair never hides the rest.
func LoadDefinitions(dir string) ([]Definition, []ItemError) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []ItemError{{Err: errors.Wrap(err, "listing agents directory")}}
	}

	paired := map[string]bool{}
	standalone := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		name := strings.TrimSuffix(e.Name(), ext)
		switch ext {
		case ".yaml", ".yml":
			paired[name] = true
		case ".md":
			standalone[name] = true
		}
	}

	names := make([]string, 0, len(paired)+len(standalone))
	for name := range paired {
		names = append(names, name)
		delete(standalone, name)
	}
	for name := range standalone {
		names = append(names, name)
	}
	sort.Strings(names)

	var defs []Definition
	var errs []ItemError
	for _, name := range names {
		var def Definition
		var err error
		if paired[name] {
			def, err = loadDefinition(dir, name)
		} else {
			def, err = loadStandalone(dir, name)
		}
		if err != nil {
			errs = append(errs, ItemError{Agent: name, Err: err})
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs
}

func loadDefinition(dir, name string) (Definition, error) {
	metaData, err := readEither(filepath.Join(dir, name+".yaml"), filepath.Join(dir, name+".yml"))
	if err != nil {
		return Definition{}, errors.Wrap(err, "reading metadata")
	}

	var meta Meta
	if err := yaml.Unmarshal(metaData, &meta); err != nil {
		return Definition{}, errors.Wrap(err, "parsing metadata")
	}
	if meta.Name == "" {
		meta.Name = name
	}

	body, err := fileutil.ReadFileWithLimit(filepath.Join(dir, name+".md"))
	if err != nil {
		return Definition{}, errors.Wrap(err, "reading body")
	}

	return Definition{Name: name, Meta: meta, Body: string(body)}, nil
}

// loadStandalone reads a single-file definition: a Markdown document with
// its metadata as YAML frontmatter, the same shape sync itself writes into
// client directories.
func loadStandalone(dir, name string) (Definition, error) {
	data, err := fileutil.ReadFileWithLimit(filepath.Join(dir, name+".md"))
	if err != nil {
		return Definition{}, errors.Wrap(err, "reading body")
	}

	var meta Meta
	body, err := frontmatter.Parse(data, &meta)
	if err != nil {
		return Definition{}, errors.Wrap(err, "parsing metadata")
	}
	if meta.Name == "" {
		meta.Name = name
	}

	return Definition{Name: name, Meta: meta, Body: string(body)}, nil
}

func readEither(primary, fallback string) ([]byte, error) {
	data, err := fileutil.ReadFileWithLimit(primary)
	if err == nil {
		return data, nil
	}
	return fileutil.ReadFileWithLimit(fallback)
}

// targets reports whether this definition applies to the given client.
func (d Definition) targets(clientName string) bool {
	if len(d.Meta.Clients) == 0 {
		return true
	}
	for _, c := range d.Meta.Clients {
		if c == clientName {
			return true
		}
	}
	return false
}
