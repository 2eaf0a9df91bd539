package syncer

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/jdmartin/aictl/internal/config"
)

// ModelMapping maps abstract capability tiers to concrete per-client model
// identifiers. Loaded once per sync run; read-only afterwards.
//
// On disk (models.yaml):
//
//	tiers:
//	  smart:
//	    claude-code: sonnet
//	    codex: gpt-5
//	    gemini: gemini-2.5-pro
type ModelMapping struct {
	Tiers map[string]map[string]string `yaml:"tiers"`
}

// LoadModelMapping reads the model mapping document. An absent file yields
// an empty mapping (substitution becomes a no-op); a malformed file is a
// *config.ParseError.
func LoadModelMapping(path string) (*ModelMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ModelMapping{}, nil
		}
		return nil, &config.ParseError{Path: path, Err: err}
	}

	var m ModelMapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &config.ParseError{Path: path, Err: err}
	}
	return &m, nil
}

// Model returns the model identifier for a tier and client, or "" when
// the tier or client is not mapped.
func (m *ModelMapping) Model(tier, clientName string) string {
	if m == nil || m.Tiers == nil {
		return ""
	}
	return m.Tiers[tier][clientName]
}
