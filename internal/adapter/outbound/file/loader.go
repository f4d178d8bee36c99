// Package file loads policy corpora and request documents from disk in
// their JSON and YAML renditions. The engine consumes the parsed document
// tree; this package is the only place that knows about file formats.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/policy"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/provider"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/request"
)

// policyFile is the on-disk shape of one policy source: exactly one of the
// two fields is set.
type policyFile struct {
	Policy    *policy.PolicyDoc    `json:"policy,omitempty" yaml:"policy,omitempty"`
	PolicySet *policy.PolicySetDoc `json:"policySet,omitempty" yaml:"policySet,omitempty"`
}

// LoadCorpus expands every location and parses each resulting file into a
// policy document. Locations follow the provider's file://DIR/*SUFFIX
// pattern syntax; anything else is treated as a plain path.
func LoadCorpus(locations []string) ([]provider.Document, error) {
	var docs []provider.Document
	for _, loc := range locations {
		paths, err := provider.ExpandLocation(loc)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("location %s matched no files", loc)
		}
		for _, path := range paths {
			doc, err := LoadPolicyFile(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// LoadPolicyFile parses one policy file, selecting the codec by extension:
// .json for JSON, .yaml/.yml for YAML.
func LoadPolicyFile(path string) (provider.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return provider.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var pf policyFile
	if err := unmarshal(path, data, &pf); err != nil {
		return provider.Document{}, err
	}
	if (pf.Policy == nil) == (pf.PolicySet == nil) {
		return provider.Document{}, fmt.Errorf("%s: document must hold exactly one policy or policySet", path)
	}
	return provider.Document{Policy: pf.Policy, PolicySet: pf.PolicySet, Source: path}, nil
}

// LoadRequest parses one request document, selecting the codec by
// extension.
func LoadRequest(path string) (*request.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var req request.Request
	if err := unmarshal(path, data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func unmarshal(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unsupported extension (want .json, .yaml, or .yml)", path)
	}
	return nil
}
