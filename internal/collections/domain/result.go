package domain

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DiscoveredCollection is the simplified projection of a collection carried
// in a discovery result.
type DiscoveredCollection struct {
	Namespace   string
	Name        string
	Version     string
	Description string
	RoleNames   []string
}

// FQCN returns the fully qualified collection name.
func (d DiscoveredCollection) FQCN() string {
	return d.Namespace + "." + d.Name
}

// RequirementsEntry is one entry of an Ansible requirements manifest.
type RequirementsEntry struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ToRequirementsEntry converts the collection into a requirements manifest
// entry.
func (d DiscoveredCollection) ToRequirementsEntry() RequirementsEntry {
	return RequirementsEntry{Name: d.FQCN(), Version: d.Version}
}

// RequirementsYAML renders a requirements.yml manifest for the given
// collections. An empty input produces an empty string, not an empty
// collections block.
func RequirementsYAML(collections []DiscoveredCollection) (string, error) {
	if len(collections) == 0 {
		return "", nil
	}

	entries := &yaml.Node{Kind: yaml.SequenceNode}
	for _, col := range collections {
		entry := col.ToRequirementsEntry()
		entries.Content = append(entries.Content, &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Value: "name"},
				{Kind: yaml.ScalarNode, Value: entry.Name},
				{Kind: yaml.ScalarNode, Value: "version"},
				// Versions are quoted so YAML never reinterprets them.
				{Kind: yaml.ScalarNode, Style: yaml.SingleQuotedStyle, Value: entry.Version},
			},
		})
	}

	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "collections"},
			entries,
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to render requirements manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to render requirements manifest: %w", err)
	}

	return "---\n" + buf.String(), nil
}

// DiscoveryStatus tags the outcome of a discovery run.
type DiscoveryStatus string

const (
	// DiscoveryDisabled means the hub integration is turned off.
	DiscoveryDisabled DiscoveryStatus = "disabled"

	// DiscoveryFailed means discovery could not complete.
	DiscoveryFailed DiscoveryStatus = "failed"

	// DiscoverySucceeded means discovery completed, possibly with zero matches.
	DiscoverySucceeded DiscoveryStatus = "success"
)

// DiscoveryResult is the outcome of a discovery run. Callers must switch on
// Status; Collections and RequirementsYAML are populated only on success.
type DiscoveryResult struct {
	Status           DiscoveryStatus
	Content          string
	Collections      []DiscoveredCollection
	RequirementsYAML string
}

// NewDisabledResult creates a result for a run skipped because the hub
// integration is disabled.
func NewDisabledResult(content string) DiscoveryResult {
	return DiscoveryResult{Status: DiscoveryDisabled, Content: content}
}

// NewFailedResult creates a result for a run that could not complete.
func NewFailedResult(content string) DiscoveryResult {
	return DiscoveryResult{Status: DiscoveryFailed, Content: content}
}

// NewSuccessResult creates a successful result, rendering the requirements
// manifest when at least one collection was found.
func NewSuccessResult(content string, collections []DiscoveredCollection) (DiscoveryResult, error) {
	manifest, err := RequirementsYAML(collections)
	if err != nil {
		return DiscoveryResult{}, err
	}
	return DiscoveryResult{
		Status:           DiscoverySucceeded,
		Content:          content,
		Collections:      collections,
		RequirementsYAML: manifest,
	}, nil
}

// IsSuccess reports whether the result carries discovered collections.
func (r DiscoveryResult) IsSuccess() bool {
	return r.Status == DiscoverySucceeded
}

// String returns a short human-readable summary of the result.
func (r DiscoveryResult) String() string {
	switch r.Status {
	case DiscoverySucceeded:
		return fmt.Sprintf("success (%d collections)", len(r.Collections))
	default:
		return string(r.Status)
	}
}

// FQCNSet returns the set of fully qualified names in the result, used for
// deduplication against collections an agent already knows about.
func (r DiscoveryResult) FQCNSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Collections))
	for _, col := range r.Collections {
		set[strings.ToLower(col.FQCN())] = struct{}{}
	}
	return set
}
