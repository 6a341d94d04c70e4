// Package domain provides the core entities for Automation Hub collection
// discovery and installation.
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultModuleType is the content type assigned to modules when the hub
// does not report one.
const DefaultModuleType = "module"

// Role is a role shipped inside a collection.
type Role struct {
	// Name is the role name as reported by the hub.
	Name string

	// Description is a short description, possibly empty.
	Description string

	// ReadmeMarkdown is the role README converted to markdown, possibly empty.
	ReadmeMarkdown string
}

// Module is a module (or plugin) shipped inside a collection.
type Module struct {
	// Name is the module name as reported by the hub.
	Name string

	// Description is a short description, possibly empty.
	Description string

	// ModuleType is the content type, defaulting to "module".
	ModuleType string
}

// NewModule creates a module, applying the default module type.
func NewModule(name, description, moduleType string) Module {
	if moduleType == "" {
		moduleType = DefaultModuleType
	}
	return Module{Name: name, Description: description, ModuleType: moduleType}
}

// Contents aggregates the enrichment data assembled from the version detail
// and docs-blob endpoints.
type Contents struct {
	Description    string
	Roles          []Role
	Modules        []Module
	ReadmeMarkdown string
}

// EmptyContents returns the canonical empty value used when enrichment fails
// partway. Detail fetches degrade to it instead of failing.
func EmptyContents() Contents {
	return Contents{}
}

// IsEmpty reports whether the contents carry no enrichment data.
func (c Contents) IsEmpty() bool {
	return c.Description == "" && len(c.Roles) == 0 && len(c.Modules) == 0 && c.ReadmeMarkdown == ""
}

// Collection is an immutable snapshot of a collection discovered on the hub.
//
// Namespace and Name are non-empty once constructed from a successful detail
// fetch; Version may be empty only for list-level entries that have not been
// detail-fetched yet.
type Collection struct {
	Namespace      string
	Name           string
	Version        string
	Description    string
	DownloadURL    string
	RepositoryURL  string
	Dependencies   map[string]string
	Roles          []Role
	Modules        []Module
	ReadmeMarkdown string
}

// FQCN returns the fully qualified collection name.
func (c Collection) FQCN() string {
	return c.Namespace + "." + c.Name
}

// InstallCommand returns the ansible-galaxy command that installs this
// collection, including a --server argument when a repository URL is known.
func (c Collection) InstallCommand() string {
	var b strings.Builder
	b.WriteString("ansible-galaxy collection install ")
	b.WriteString(c.FQCN())
	if c.Version != "" {
		b.WriteString(":" + c.Version)
	}
	if c.RepositoryURL != "" {
		b.WriteString(" --server=" + c.RepositoryURL)
	}
	return b.String()
}

// summaryLimit caps how many roles and modules a summary names.
const summaryLimit = 5

// Summary renders a short markdown description of the collection suitable
// for listing many collections at once.
func (c Collection) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s", c.FQCN())
	if c.Version != "" {
		fmt.Fprintf(&b, " (%s)", c.Version)
	}
	b.WriteString("\n")
	if c.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Description)
	}
	if len(c.Roles) > 0 {
		fmt.Fprintf(&b, "\nRoles: %s\n", truncatedNames(roleNames(c.Roles)))
	}
	if len(c.Modules) > 0 {
		fmt.Fprintf(&b, "\nModules: %s\n", truncatedNames(moduleNames(c.Modules)))
	}
	return b.String()
}

// Detail renders the full markdown description of the collection, including
// the install command, per-role READMEs and dependencies.
func (c Collection) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", c.FQCN())
	if c.Version != "" {
		fmt.Fprintf(&b, "\nVersion: %s\n", c.Version)
	}
	fmt.Fprintf(&b, "\nInstall: `%s`\n", c.InstallCommand())
	if c.DownloadURL != "" {
		fmt.Fprintf(&b, "\nDownload URL: %s\n", c.DownloadURL)
	}
	if c.RepositoryURL != "" {
		fmt.Fprintf(&b, "\nRepository: %s\n", c.RepositoryURL)
	}
	if c.Description != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", c.Description)
	}
	if len(c.Roles) > 0 {
		b.WriteString("\n## Roles\n")
		for _, role := range c.Roles {
			fmt.Fprintf(&b, "\n### %s\n", role.Name)
			if role.Description != "" {
				fmt.Fprintf(&b, "\n%s\n", role.Description)
			}
			if role.ReadmeMarkdown != "" {
				fmt.Fprintf(&b, "\n%s\n", role.ReadmeMarkdown)
			}
		}
	}
	if len(c.Modules) > 0 {
		b.WriteString("\n## Modules\n\n")
		for _, module := range c.Modules {
			fmt.Fprintf(&b, "- %s (%s)", module.Name, module.ModuleType)
			if module.Description != "" {
				fmt.Fprintf(&b, ": %s", module.Description)
			}
			b.WriteString("\n")
		}
	}
	if len(c.Dependencies) > 0 {
		b.WriteString("\n## Dependencies\n\n")
		for _, fqcn := range sortedKeys(c.Dependencies) {
			fmt.Fprintf(&b, "- %s: %s\n", fqcn, c.Dependencies[fqcn])
		}
	}
	if c.ReadmeMarkdown != "" {
		fmt.Fprintf(&b, "\n## README\n\n%s\n", c.ReadmeMarkdown)
	}
	return b.String()
}

// MatchesKeyword reports whether the keyword matches the collection's
// namespace, name or description, case-insensitively.
func (c Collection) MatchesKeyword(keyword string) bool {
	haystack := strings.ToLower(c.Namespace + " " + c.Name + " " + c.Description)
	return strings.Contains(haystack, strings.ToLower(keyword))
}

func roleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}

func moduleNames(modules []Module) []string {
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name
	}
	return names
}

func truncatedNames(names []string) string {
	if len(names) <= summaryLimit {
		return strings.Join(names, ", ")
	}
	shown := strings.Join(names[:summaryLimit], ", ")
	return fmt.Sprintf("%s, and %d more", shown, len(names)-summaryLimit)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
