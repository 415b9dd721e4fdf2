package model

import (
	"fmt"
	"strings"
)

// ResourceType is a category of asset kept in the asset library.
type ResourceType string

const (
	ResourceAgents       ResourceType = "agents"
	ResourceInstructions ResourceType = "instructions"
	ResourcePrompts      ResourceType = "prompts"
	ResourceCollections  ResourceType = "collections"
	ResourceSkills       ResourceType = "skills"
	ResourceHooks        ResourceType = "hooks"
	ResourcePlugins      ResourceType = "plugins"
)

// IsValid returns true if the resource type is recognized.
func (r ResourceType) IsValid() bool {
	switch r {
	case ResourceAgents, ResourceInstructions, ResourcePrompts, ResourceCollections,
		ResourceSkills, ResourceHooks, ResourcePlugins:
		return true
	default:
		return false
	}
}

// AllResourceTypes returns all supported resource types.
func AllResourceTypes() []ResourceType {
	return []ResourceType{
		ResourceAgents,
		ResourceCollections,
		ResourceHooks,
		ResourceInstructions,
		ResourcePlugins,
		ResourcePrompts,
		ResourceSkills,
	}
}

// String returns the string representation of the resource type.
func (r ResourceType) String() string {
	return string(r)
}

// Mode returns the default sync mode for the type.
func (r ResourceType) Mode() SyncMode {
	switch r {
	case ResourceSkills, ResourceHooks, ResourcePlugins:
		return SyncModeDirectory
	default:
		return SyncModeFile
	}
}

// MarkerFile returns the file a directory asset must contain to be synced.
// File-mode types return "".
func (r ResourceType) MarkerFile() string {
	switch r {
	case ResourceSkills:
		return "SKILL.md"
	case ResourceHooks, ResourcePlugins:
		return "README.md"
	default:
		return ""
	}
}

// Extensions returns the file extensions accepted for the type.
func (r ResourceType) Extensions() []string {
	switch r {
	case ResourceAgents:
		return []string{".agent.md", ".md"}
	case ResourceInstructions:
		return []string{".instructions.md", ".md"}
	case ResourcePrompts:
		return []string{".prompt.md", ".md"}
	case ResourceCollections:
		return []string{".json", ".yml", ".yaml"}
	default:
		return nil
	}
}

// AssetName strips the type's type-specific suffix from a file name, so
// "reviewer.agent.md" becomes "reviewer".
func (r ResourceType) AssetName(file string) string {
	for _, ext := range r.Extensions() {
		if strings.HasSuffix(file, ext) {
			return strings.TrimSuffix(file, ext)
		}
	}
	return file
}

// Singular returns the singular noun for the type, used in messages.
func (r ResourceType) Singular() string {
	return strings.TrimSuffix(string(r), "s")
}

// ParseResourceType converts a string to a ResourceType. Singular forms are
// accepted.
func ParseResourceType(s string) (ResourceType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	r := ResourceType(normalized)
	if r.IsValid() {
		return r, nil
	}
	if plural := ResourceType(normalized + "s"); plural.IsValid() {
		return plural, nil
	}
	return "", fmt.Errorf("unknown resource type %q", s)
}
