package listing

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ScreenManifestDocument is a YAML document overriding screen definitions.
type ScreenManifestDocument struct {
	Version string           `json:"version" yaml:"version"`
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Screens []ManifestScreen `json:"screens" yaml:"screens"`
	Source  string           `json:"-" yaml:"-"`
}

// ManifestScreen overrides presentation settings of one screen. Zero values
// leave the built-in definition untouched.
type ManifestScreen struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	PageSize    int    `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Window      int    `json:"window,omitempty" yaml:"window,omitempty"`
	Ellipsis    *bool  `json:"ellipsis,omitempty" yaml:"ellipsis,omitempty"`
	ExportName  string `json:"export_name,omitempty" yaml:"export_name,omitempty"`
	ExportTitle string `json:"export_title,omitempty" yaml:"export_title,omitempty"`
	Disabled    bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*ScreenManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("listing: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("listing: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ScreenManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ScreenManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("listing: manifest is empty")
		}
		return nil, fmt.Errorf("listing: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ScreenManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("listing: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Screens))
	for idx, screen := range doc.Screens {
		if screen.Code == "" {
			return fmt.Errorf("listing: manifest screen at index %d is missing code", idx)
		}
		if _, exists := seen[screen.Code]; exists {
			return fmt.Errorf("listing: manifest duplicates screen code %s", screen.Code)
		}
		if screen.PageSize < 0 {
			return fmt.Errorf("listing: manifest screen %s has negative page_size", screen.Code)
		}
		if screen.Window < 0 {
			return fmt.Errorf("listing: manifest screen %s has negative window", screen.Code)
		}
		seen[screen.Code] = struct{}{}
	}
	return nil
}

// Lookup returns the override entry for code.
func (doc *ScreenManifestDocument) Lookup(code string) (ManifestScreen, bool) {
	if doc == nil {
		return ManifestScreen{}, false
	}
	for _, screen := range doc.Screens {
		if screen.Code == code {
			return screen, true
		}
	}
	return ManifestScreen{}, false
}

// Enabled reports whether the manifest leaves the screen enabled.
func (doc *ScreenManifestDocument) Enabled(code string) bool {
	entry, ok := doc.Lookup(code)
	return !ok || !entry.Disabled
}

// Apply merges the override for def.Code into def.
func (doc *ScreenManifestDocument) Apply(def ScreenDefinition) ScreenDefinition {
	entry, ok := doc.Lookup(def.Code)
	if !ok {
		return def
	}
	if entry.Name != "" {
		def.Name = entry.Name
	}
	if entry.Description != "" {
		def.Description = entry.Description
	}
	if entry.Category != "" {
		def.Category = entry.Category
	}
	if entry.Path != "" {
		def.Path = entry.Path
	}
	if entry.PageSize > 0 {
		def.PageSize = entry.PageSize
	}
	if entry.Window > 0 {
		def.Pagination.Width = entry.Window
	}
	if entry.Ellipsis != nil {
		def.Pagination.Ellipsis = *entry.Ellipsis
	}
	if entry.ExportName != "" {
		def.ExportName = entry.ExportName
	}
	if entry.ExportTitle != "" {
		def.ExportTitle = entry.ExportTitle
	}
	return def
}
