// Package capabilities decides which uploads the Pulse extraction service
// can analyze, from an embedded YAML description of supported formats.
package capabilities

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// formatConfig is the on-disk shape of the embedded format list.
type formatConfig struct {
	// MimeTypes are matched exactly against the upload's MIME type
	// (parameters stripped, case-insensitive).
	MimeTypes []string `yaml:"mime_types"`
	// Prefixes match any MIME type starting with the prefix, e.g. "text/".
	Prefixes []string `yaml:"prefixes"`
}

// Registry answers whether a MIME type is eligible for enrichment.
type Registry struct {
	mimeTypes map[string]struct{}
	prefixes  []string
	mu        sync.RWMutex
}

// NewRegistry creates a registry from the embedded YAML format list.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/extraction.yaml")
	if err != nil {
		return nil, fmt.Errorf("read extraction config: %w", err)
	}

	var cfg formatConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal extraction config: %w", err)
	}

	r := &Registry{
		mimeTypes: make(map[string]struct{}, len(cfg.MimeTypes)),
		prefixes:  make([]string, 0, len(cfg.Prefixes)),
	}
	for _, mt := range cfg.MimeTypes {
		r.mimeTypes[normalize(mt)] = struct{}{}
	}
	for _, p := range cfg.Prefixes {
		r.prefixes = append(r.prefixes, normalize(p))
	}

	return r, nil
}

// IsEnrichable reports whether files of the given MIME type should be sent
// to the extraction service.
func (r *Registry) IsEnrichable(mimeType string) bool {
	mt := normalize(mimeType)
	if mt == "" {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.mimeTypes[mt]; ok {
		return true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(mt, p) {
			return true
		}
	}
	return false
}

// normalize strips MIME parameters ("text/plain; charset=utf-8") and lowers
// the case.
func normalize(mimeType string) string {
	mt, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
