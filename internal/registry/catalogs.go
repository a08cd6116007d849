package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrCatalogFormat reports a remote catalog response whose JSON shape does
// not match what the service documents.
var ErrCatalogFormat = errors.New("unexpected catalog response shape")

// Theme is one Clip-Zip-Ship collection theme with its bilingual titles.
type Theme struct {
	UUID    string `json:"theme_uuid"`
	TitleEN string `json:"-"`
	TitleFR string `json:"-"`
}

type themeEntry struct {
	UUID  string `json:"theme_uuid"`
	Title struct {
		EN string `json:"en"`
		FR string `json:"fr"`
	} `json:"title"`
}

// AddThemes ingests the czs_themes response body. Every entry must carry a
// UUID and both locale titles, else the catalog load itself fails.
func (r *Registry) AddThemes(raw []byte) error {
	var entries []themeEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("%w: czs_themes: %v", ErrCatalogFormat, err)
	}

	themes := make([]Theme, 0, len(entries))
	for i, entry := range entries {
		if entry.UUID == "" || entry.Title.EN == "" || entry.Title.FR == "" {
			return fmt.Errorf("%w: czs_themes entry %d is missing uuid or a locale title", ErrCatalogFormat, i)
		}
		themes = append(themes, Theme{UUID: entry.UUID, TitleEN: entry.Title.EN, TitleFR: entry.Title.FR})
	}

	r.mu.Lock()
	r.themes = themes
	r.mu.Unlock()
	return nil
}

// Themes returns the cached CSZ themes.
func (r *Registry) Themes() []Theme {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Theme, len(r.themes))
	copy(out, r.themes)
	return out
}

// ResolveTheme maps a theme selector to its UUID. The selector may already
// be a UUID, or an English or French title. An empty selector resolves to
// the empty string (no theme).
func (r *Registry) ResolveTheme(selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return "", nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, theme := range r.themes {
		if theme.UUID == selector || theme.TitleEN == selector || theme.TitleFR == selector {
			return theme.UUID, nil
		}
	}
	return "", fmt.Errorf("unknown CSZ theme %q", selector)
}

type departmentEntry struct {
	Department string `json:"qgis_data_store_root_subpath"`
}

// AddDepartments ingests the ddr_departments response body. The service
// returns either a plain string list or objects naming the data-store
// subpath per department.
func (r *Registry) AddDepartments(raw []byte) error {
	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return r.setDepartments(plain)
	}

	var entries []departmentEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("%w: ddr_departments: %v", ErrCatalogFormat, err)
	}
	names := make([]string, 0, len(entries))
	for i, entry := range entries {
		if entry.Department == "" {
			return fmt.Errorf("%w: ddr_departments entry %d has no department name", ErrCatalogFormat, i)
		}
		names = append(names, entry.Department)
	}
	return r.setDepartments(names)
}

func (r *Registry) setDepartments(names []string) error {
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: ddr_departments entry %d is empty", ErrCatalogFormat, i)
		}
	}
	r.mu.Lock()
	r.departments = names
	r.mu.Unlock()
	return nil
}

// Departments returns the cached department list.
func (r *Registry) Departments() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.departments))
	copy(out, r.departments)
	return out
}

// AddEmail ingests the ddr_my_email response body: either a bare JSON
// string or an object with an email field.
func (r *Registry) AddEmail(raw []byte) error {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil && strings.TrimSpace(plain) != "" {
		r.mu.Lock()
		r.email = strings.TrimSpace(plain)
		r.mu.Unlock()
		return nil
	}

	var entry struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil || strings.TrimSpace(entry.Email) == "" {
		return fmt.Errorf("%w: ddr_my_email", ErrCatalogFormat)
	}
	r.mu.Lock()
	r.email = strings.TrimSpace(entry.Email)
	r.mu.Unlock()
	return nil
}

// Email returns the cached user email.
func (r *Registry) Email() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.email
}
