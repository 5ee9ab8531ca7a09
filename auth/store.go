package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"market-dashboard/utils"
)

// User is an entry of the profiles file.
type User struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
	Active  bool   `json:"active"`
}

// Profile is a named set of permission flags.
type Profile struct {
	Name        string          `json:"name"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}

// Permission flags checked by the renderers.
const (
	PermViewCompanies = "view_company_details"
	PermViewProjects  = "view_project_names"
	PermViewFinancial = "view_financial_data"
)

// profilesFile is the JSON layout of user_profiles.json. MenuPermissions maps
// profile → menu → allowed submenus.
type profilesFile struct {
	Profiles        map[string]Profile             `json:"profiles"`
	Users           map[string]User                `json:"users"`
	MenuPermissions map[string]map[string][]string `json:"menu_permissions"`
}

// Grant is the outcome of Authenticate.
type Grant struct {
	Granted     bool
	Email       string
	Name        string
	Profile     string
	ProfileName string
}

// Store answers who may see which dashboard sections.
type Store struct {
	file   profilesFile
	logger *utils.Logger
}

// LoadStore reads a profiles file.
func LoadStore(path string, logger *utils.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read %q: %w", path, err)
	}
	s, err := ParseStore(data, logger)
	if err != nil {
		return nil, fmt.Errorf("auth: %q: %w", path, err)
	}
	return s, nil
}

// ParseStore decodes a profiles file. User e-mails are matched
// case-insensitively.
func ParseStore(data []byte, logger *utils.Logger) (*Store, error) {
	var f profilesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	users := make(map[string]User, len(f.Users))
	for email, u := range f.Users {
		users[normalizeEmail(email)] = u
	}
	f.Users = users
	return &Store{file: f, logger: logger}, nil
}

// Authenticate grants access to known, active users.
func (s *Store) Authenticate(email string) Grant {
	email = normalizeEmail(email)
	u, ok := s.file.Users[email]
	if !ok {
		s.logger.Warn("[auth] User %s not authorized", email)
		return Grant{Email: email}
	}
	if !u.Active {
		s.logger.Warn("[auth] User %s is deactivated", email)
		return Grant{Email: email}
	}

	name := u.Name
	if name == "" {
		name = email
	}
	g := Grant{Granted: true, Email: email, Name: name, Profile: u.Profile, ProfileName: u.Profile}
	if p, ok := s.file.Profiles[u.Profile]; ok && p.Name != "" {
		g.ProfileName = p.Name
	}
	s.logger.Info("[auth] User authenticated: %s (%s)", g.Name, g.ProfileName)
	return g
}

// AllowedCategories returns the dashboard sections profile may see. An
// unknown profile sees nothing.
func (s *Store) AllowedCategories(profile string) CategorySet {
	set := make(CategorySet)
	for menu, submenus := range s.file.MenuPermissions[profile] {
		for _, sub := range submenus {
			set[menu+"."+sub] = true
		}
	}
	return set
}

// HasPermission reports whether profile carries the permission flag.
func (s *Store) HasPermission(profile, permission string) bool {
	return s.file.Profiles[profile].Permissions[permission]
}

// Profiles lists every profile that has a menu configuration or a
// definition, sorted.
func (s *Store) Profiles() []string {
	seen := make(map[string]bool)
	for p := range s.file.Profiles {
		seen[p] = true
	}
	for p := range s.file.MenuPermissions {
		seen[p] = true
	}
	names := make([]string, 0, len(seen))
	for p := range seen {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CategorySet holds "menu.submenu" section ids.
type CategorySet map[string]bool

// Allows reports whether id is in the set. A bare menu id is allowed when
// any of its submenus is.
func (c CategorySet) Allows(id string) bool {
	if c[id] {
		return true
	}
	if strings.Contains(id, ".") {
		return false
	}
	prefix := id + "."
	for k, ok := range c {
		if ok && strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// AllCategories returns a set allowing every id in ids.
func AllCategories(ids ...string) CategorySet {
	set := make(CategorySet, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
