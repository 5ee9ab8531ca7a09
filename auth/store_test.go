package auth

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"market-dashboard/utils"
)

const sampleProfiles = `{
  "profiles": {
    "admin":  {"name": "Administrador", "permissions": {"view_project_names": true, "view_company_details": true}},
    "viewer": {"name": "Visualizador", "permissions": {"view_project_names": false}}
  },
  "users": {
    "Ana@Example.com": {"name": "Ana", "profile": "admin", "active": true},
    "bruno@example.com": {"name": "Bruno", "profile": "viewer", "active": false},
    "carla@example.com": {"profile": "analyst", "active": true}
  },
  "menu_permissions": {
    "admin":  {"residencial": ["ivv", "venda", "vgv"], "crosstabs": ["vendas_por_regiao"]},
    "viewer": {"residencial": ["ivv"]}
  }
}`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := ParseStore([]byte(sampleProfiles), utils.NewLoggerTo(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		email       string
		granted     bool
		profile     string
		profileName string
	}{
		{"ana@example.com", true, "admin", "Administrador"},
		{"  ANA@EXAMPLE.COM ", true, "admin", "Administrador"},
		{"bruno@example.com", false, "", ""},
		{"nobody@example.com", false, "", ""},
		{"carla@example.com", true, "analyst", "analyst"},
	}
	for _, tt := range tests {
		g := s.Authenticate(tt.email)
		if g.Granted != tt.granted || g.Profile != tt.profile || g.ProfileName != tt.profileName {
			t.Errorf("Authenticate(%q) = %+v; want granted=%v profile=%q (%q)",
				tt.email, g, tt.granted, tt.profile, tt.profileName)
		}
	}
	if g := s.Authenticate("carla@example.com"); g.Name != "carla@example.com" {
		t.Errorf("unnamed user name = %q; want the e-mail", g.Name)
	}
}

func TestAllowedCategories(t *testing.T) {
	s := newTestStore(t)

	admin := s.AllowedCategories("admin")
	want := CategorySet{
		"residencial.ivv": true, "residencial.venda": true, "residencial.vgv": true,
		"crosstabs.vendas_por_regiao": true,
	}
	if !reflect.DeepEqual(admin, want) {
		t.Errorf("admin categories = %v; want %v", admin, want)
	}

	viewer := s.AllowedCategories("viewer")
	tests := []struct {
		id   string
		want bool
	}{
		{"residencial.ivv", true},
		{"residencial.vgv", false},
		{"residencial", true},
		{"crosstabs", false},
		{"crosstabs.vendas_por_regiao", false},
	}
	for _, tt := range tests {
		if got := viewer.Allows(tt.id); got != tt.want {
			t.Errorf("viewer.Allows(%q) = %v; want %v", tt.id, got, tt.want)
		}
	}

	if got := s.AllowedCategories("ghost"); len(got) != 0 {
		t.Errorf("unknown profile categories = %v; want empty", got)
	}
}

func TestHasPermission(t *testing.T) {
	s := newTestStore(t)
	if !s.HasPermission("admin", PermViewProjects) {
		t.Error("admin should see project names")
	}
	if s.HasPermission("viewer", PermViewProjects) || s.HasPermission("ghost", PermViewProjects) {
		t.Error("viewer and unknown profiles must not see project names")
	}
}

func TestProfiles(t *testing.T) {
	want := []string{"admin", "viewer"}
	if got := newTestStore(t).Profiles(); !reflect.DeepEqual(got, want) {
		t.Errorf("Profiles() = %v; want %v", got, want)
	}
}

func TestLoadStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_profiles.json")
	if err := os.WriteFile(path, []byte(sampleProfiles), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := utils.NewLoggerTo(io.Discard)
	if _, err := LoadStore(path, logger); err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if _, err := LoadStore(filepath.Join(t.TempDir(), "missing.json"), logger); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := ParseStore([]byte("{"), logger); err == nil {
		t.Error("expected a decode error")
	}
}

func TestAllCategories(t *testing.T) {
	set := AllCategories("residencial.ivv", "crosstabs.ivv_por_regiao")
	if !set.Allows("crosstabs") || set.Allows("insights") {
		t.Errorf("AllCategories = %v", set)
	}
}
