package oauth

import (
	"testing"

	"github.com/julianthant/codecave-sub000/internal/domain"
)

func TestNormalizeGitHubNameFallsBackToUsername(t *testing.T) {
	normalize, err := For(domain.ProviderGitHub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	profile := normalize(RawProfile{
		ID:       "12345",
		Username: "octocat",
		Emails:   []ValueEntry{{Value: "octo@example.com"}},
		JSON: map[string]any{
			"bio":      "builds things",
			"blog":     "https://octo.dev",
			"location": "SF",
			"company":  "GitHub",
		},
	})
	if profile.Name != "octocat" {
		t.Fatalf("expected name fallback to username, got %q", profile.Name)
	}
	if profile.GithubUsername == nil || *profile.GithubUsername != "octocat" {
		t.Fatalf("expected github username to be set")
	}
	if profile.Email != "octo@example.com" {
		t.Fatalf("unexpected email: %q", profile.Email)
	}
	if profile.Bio == nil || *profile.Bio != "builds things" {
		t.Fatalf("expected bio from _json")
	}
	if profile.Website == nil || *profile.Website != "https://octo.dev" {
		t.Fatalf("expected website from blog field")
	}
}

func TestNormalizeGitHubSparseInput(t *testing.T) {
	normalize, _ := For(domain.ProviderGitHub)
	profile := normalize(RawProfile{ID: "1"})
	if profile.Email != "" {
		t.Fatalf("expected empty email, got %q", profile.Email)
	}
	if profile.Bio != nil || profile.Website != nil || profile.Location != nil || profile.Company != nil {
		t.Fatalf("expected sparse optional fields to stay nil")
	}
	if profile.Avatar != nil {
		t.Fatalf("expected nil avatar")
	}
}

func TestNormalizeGoogleReadsMetadata(t *testing.T) {
	normalize, _ := For(domain.ProviderGoogle)
	profile := normalize(RawProfile{
		ID:          "g-1",
		DisplayName: "Jane Doe",
		Emails:      []ValueEntry{{Value: "jane@example.com"}},
		JSON: map[string]any{
			"picture":  "https://lh3.example/avatar.png",
			"location": "Berlin",
		},
	})
	if profile.Name != "Jane Doe" {
		t.Fatalf("unexpected name: %q", profile.Name)
	}
	if profile.Avatar == nil || *profile.Avatar != "https://lh3.example/avatar.png" {
		t.Fatalf("expected avatar from picture metadata")
	}
	if profile.Location == nil || *profile.Location != "Berlin" {
		t.Fatalf("expected location from metadata")
	}
	if profile.Company != nil {
		t.Fatalf("expected nil company for google profile without one")
	}
}

func TestNormalizeLinkedInCompanyRequiresPositions(t *testing.T) {
	normalize, _ := For(domain.ProviderLinkedIn)

	withPositions := normalize(RawProfile{
		ID:          "li-1",
		DisplayName: "Dev Smith",
		JSON: map[string]any{
			"publicProfileUrl": "https://linkedin.com/in/devsmith",
			"positions": map[string]any{
				"_total": float64(1),
				"values": []any{
					map[string]any{"company": map[string]any{"name": "Acme"}},
				},
			},
		},
	})
	if withPositions.Company == nil || *withPositions.Company != "Acme" {
		t.Fatalf("expected company from positions")
	}
	if withPositions.LinkedinProfile == nil || *withPositions.LinkedinProfile != "https://linkedin.com/in/devsmith" {
		t.Fatalf("expected linkedin profile url")
	}

	zeroTotal := normalize(RawProfile{
		ID: "li-2",
		JSON: map[string]any{
			"positions": map[string]any{
				"_total": float64(0),
				"values": []any{
					map[string]any{"company": map[string]any{"name": "Ghost"}},
				},
			},
		},
	})
	if zeroTotal.Company != nil {
		t.Fatalf("expected nil company when positions total is zero")
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	normalize, _ := For(domain.ProviderGitHub)
	raw := RawProfile{
		ID:          "42",
		Username:    "dev",
		DisplayName: "Dev",
		Emails:      []ValueEntry{{Value: "dev@example.com"}},
		Photos:      []ValueEntry{{Value: "https://img.example/a.png"}},
		JSON:        map[string]any{"bio": "hi"},
	}
	first := normalize(raw)
	second := normalize(raw)
	if first.ID != second.ID || first.Email != second.Email || first.Name != second.Name {
		t.Fatalf("normalization is not deterministic")
	}
	if *first.Bio != *second.Bio || *first.Avatar != *second.Avatar {
		t.Fatalf("optional fields differ between runs")
	}
}

func TestForUnknownProvider(t *testing.T) {
	if _, err := For(domain.Provider("BITBUCKET")); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestFromSupabaseNameFallsBackToEmail(t *testing.T) {
	profile := FromSupabase("sb-1", "person@example.com", nil)
	if profile.Name != "person@example.com" {
		t.Fatalf("expected name fallback to email, got %q", profile.Name)
	}

	named := FromSupabase("sb-2", "person@example.com", map[string]any{
		"full_name":  "Person Example",
		"avatar_url": "https://img.example/p.png",
		"user_name":  "person",
	})
	if named.Name != "Person Example" {
		t.Fatalf("expected full_name, got %q", named.Name)
	}
	if named.Avatar == nil || *named.Avatar != "https://img.example/p.png" {
		t.Fatalf("expected avatar from metadata")
	}
	if named.GithubUsername == nil || *named.GithubUsername != "person" {
		t.Fatalf("expected username from metadata")
	}
}
