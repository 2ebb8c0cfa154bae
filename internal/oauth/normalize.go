package oauth

import (
	"github.com/julianthant/codecave-sub000/internal/domain"
)

// Normalizer converts one provider's raw callback payload into the
// canonical Profile. Normalizers are pure and must not fail on sparse
// but well-formed input.
type Normalizer func(raw RawProfile) Profile

var normalizers = map[domain.Provider]Normalizer{
	domain.ProviderGitHub:   normalizeGitHub,
	domain.ProviderGoogle:   normalizeGoogle,
	domain.ProviderLinkedIn: normalizeLinkedIn,
}

// For selects the normalizer for a provider tag.
func For(provider domain.Provider) (Normalizer, error) {
	n, ok := normalizers[provider]
	if !ok {
		return nil, domain.ErrUnknownProvider
	}
	return n, nil
}

func normalizeGitHub(raw RawProfile) Profile {
	name := raw.DisplayName
	if name == "" {
		name = raw.Username
	}
	var username *string
	if raw.Username != "" {
		u := raw.Username
		username = &u
	}
	avatar := raw.primaryPhoto()
	if avatar == nil {
		avatar = raw.jsonString("avatar_url")
	}
	return Profile{
		ID:             raw.ID,
		Email:          raw.primaryEmail(),
		Name:           name,
		Avatar:         avatar,
		Bio:            raw.jsonString("bio"),
		Website:        raw.jsonString("blog"),
		Location:       raw.jsonString("location"),
		Company:        raw.jsonString("company"),
		GithubUsername: username,
	}
}

func normalizeGoogle(raw RawProfile) Profile {
	avatar := raw.jsonString("picture")
	if avatar == nil {
		avatar = raw.primaryPhoto()
	}
	return Profile{
		ID:       raw.ID,
		Email:    raw.primaryEmail(),
		Name:     raw.DisplayName,
		Avatar:   avatar,
		Bio:      raw.jsonString("bio"),
		Website:  raw.jsonString("website"),
		Location: raw.jsonString("location"),
		Company:  raw.jsonString("company"),
	}
}

func normalizeLinkedIn(raw RawProfile) Profile {
	return Profile{
		ID:              raw.ID,
		Email:           raw.primaryEmail(),
		Name:            raw.DisplayName,
		Avatar:          raw.primaryPhoto(),
		Bio:             raw.jsonString("summary"),
		Location:        linkedinLocation(raw),
		Company:         linkedinCompany(raw),
		LinkedinProfile: raw.jsonString("publicProfileUrl"),
	}
}

// linkedinCompany reads the current position's company name, but only
// when the positions collection reports a nonzero total.
func linkedinCompany(raw RawProfile) *string {
	positions, ok := raw.JSON["positions"].(map[string]any)
	if !ok {
		return nil
	}
	total, ok := positions["_total"].(float64)
	if !ok || total <= 0 {
		return nil
	}
	values, ok := positions["values"].([]any)
	if !ok || len(values) == 0 {
		return nil
	}
	first, ok := values[0].(map[string]any)
	if !ok {
		return nil
	}
	company, ok := first["company"].(map[string]any)
	if !ok {
		return nil
	}
	if name, ok := company["name"].(string); ok && name != "" {
		return &name
	}
	return nil
}

func linkedinLocation(raw RawProfile) *string {
	location, ok := raw.JSON["location"].(map[string]any)
	if !ok {
		return nil
	}
	if name, ok := location["name"].(string); ok && name != "" {
		return &name
	}
	return nil
}

// FromSupabase builds a Profile from Supabase user metadata. Supabase
// does not deliver a passport-shaped payload, so the fields are read
// straight from user_metadata; the name falls back to the email when
// no full-name claim is present.
func FromSupabase(id, email string, meta map[string]any) Profile {
	name := metaString(meta, "full_name")
	if name == "" {
		name = metaString(meta, "name")
	}
	if name == "" {
		name = email
	}
	var avatar *string
	if s := metaString(meta, "avatar_url"); s != "" {
		avatar = &s
	}
	var username *string
	if s := metaString(meta, "user_name"); s != "" {
		username = &s
	}
	return Profile{
		ID:             id,
		Email:          email,
		Name:           name,
		Avatar:         avatar,
		GithubUsername: username,
	}
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	s, _ := meta[key].(string)
	return s
}
