package oauth

// RawProfile is the callback payload shape delivered by the OAuth
// provider strategies: a flat envelope (id, username, displayName,
// emails, photos) plus the provider-specific response under _json.
type RawProfile struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"displayName"`
	Emails      []ValueEntry   `json:"emails"`
	Photos      []ValueEntry   `json:"photos"`
	JSON        map[string]any `json:"_json"`
}

type ValueEntry struct {
	Value string `json:"value"`
}

// Profile is the canonical, provider-agnostic identity produced by
// normalization. It is transient: created per authentication attempt
// and only ever used to create or refresh a platform user.
type Profile struct {
	ID              string
	Email           string
	Name            string
	Avatar          *string
	Bio             *string
	Website         *string
	Location        *string
	Company         *string
	GithubUsername  *string
	LinkedinProfile *string
}

func (r RawProfile) primaryEmail() string {
	if len(r.Emails) > 0 {
		return r.Emails[0].Value
	}
	return ""
}

func (r RawProfile) primaryPhoto() *string {
	if len(r.Photos) > 0 && r.Photos[0].Value != "" {
		v := r.Photos[0].Value
		return &v
	}
	return nil
}

// jsonString reads an optional string field from the _json payload.
// Absent or empty values stay nil.
func (r RawProfile) jsonString(key string) *string {
	if r.JSON == nil {
		return nil
	}
	if s, ok := r.JSON[key].(string); ok && s != "" {
		return &s
	}
	return nil
}
