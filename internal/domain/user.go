package domain

import "time"

// Provider identifies the external OAuth provider an account was
// created through. The pair (Provider, ProviderID) is the durable
// external-identity key and is never rewritten once set.
type Provider string

const (
	ProviderGitHub   Provider = "GITHUB"
	ProviderGoogle   Provider = "GOOGLE"
	ProviderLinkedIn Provider = "LINKEDIN"
)

// User is the platform user record. Identity fields (Email, Provider,
// ProviderID) are immutable after creation; profile fields may be
// refreshed on every login. Counter fields are owned by other services
// and are never written here.
type User struct {
	ID         string   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email      string   `gorm:"uniqueIndex;not null" json:"email"`
	Provider   Provider `gorm:"type:text;not null;uniqueIndex:idx_user_provider_identity" json:"provider"`
	ProviderID string   `gorm:"type:text;not null;uniqueIndex:idx_user_provider_identity" json:"-"`

	Name            string   `gorm:"not null" json:"name"`
	Avatar          *string  `json:"avatar"`
	Bio             *string  `json:"bio"`
	Website         *string  `json:"website"`
	Location        *string  `json:"location"`
	Company         *string  `json:"company"`
	GithubUsername  *string  `json:"github_username"`
	LinkedinProfile *string  `json:"linkedin_profile"`
	Skills          []string `gorm:"type:jsonb;serializer:json" json:"skills"`

	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	ProjectsCount  int `gorm:"not null;default:0" json:"projects_count"`
	FollowersCount int `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int `gorm:"not null;default:0" json:"following_count"`
}

func (User) TableName() string { return "platform_user" }

// PublicProfile is the caller-facing view of a user. ProviderID is
// deliberately absent: the provider linkage key never leaves the
// identity subsystem in a response payload.
type PublicProfile struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Provider        Provider   `json:"provider"`
	Name            string     `json:"name"`
	Avatar          *string    `json:"avatar"`
	Bio             *string    `json:"bio"`
	Website         *string    `json:"website"`
	Location        *string    `json:"location"`
	Company         *string    `json:"company"`
	GithubUsername  *string    `json:"github_username"`
	LinkedinProfile *string    `json:"linkedin_profile"`
	Skills          []string   `json:"skills"`
	IsActive        bool       `json:"is_active"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	CreatedAt       time.Time  `json:"created_at"`
	ProjectsCount   int        `json:"projects_count"`
	FollowersCount  int        `json:"followers_count"`
	FollowingCount  int        `json:"following_count"`
}

func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:              u.ID,
		Email:           u.Email,
		Provider:        u.Provider,
		Name:            u.Name,
		Avatar:          u.Avatar,
		Bio:             u.Bio,
		Website:         u.Website,
		Location:        u.Location,
		Company:         u.Company,
		GithubUsername:  u.GithubUsername,
		LinkedinProfile: u.LinkedinProfile,
		Skills:          u.Skills,
		IsActive:        u.IsActive,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		ProjectsCount:   u.ProjectsCount,
		FollowersCount:  u.FollowersCount,
		FollowingCount:  u.FollowingCount,
	}
}
