package entity

import "time"

// Profile is the public face of a user; exactly one per user.
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Username    *string   `json:"username"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	Location    string    `json:"location"`
	Goals       []string  `json:"goals"`
	AvatarURL   string    `json:"avatarUrl"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Links       []Link             `json:"links,omitempty"`
	Preferences *DisplayPreference `json:"displayPreferences,omitempty"`
}

// OnboardingReady is true once a username and at least one goal are set.
func (p *Profile) OnboardingReady() bool {
	return p.Username != nil && *p.Username != "" && len(p.Goals) > 0
}

// PublicProfile is the visitor-facing projection of a profile.
type PublicProfile struct {
	Username    string             `json:"username"`
	DisplayName string             `json:"displayName"`
	Bio         string             `json:"bio"`
	Location    string             `json:"location"`
	AvatarURL   string             `json:"avatarUrl"`
	Links       []Link             `json:"links"`
	Preferences *DisplayPreference `json:"displayPreferences"`
}

// ToPublic strips private fields. Only visible links are kept, in order.
func (p *Profile) ToPublic() *PublicProfile {
	pub := &PublicProfile{
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		Location:    p.Location,
		AvatarURL:   p.AvatarURL,
		Links:       make([]Link, 0, len(p.Links)),
		Preferences: p.Preferences,
	}
	if p.Username != nil {
		pub.Username = *p.Username
	}
	for _, l := range p.Links {
		if l.IsVisible {
			pub.Links = append(pub.Links, l)
		}
	}
	return pub
}
