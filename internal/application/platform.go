package application

import (
	"net/url"
	"strings"
)

// Platform is a known social network recognised from a link's host.
type Platform struct {
	Key     string
	Domains []string
}

// Platforms is ordered; the first match wins.
var Platforms = []Platform{
	{Key: "TWITTER", Domains: []string{"twitter.com", "x.com"}},
	{Key: "INSTAGRAM", Domains: []string{"instagram.com"}},
	{Key: "LINKEDIN", Domains: []string{"linkedin.com"}},
	{Key: "GITHUB", Domains: []string{"github.com"}},
	{Key: "FACEBOOK", Domains: []string{"facebook.com"}},
	{Key: "YOUTUBE", Domains: []string{"youtube.com", "youtu.be"}},
	{Key: "TIKTOK", Domains: []string{"tiktok.com"}},
	{Key: "DISCORD", Domains: []string{"discord.gg", "discord.com"}},
	{Key: "TWITCH", Domains: []string{"twitch.tv"}},
	{Key: "SPOTIFY", Domains: []string{"spotify.com"}},
}

// DetectPlatform returns the key of the first platform whose domain is the
// URL's host or a parent of it. Unparsable URLs never match.
func DetectPlatform(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", false
	}
	for _, p := range Platforms {
		for _, d := range p.Domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return p.Key, true
			}
		}
	}
	return "", false
}
