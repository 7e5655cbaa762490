package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/abiosite/abio-api/config"
	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/internal/domain/entity"
	repo "github.com/abiosite/abio-api/internal/domain/repository"
	pginfra "github.com/abiosite/abio-api/internal/infrastructure/postgres"
	"github.com/abiosite/abio-api/pkg/helpers"
)

// seed creates a verified demo account with a public profile and a few links.
// Running it twice is harmless.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	profiles := pginfra.NewProfileRepository(pool)
	links := pginfra.NewLinkRepository(pool)

	email := "demo@abio.dev"
	password := "Demo123!"
	username := "demo"

	if u, err := users.GetByEmail(ctx, email); err == nil {
		fmt.Printf("demo user already present: id=%s email=%s\n", u.ID, u.Email)
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		log.Fatalf("failed to look up demo user: %v", err)
	}

	hash, err := helpers.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{Email: email, Name: "Demo User", PasswordHash: hash, IsEmailVerified: true}
	p := &entity.Profile{DisplayName: "Demo User", IsPublic: true, Goals: []string{}}
	if err := users.CreateWithProfile(ctx, u, p); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	p.Username = &username
	p.Bio = "Everything I make, in one place."
	p.Goals = []string{"grow-audience"}
	if err := profiles.Update(ctx, p, true); err != nil {
		log.Fatalf("failed to complete profile: %v", err)
	}

	for _, l := range []struct{ title, url string }{
		{"GitHub", "https://github.com/abio"},
		{"YouTube", "https://www.youtube.com/@abio"},
		{"Blog", "https://abio.dev/blog"},
	} {
		platform, ok := application.DetectPlatform(l.url)
		if !ok {
			platform = "WEBSITE"
		}
		link := &entity.Link{ProfileID: p.ID, Title: l.title, URL: l.url, Platform: platform, IsVisible: true}
		if err := links.Create(ctx, link); err != nil {
			log.Fatalf("failed to seed link %s: %v", l.url, err)
		}
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, email, username, password)
}
