package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/johnquangdev/meeting-copilot/internal/adapter/repository"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-copilot/pkg/config"
	pkgjwt "github.com/johnquangdev/meeting-copilot/pkg/jwt"
)

// Seeds local users with a demo meeting each and prints dev tokens.
func main() {
	log.Println("🚀 Starting test data creation...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	ctx := context.Background()
	jwtManager := pkgjwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)

	testUsers := []struct {
		Email string
		Name  string
	}{
		{Email: "alice@test.local", Name: "Alice"},
		{Email: "bob@test.local", Name: "Bob"},
	}

	log.Println("🗑️  Cleaning up existing test users...")
	db.Where("user_id IN (SELECT id FROM users WHERE email LIKE ?)", "%@test.local").Delete(&entities.Meeting{})
	db.Where("user_id IN (SELECT id FROM users WHERE email LIKE ?)", "%@test.local").Delete(&entities.Session{})
	db.Where("email LIKE ?", "%@test.local").Delete(&entities.User{})

	for i, tu := range testUsers {
		user := entities.NewGoogleUser(tu.Email, tu.Name, "")
		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("❌ Failed to create user %s: %v", tu.Email, err)
			continue
		}

		meeting := entities.NewMeeting(fmt.Sprintf("demo-%s-%d", user.ID.String()[:8], i), user.ID, "Demo sync")
		start := time.Now().Add(-time.Hour)
		meeting.StartTime = &start
		meeting.Status = entities.MeetingStatusCompleted
		if _, err := meetingRepo.Create(ctx, meeting); err != nil {
			log.Printf("❌ Failed to create meeting for %s: %v", tu.Email, err)
			continue
		}

		transcript := entities.NewTranscript(meeting.ID)
		transcript.Segments = append(transcript.Segments,
			entities.NewTranscriptSegment("Let's review the launch checklist.", start),
			entities.NewTranscriptSegment("Bob will update the docs by Friday.", start.Add(6*time.Second)),
		)
		transcript.IsComplete = true
		if err := transcriptRepo.Save(ctx, transcript); err != nil {
			log.Printf("❌ Failed to create transcript for %s: %v", tu.Email, err)
		}

		devToken, err := jwtManager.GenerateAccessTokenWithExpiry(user.ID, user.Email, cfg.JWT.DevAccessExpiry)
		if err != nil {
			log.Printf("❌ Failed to generate dev access token for %s: %v", tu.Email, err)
			continue
		}
		refreshToken, err := jwtManager.GenerateRefreshToken(user.ID)
		if err != nil {
			log.Printf("❌ Failed to generate refresh token for %s: %v", tu.Email, err)
			continue
		}
		hash, _ := pkgjwt.HashToken(refreshToken)
		if err := sessionRepo.Create(ctx, entities.NewSession(user.ID, hash, time.Now().Add(cfg.JWT.RefreshExpiry))); err != nil {
			log.Printf("❌ Failed to create session for %s: %v", tu.Email, err)
			continue
		}

		fmt.Printf("═══════════════════════════════════════════════════════════════\n")
		fmt.Printf("🟢 User %d: %s\n", i+1, tu.Name)
		fmt.Printf("Email:        %s\n", user.Email)
		fmt.Printf("User ID:      %s\n", user.ID)
		fmt.Printf("Meeting ID:   %s\n", meeting.ID)
		fmt.Printf("\n🔐 Dev Access Token (expiry: %v):\n%s\n", cfg.JWT.DevAccessExpiry, devToken)
		fmt.Printf("\n🔄 Refresh Token:\n%s\n", refreshToken)
		fmt.Printf("───────────────────────────────────────────────────────────────\n\n")
	}

	log.Println("✅ Test data created")
	log.Println("🧹 To clean up, run: DELETE FROM users WHERE email LIKE '%@test.local'")
}
