package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/smartvoting/backend/internal/config"
	"github.com/smartvoting/backend/internal/models"
	"golang.org/x/crypto/argon2"
)

// Dashboard is everything the admin overview page shows.
type Dashboard struct {
	Pending       []*models.Voter `json:"pending"`
	Tallies       []models.Tally  `json:"tallies"`
	TotalVotes    int             `json:"totalVotes"`
	TotalApproved int             `json:"totalApproved"`
	Voters        []*models.Voter `json:"voters"`
	Votes         []models.Vote   `json:"votes"`
}

type AdminService struct {
	username     string
	passwordHash string
	params       config.Argon2Config
	voters       *VoterService
	ballots      *BallotService
}

func NewAdminService(cfg config.AdminConfig, params config.Argon2Config, voters *VoterService, ballots *BallotService) *AdminService {
	if cfg.PasswordHash == "" {
		log.Printf("[ADMIN] No admin password hash configured, admin login is disabled")
	}
	return &AdminService{
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
		params:       params,
		voters:       voters,
		ballots:      ballots,
	}
}

// Authenticate checks the configured admin credentials.
func (s *AdminService) Authenticate(username, password string) bool {
	if s.passwordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := VerifyPassword(password, s.passwordHash, s.params)
	return userOK && passOK
}

// Dashboard gathers pending voters, tallies and the full voter and vote lists.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	pending, err := s.voters.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending voters: %w", err)
	}
	tallies, total, err := s.ballots.Tally(ctx)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	approved, err := s.voters.CountApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("count approved voters: %w", err)
	}
	voters, err := s.voters.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	votes, err := s.ballots.ListVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}

	return &Dashboard{
		Pending:       pending,
		Tallies:       tallies,
		TotalVotes:    total,
		TotalApproved: approved,
		Voters:        voters,
		Votes:         votes,
	}, nil
}

// HashPassword derives an argon2id hash encoded as base64(salt)$base64(hash).
func HashPassword(password string, p config.Argon2Config) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword checks password against a HashPassword result produced
// with the same parameters.
func VerifyPassword(password, hashedPassword string, p config.Argon2Config) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}
