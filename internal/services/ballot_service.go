package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/smartvoting/backend/internal/audit"
	"github.com/smartvoting/backend/internal/database"
	"github.com/smartvoting/backend/internal/models"
)

// BallotService records votes and reports tallies.
type BallotService struct {
	db    *sql.DB
	audit audit.Logger
}

func NewBallotService(db *sql.DB, auditLogger audit.Logger) *BallotService {
	return &BallotService{
		db:    db,
		audit: auditLogger,
	}
}

// Eligibility loads the voter behind a session. It returns ErrVoterNotFound
// for unknown ids, ErrNotApproved for pending voters and ErrAlreadyVoted when
// the voter is flagged or already has a vote row; in the last case the flag is
// brought in line with the votes table.
func (s *BallotService) Eligibility(ctx context.Context, voterID int64) (*models.Voter, error) {
	var (
		v     models.Voter
		name  sql.NullString
		votes int
	)
	err := s.db.QueryRowContext(ctx, `SELECT v.id, v.name, v.approved, v.voted,
		(SELECT COUNT(*) FROM votes WHERE votes.voter_id = v.id)
		FROM voters v WHERE v.id = $1`, voterID).Scan(&v.ID, &name, &v.Approved, &v.Voted, &votes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVoterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load voter %d: %w", voterID, err)
	}
	v.Name = name.String

	if !v.Approved {
		return nil, ErrNotApproved
	}
	if v.Voted || votes > 0 {
		if !v.Voted {
			if _, err := s.db.ExecContext(ctx, "UPDATE voters SET voted = TRUE WHERE id = $1", voterID); err != nil {
				log.Printf("[BALLOT] Failed to flag voter %d as voted: %v", voterID, err)
			}
		}
		return nil, ErrAlreadyVoted
	}
	return &v, nil
}

// Cast records one vote for candidate. The voter flag and the vote row are
// written in a single transaction; a second cast for the same voter fails
// with ErrAlreadyVoted and an unapproved voter with ErrNotApproved.
func (s *BallotService) Cast(ctx context.Context, voterID int64, candidate string) (*models.Vote, error) {
	if !models.IsCandidate(candidate) {
		return nil, ErrInvalidCandidate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE voters SET voted = TRUE WHERE id = $1 AND approved = TRUE AND voted = FALSE", voterID)
	if err != nil {
		return nil, fmt.Errorf("flag voter %d: %w", voterID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, s.castRefused(ctx, tx, voterID)
	}

	vote := &models.Vote{VoterID: voterID, Candidate: candidate}
	err = tx.QueryRowContext(ctx, "INSERT INTO votes (voter_id, candidate) VALUES ($1, $2) RETURNING id",
		voterID, candidate).Scan(&vote.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.audit.LogError("cast", voterID, err)
		return nil, err
	}

	log.Printf("[BALLOT] Vote %d recorded for voter %d", vote.ID, voterID)
	s.audit.LogBallotCast(voterID, vote.ID)
	return vote, nil
}

// castRefused explains why the conditional flag update matched no row.
func (s *BallotService) castRefused(ctx context.Context, tx *sql.Tx, voterID int64) error {
	var approved, voted bool
	err := tx.QueryRowContext(ctx, "SELECT approved, voted FROM voters WHERE id = $1", voterID).Scan(&approved, &voted)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrVoterNotFound
	case err != nil:
		return fmt.Errorf("load voter %d: %w", voterID, err)
	case !approved:
		return ErrNotApproved
	default:
		return ErrAlreadyVoted
	}
}

// DeleteVote removes a vote and clears the voter's flag so they may vote
// again. Unknown ids return ErrVoteNotFound.
func (s *BallotService) DeleteVote(ctx context.Context, voteID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var voterID int64
	err = tx.QueryRowContext(ctx, "SELECT voter_id FROM votes WHERE id = $1", voteID).Scan(&voterID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVoteNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE voters SET voted = FALSE WHERE id = $1", voterID); err != nil {
		return fmt.Errorf("reset voter %d: %w", voterID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM votes WHERE id = $1", voteID); err != nil {
		return fmt.Errorf("delete vote %d: %w", voteID, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.audit.LogVoteDeleted(voteID, voterID)
	return nil
}

// ListVotes returns every vote with the voter's name, oldest first.
func (s *BallotService) ListVotes(ctx context.Context) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT votes.id, votes.voter_id, COALESCE(voters.name, ''), votes.candidate, votes.cast_at
		FROM votes LEFT JOIN voters ON voters.id = votes.voter_id ORDER BY votes.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []models.Vote
	for rows.Next() {
		var (
			v      models.Vote
			castAt sql.NullTime
		)
		if err := rows.Scan(&v.ID, &v.VoterID, &v.VoterName, &v.Candidate, &castAt); err != nil {
			return nil, err
		}
		v.CastAt = castAt.Time
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// Tally counts votes per candidate in ballot order, zeros included, and the
// total number of votes.
func (s *BallotService) Tally(ctx context.Context) ([]models.Tally, int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT candidate, COUNT(*) FROM votes GROUP BY candidate")
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	total := 0
	for rows.Next() {
		var (
			candidate string
			n         int
		)
		if err := rows.Scan(&candidate, &n); err != nil {
			return nil, 0, err
		}
		counts[candidate] = n
		total += n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	tallies := make([]models.Tally, 0, len(models.Candidates))
	for _, c := range models.Candidates {
		tallies = append(tallies, models.Tally{Candidate: c, Votes: counts[c.Name]})
	}
	return tallies, total, nil
}
