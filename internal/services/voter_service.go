package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/smartvoting/backend/internal/audit"
	"github.com/smartvoting/backend/internal/database"
	"github.com/smartvoting/backend/internal/face"
	"github.com/smartvoting/backend/internal/models"
	"github.com/smartvoting/backend/internal/storage"
)

const voterColumns = `id, name, email, mobile, age, aadhaar, voter_id_number,
	voter_id_filename, aadhaar_filename, photo_filename, face_encoding,
	country, state, constituency, otp, approved, voted, created_at`

// VoterService owns the voters table and the files attached to each row.
type VoterService struct {
	db    *sql.DB
	docs  *storage.DocumentStore
	audit audit.Logger
}

func NewVoterService(db *sql.DB, docs *storage.DocumentStore, auditLogger audit.Logger) *VoterService {
	return &VoterService{
		db:    db,
		docs:  docs,
		audit: auditLogger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoter(row rowScanner) (*models.Voter, error) {
	var (
		v                                        models.Voter
		name, email, mobile, aadhaar, voterIDNum sql.NullString
		voterIDFile, aadhaarFile, photoFile, enc sql.NullString
		country, state, constituency, otp        sql.NullString
		age                                      sql.NullInt64
		createdAt                                sql.NullTime
	)
	err := row.Scan(&v.ID, &name, &email, &mobile, &age, &aadhaar, &voterIDNum,
		&voterIDFile, &aadhaarFile, &photoFile, &enc,
		&country, &state, &constituency, &otp, &v.Approved, &v.Voted, &createdAt)
	if err != nil {
		return nil, err
	}

	v.Name = name.String
	v.Email = email.String
	v.Mobile = mobile.String
	v.Age = int(age.Int64)
	v.Aadhaar = aadhaar.String
	v.VoterIDNumber = voterIDNum.String
	v.VoterIDFilename = voterIDFile.String
	v.AadhaarFilename = aadhaarFile.String
	v.PhotoFilename = photoFile.String
	v.Country = country.String
	v.State = state.String
	v.Constituency = constituency.String
	v.OTP = otp.String
	v.CreatedAt = createdAt.Time

	if enc.Valid {
		v.FaceEncoding, err = face.ParseDescriptor(enc.String)
		if err != nil {
			log.Printf("[VOTER] Ignoring unreadable face encoding for voter %d: %v", v.ID, err)
			v.FaceEncoding = nil
		}
	}
	return &v, nil
}

func (s *VoterService) queryVoters(ctx context.Context, query string, args ...any) ([]*models.Voter, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var voters []*models.Voter
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, err
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

// Create inserts a new unapproved voter and sets v.ID.
func (s *VoterService) Create(ctx context.Context, v *models.Voter) error {
	err := s.db.QueryRowContext(ctx, `INSERT INTO voters (name, email, mobile, age, aadhaar, voter_id_number,
		voter_id_filename, aadhaar_filename, country, state, constituency, otp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		v.Name, v.Email, v.Mobile, v.Age, v.Aadhaar, v.VoterIDNumber,
		v.VoterIDFilename, v.AadhaarFilename, v.Country, v.State, v.Constituency, v.OTP).Scan(&v.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAadhaarTaken
		}
		return fmt.Errorf("insert voter: %w", err)
	}
	return nil
}

// AadhaarExists reports whether any voter already holds aadhaar.
func (s *VoterService) AadhaarExists(ctx context.Context, aadhaar string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM voters WHERE aadhaar = $1)", aadhaar).Scan(&exists)
	return exists, err
}

// Get loads a voter by id. Missing rows return ErrVoterNotFound.
func (s *VoterService) Get(ctx context.Context, id int64) (*models.Voter, error) {
	v, err := scanVoter(s.db.QueryRowContext(ctx, "SELECT "+voterColumns+" FROM voters WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVoterNotFound
	}
	return v, err
}

// FindLatestByEmail returns the most recent registration for email.
func (s *VoterService) FindLatestByEmail(ctx context.Context, email string) (*models.Voter, error) {
	v, err := scanVoter(s.db.QueryRowContext(ctx,
		"SELECT "+voterColumns+" FROM voters WHERE email = $1 ORDER BY id DESC LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRegistration
	}
	return v, err
}

// FindByAadhaar looks a voter up for the tracking page.
func (s *VoterService) FindByAadhaar(ctx context.Context, aadhaar string) (*models.Voter, error) {
	v, err := scanVoter(s.db.QueryRowContext(ctx, "SELECT "+voterColumns+" FROM voters WHERE aadhaar = $1", aadhaar))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVoterNotFound
	}
	return v, err
}

// VerifyOTP checks otp against the latest registration for email.
func (s *VoterService) VerifyOTP(ctx context.Context, email, otp string) (*models.Voter, error) {
	v, err := s.FindLatestByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if v.OTP != otp {
		log.Printf("[OTP] Mismatch for voter %d", v.ID)
		return nil, ErrInvalidOTP
	}
	return v, nil
}

func (s *VoterService) ListPending(ctx context.Context) ([]*models.Voter, error) {
	return s.queryVoters(ctx, "SELECT "+voterColumns+" FROM voters WHERE approved = FALSE ORDER BY id")
}

func (s *VoterService) ListAll(ctx context.Context) ([]*models.Voter, error) {
	return s.queryVoters(ctx, "SELECT "+voterColumns+" FROM voters ORDER BY id")
}

func (s *VoterService) CountApproved(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM voters WHERE approved = TRUE").Scan(&n)
	return n, err
}

// Approve marks a voter eligible to vote. Unknown ids return ErrVoterNotFound.
func (s *VoterService) Approve(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE voters SET approved = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("approve voter %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrVoterNotFound
	}
	s.audit.LogApproval(id)
	return nil
}

// Reject removes the voter's documents and photo, then the voter and any vote.
func (s *VoterService) Reject(ctx context.Context, id int64) error {
	v, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	s.removeFiles(v)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM votes WHERE voter_id = $1", id); err != nil {
		return fmt.Errorf("delete votes of voter %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM voters WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete voter %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.audit.LogRejection(id)
	return nil
}

func (s *VoterService) removeFiles(v *models.Voter) {
	files := []struct {
		kind storage.Kind
		name string
	}{
		{storage.KindVoterID, v.VoterIDFilename},
		{storage.KindAadhaar, v.AadhaarFilename},
		{storage.KindPhoto, v.PhotoFilename},
	}
	for _, f := range files {
		if err := s.docs.Remove(f.kind, f.name); err != nil {
			log.Printf("[VOTER] Failed to remove %s file %s of voter %d: %v", f.kind, f.name, v.ID, err)
		}
	}
}

// PurgeAbandoned deletes unapproved registrations created before cutoff that
// never enrolled a face, along with their documents.
func (s *VoterService) PurgeAbandoned(ctx context.Context, cutoff time.Time) (int, error) {
	voters, err := s.queryVoters(ctx, "SELECT "+voterColumns+` FROM voters
		WHERE face_encoding IS NULL AND approved = FALSE AND created_at < $1 ORDER BY id`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("list abandoned registrations: %w", err)
	}

	removed := 0
	for _, v := range voters {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM voters WHERE id = $1 AND face_encoding IS NULL AND approved = FALSE", v.ID)
		if err != nil {
			return removed, fmt.Errorf("delete abandoned voter %d: %w", v.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		s.removeFiles(v)
		removed++
	}

	if removed > 0 {
		s.audit.LogSweep(removed)
	}
	return removed, nil
}
