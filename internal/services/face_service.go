package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/smartvoting/backend/internal/audit"
	"github.com/smartvoting/backend/internal/face"
	"github.com/smartvoting/backend/internal/models"
	"github.com/smartvoting/backend/internal/storage"
)

// FaceImage is either an uploaded photo or a webcam capture as a data URL.
// Upload wins when both are set.
type FaceImage struct {
	Upload  []byte
	DataURL string
}

func (img FaceImage) bytes() ([]byte, error) {
	if len(img.Upload) > 0 {
		return img.Upload, nil
	}
	if img.DataURL == "" {
		return nil, ErrNoImage
	}
	data, err := face.DecodeDataURL(img.DataURL)
	if err != nil {
		return nil, ErrInvalidImage
	}
	return data, nil
}

type FaceService struct {
	db        *sql.DB
	voters    *VoterService
	docs      *storage.DocumentStore
	encoder   face.Encoder
	tolerance float64
	audit     audit.Logger
}

func NewFaceService(db *sql.DB, voters *VoterService, docs *storage.DocumentStore, encoder face.Encoder,
	tolerance float64, auditLogger audit.Logger) *FaceService {
	if tolerance <= 0 {
		tolerance = face.DefaultTolerance
	}
	return &FaceService{
		db:        db,
		voters:    voters,
		docs:      docs,
		encoder:   encoder,
		tolerance: tolerance,
		audit:     auditLogger,
	}
}

// Enroll stores the voter's photo and face embedding. A voter enrolls once,
// before approval; later attempts fail with ErrAlreadyEnrolled. The photo is
// staged under a temporary name and only replaces voter_<id>.jpg once the
// embedding is stored.
func (s *FaceService) Enroll(ctx context.Context, voterID int64, img FaceImage) (*models.Voter, error) {
	voter, err := s.voters.Get(ctx, voterID)
	if err != nil {
		return nil, err
	}
	if voter.Approved || voter.HasFace() {
		log.Printf("[FACE] Refusing re-enrollment for voter %d", voterID)
		return nil, ErrAlreadyEnrolled
	}

	data, err := img.bytes()
	if err != nil {
		return nil, err
	}

	staged, err := s.docs.StagePhoto(voterID, data)
	if err != nil {
		return nil, err
	}
	defer s.docs.Remove(storage.KindPhoto, staged)

	encodings, err := s.encoder.Encode(ctx, data)
	if err != nil {
		log.Printf("[FACE] Encoding failed for voter %d: %v", voterID, err)
		return nil, fmt.Errorf("%w: %v", ErrImageProcessing, err)
	}
	if len(encodings) == 0 {
		return nil, ErrNoFace
	}
	encoding := encodings[0]

	duplicate, err := s.matchesOtherVoter(ctx, voterID, encoding)
	if err != nil {
		return nil, err
	}
	if duplicate != 0 {
		log.Printf("[FACE] Voter %d face matches existing voter %d", voterID, duplicate)
		return nil, ErrFaceAlreadyRegistered
	}

	text, err := encoding.Text()
	if err != nil {
		return nil, err
	}

	filename, err := s.storeEncoding(ctx, voterID, staged, text)
	if err != nil {
		return nil, err
	}

	voter.PhotoFilename = filename
	voter.FaceEncoding = encoding
	s.audit.LogFaceEnrolled(voterID)
	return voter, nil
}

// storeEncoding writes the embedding and moves the staged photo into place in
// one transaction. The update only matches a voter that is still unapproved
// and unenrolled.
func (s *FaceService) storeEncoding(ctx context.Context, voterID int64, staged, text string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	filename := storage.PhotoFilename(voterID)
	res, err := tx.ExecContext(ctx, `UPDATE voters SET photo_filename = $1, face_encoding = $2
		WHERE id = $3 AND face_encoding IS NULL AND approved = FALSE`, filename, text, voterID)
	if err != nil {
		return "", fmt.Errorf("store face encoding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrAlreadyEnrolled
	}

	if _, err := s.docs.CommitPhoto(voterID, staged); err != nil {
		s.audit.LogError("enroll", voterID, err)
		return "", err
	}
	if err := tx.Commit(); err != nil {
		s.docs.Remove(storage.KindPhoto, filename)
		s.audit.LogError("enroll", voterID, err)
		return "", err
	}
	return filename, nil
}

// matchesOtherVoter returns the id of the first other voter whose stored
// embedding matches, or 0.
func (s *FaceService) matchesOtherVoter(ctx context.Context, voterID int64, encoding face.Descriptor) (int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, face_encoding FROM voters WHERE face_encoding IS NOT NULL AND id <> $1 ORDER BY id", voterID)
	if err != nil {
		return 0, fmt.Errorf("scan enrolled faces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			enc string
		)
		if err := rows.Scan(&id, &enc); err != nil {
			return 0, err
		}
		known, err := face.ParseDescriptor(enc)
		if err != nil {
			log.Printf("[FACE] Skipping unreadable encoding of voter %d: %v", id, err)
			continue
		}
		if face.Match(known, encoding, s.tolerance) {
			return id, nil
		}
	}
	return 0, rows.Err()
}

// Identify matches a webcam capture against approved voters in id order.
// The first match wins; ErrAlreadyVoted is returned if that voter voted.
func (s *FaceService) Identify(ctx context.Context, dataURL string) (*models.Voter, error) {
	if dataURL == "" {
		return nil, ErrNoImage
	}
	data, err := face.DecodeDataURL(dataURL)
	if err != nil {
		return nil, ErrNoFace
	}
	encodings, err := s.encoder.Encode(ctx, data)
	if err != nil {
		log.Printf("[FACE] Encoding failed during verification: %v", err)
		return nil, ErrNoFace
	}
	if len(encodings) == 0 {
		return nil, ErrNoFace
	}
	candidate := encodings[0]

	rows, err := s.db.QueryContext(ctx, `SELECT v.id, v.name, v.face_encoding, v.voted,
		(SELECT COUNT(*) FROM votes WHERE votes.voter_id = v.id)
		FROM voters v WHERE v.approved = TRUE AND v.face_encoding IS NOT NULL ORDER BY v.id`)
	if err != nil {
		return nil, fmt.Errorf("scan approved faces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v     models.Voter
			enc   string
			votes int
		)
		if err := rows.Scan(&v.ID, &v.Name, &enc, &v.Voted, &votes); err != nil {
			return nil, err
		}
		known, err := face.ParseDescriptor(enc)
		if err != nil {
			log.Printf("[FACE] Skipping unreadable encoding of voter %d: %v", v.ID, err)
			continue
		}
		if !face.Match(known, candidate, s.tolerance) {
			continue
		}
		if v.Voted || votes > 0 {
			return nil, ErrAlreadyVoted
		}
		v.Approved = true
		v.FaceEncoding = known
		return &v, nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrFaceNotRecognized
}
