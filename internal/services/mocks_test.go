package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smartvoting/backend/internal/audit"
	"github.com/smartvoting/backend/internal/face"
	"github.com/smartvoting/backend/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEncoder struct {
	mock.Mock
}

func (m *MockEncoder) Encode(ctx context.Context, img []byte) ([]face.Descriptor, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]face.Descriptor), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendOTP(ctx context.Context, mobile, otp string) error {
	args := m.Called(ctx, mobile, otp)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SetCaptcha(ctx context.Context, sid, text string, ttl time.Duration) error {
	args := m.Called(ctx, sid, text, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Captcha(ctx context.Context, sid string) (string, error) {
	args := m.Called(ctx, sid)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) ClearCaptcha(ctx context.Context, sid string) error {
	args := m.Called(ctx, sid)
	return args.Error(0)
}

func (m *MockSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type MockAuditLogger struct {
	mock.Mock
}

var _ audit.Logger = (*MockAuditLogger)(nil)

// newMockAuditLogger accepts any audit call; tests assert the ones they care about.
func newMockAuditLogger() *MockAuditLogger {
	m := &MockAuditLogger{}
	m.On("LogRegistration", mock.Anything, mock.Anything).Maybe()
	m.On("LogFaceEnrolled", mock.Anything).Maybe()
	m.On("LogApproval", mock.Anything).Maybe()
	m.On("LogRejection", mock.Anything).Maybe()
	m.On("LogBallotCast", mock.Anything, mock.Anything).Maybe()
	m.On("LogVoteDeleted", mock.Anything, mock.Anything).Maybe()
	m.On("LogSweep", mock.Anything).Maybe()
	m.On("LogError", mock.Anything, mock.Anything, mock.Anything).Maybe()
	return m
}

func (m *MockAuditLogger) LogRegistration(voterID int64, constituency string) {
	m.Called(voterID, constituency)
}

func (m *MockAuditLogger) LogFaceEnrolled(voterID int64) {
	m.Called(voterID)
}

func (m *MockAuditLogger) LogApproval(voterID int64) {
	m.Called(voterID)
}

func (m *MockAuditLogger) LogRejection(voterID int64) {
	m.Called(voterID)
}

func (m *MockAuditLogger) LogBallotCast(voterID, voteID int64) {
	m.Called(voterID, voteID)
}

func (m *MockAuditLogger) LogVoteDeleted(voteID, voterID int64) {
	m.Called(voteID, voterID)
}

func (m *MockAuditLogger) LogSweep(removed int) {
	m.Called(removed)
}

func (m *MockAuditLogger) LogError(operation string, voterID int64, err error) {
	m.Called(operation, voterID, err)
}

var voterColumnNames = []string{
	"id", "name", "email", "mobile", "age", "aadhaar", "voter_id_number",
	"voter_id_filename", "aadhaar_filename", "photo_filename", "face_encoding",
	"country", "state", "constituency", "otp", "approved", "voted", "created_at",
}

var testCreatedAt = time.Date(2024, 4, 19, 9, 30, 0, 0, time.UTC)

// voterRows returns one voter row with the given encoding (nil or JSON text).
func voterRows(id int64, encoding any, approved, voted bool) *sqlmock.Rows {
	return sqlmock.NewRows(voterColumnNames).AddRow(
		id, "Asha Rao", "asha@example.com", "9876543210", 34, "123412341234", "KA/01/123/456789",
		"ab12cdidcard.png", "ef34ghaadcard.pdf", nil, encoding,
		"India", "Karnataka", "Bangalore South", "482913", approved, voted, testCreatedAt)
}

// uniformDescriptor is a 128-dimension embedding with every component set to v.
func uniformDescriptor(v float32) face.Descriptor {
	d := make(face.Descriptor, 128)
	for i := range d {
		d[i] = v
	}
	return d
}

func descriptorText(t *testing.T, d face.Descriptor) string {
	t.Helper()
	text, err := d.Text()
	require.NoError(t, err)
	return text
}

func newTestDocumentStore(t *testing.T) *storage.DocumentStore {
	t.Helper()
	root := t.TempDir()
	docs, err := storage.NewDocumentStore(
		filepath.Join(root, "ids"),
		filepath.Join(root, "aadhaar"),
		filepath.Join(root, "photos"),
		filepath.Join(root, "symbols"),
	)
	require.NoError(t, err)
	return docs
}
