package services

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/lib/pq"
	"github.com/smartvoting/backend/internal/session"
	"github.com/smartvoting/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type registrationFixture struct {
	service   *RegistrationService
	docs      *storage.DocumentStore
	sqlMock   sqlmock.Sqlmock
	redisMock redismock.ClientMock
	sender    *MockSender
	audit     *MockAuditLogger
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	redisClient, redisMock := redismock.NewClientMock()
	captcha, err := NewCaptchaService(session.NewRedisStore(redisClient), 10*time.Minute)
	require.NoError(t, err)

	docs := newTestDocumentStore(t)
	auditLogger := newMockAuditLogger()
	sender := &MockSender{}
	voters := NewVoterService(db, docs, auditLogger)

	return &registrationFixture{
		service:   NewRegistrationService(voters, docs, captcha, sender, auditLogger),
		docs:      docs,
		sqlMock:   sqlMock,
		redisMock: redisMock,
		sender:    sender,
		audit:     auditLogger,
	}
}

func validRegistration() RegistrationRequest {
	return RegistrationRequest{
		Form:       validForm(),
		VoterIDDoc: &storage.Upload{Filename: "voter card.png", Content: strings.NewReader("png bytes")},
		AadhaarDoc: &storage.Upload{Filename: "aadhaar.pdf", Content: strings.NewReader("pdf bytes")},
		SessionID:  "sid-1",
	}
}

func formMessage(t *testing.T, err error) string {
	t.Helper()
	var fe *FormError
	require.True(t, errors.As(err, &fe), "expected *FormError, got %v", err)
	return fe.Message
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestRegistrationService_Register_Success(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	req := validRegistration()
	req.Form.Captcha = " ab12c "

	f.redisMock.ExpectGet("captcha:sid-1").SetVal("AB12C")
	f.sqlMock.ExpectQuery("SELECT EXISTS").WithArgs("123412341234").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.sqlMock.ExpectQuery("INSERT INTO voters").
		WithArgs("Asha Rao", "asha@example.com", "9876543210", 34, "123412341234", "KA/01/123/456789",
			sqlmock.AnyArg(), sqlmock.AnyArg(), "India", "Karnataka", "Bangalore South", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	f.redisMock.ExpectDel("captcha:sid-1").SetVal(1)
	f.sender.On("SendOTP", mock.Anything, "9876543210", mock.AnythingOfType("string")).Return(nil)

	result, err := f.service.Register(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, int64(21), result.Voter.ID)
	assert.True(t, result.OTPSent)
	assert.Equal(t, "OTP sent via SMS to 9876543210", result.Message)
	assert.Len(t, result.Voter.OTP, 6)
	assert.True(t, strings.HasSuffix(result.Voter.VoterIDFilename, "idvoter_card.png"))
	assert.True(t, strings.HasSuffix(result.Voter.AadhaarFilename, "aadaadhaar.pdf"))
	assert.FileExists(t, f.docs.Dir(storage.KindVoterID)+"/"+result.Voter.VoterIDFilename)
	assert.FileExists(t, f.docs.Dir(storage.KindAadhaar)+"/"+result.Voter.AadhaarFilename)

	f.sender.AssertCalled(t, "SendOTP", mock.Anything, "9876543210", result.Voter.OTP)
	f.audit.AssertCalled(t, "LogRegistration", int64(21), "Bangalore South")
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	assert.NoError(t, f.redisMock.ExpectationsWereMet())
}

func TestRegistrationService_Register_SMSFailureIsNotFatal(t *testing.T) {
	f := newRegistrationFixture(t)

	f.redisMock.ExpectGet("captcha:sid-1").SetVal("AB12C")
	f.sqlMock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.sqlMock.ExpectQuery("INSERT INTO voters").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(22))
	f.redisMock.ExpectDel("captcha:sid-1").SetVal(1)
	f.sender.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("gateway down"))

	result, err := f.service.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.False(t, result.OTPSent)
	assert.Equal(t, "OTP sending failed", result.Message)
}

func TestRegistrationService_Register_Rejections(t *testing.T) {
	t.Run("blank field", func(t *testing.T) {
		f := newRegistrationFixture(t)
		req := validRegistration()
		req.Form.Name = "   "

		_, err := f.service.Register(context.Background(), req)
		assert.Equal(t, "All fields are required.", formMessage(t, err))
	})

	t.Run("wrong captcha", func(t *testing.T) {
		f := newRegistrationFixture(t)
		req := validRegistration()
		req.Form.Captcha = "ZZZZZ"
		f.redisMock.ExpectGet("captcha:sid-1").SetVal("AB12C")

		_, err := f.service.Register(context.Background(), req)
		assert.Equal(t, "Invalid CAPTCHA", formMessage(t, err))
	})

	t.Run("no captcha issued", func(t *testing.T) {
		f := newRegistrationFixture(t)
		req := validRegistration()
		req.Form.Captcha = ""
		f.redisMock.ExpectGet("captcha:sid-1").RedisNil()

		_, err := f.service.Register(context.Background(), req)
		assert.Equal(t, "Invalid CAPTCHA", formMessage(t, err))
	})

	t.Run("aadhaar already registered", func(t *testing.T) {
		f := newRegistrationFixture(t)
		f.redisMock.ExpectGet("captcha:sid-1").SetVal("AB12C")
		f.sqlMock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := f.service.Register(context.Background(), validRegistration())
		assert.Equal(t, "Aadhaar already registered", formMessage(t, err))
	})

	docCases := []struct {
		name    string
		mutate  func(r *RegistrationRequest)
		message string
	}{
		{"missing voter id document", func(r *RegistrationRequest) { r.VoterIDDoc = nil }, "Voter ID document is required"},
		{"empty voter id filename", func(r *RegistrationRequest) { r.VoterIDDoc.Filename = "" }, "Voter ID document is required"},
		{"missing aadhaar document", func(r *RegistrationRequest) { r.AadhaarDoc = nil }, "Aadhaar document is required"},
		{"voter id wrong type", func(r *RegistrationRequest) { r.VoterIDDoc.Filename = "card.exe" }, "Invalid voter ID file type"},
		{"aadhaar wrong type", func(r *RegistrationRequest) { r.AadhaarDoc.Filename = "aadhaar.gif" }, "Invalid Aadhaar file type"},
	}
	for _, tc := range docCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRegistrationFixture(t)
			req := validRegistration()
			tc.mutate(&req)
			f.redisMock.ExpectGet("captcha:sid-1").SetVal("AB12C")
			f.sqlMock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

			_, err := f.service.Register(context.Background(), req)
			assert.Equal(t, tc.message, formMessage(t, err))
			assert.Equal(t, 0, dirEntries(t, f.docs.Dir(storage.KindVoterID)))
		})
	}
}

func TestRegistrationService_Register_InsertRace(t *testing.T) {
	f := newRegistrationFixture(t)

	f.redisMock.ExpectGet("captcha:sid-1").SetVal("AB12C")
	f.sqlMock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.sqlMock.ExpectQuery("INSERT INTO voters").WillReturnError(&pq.Error{Code: "23505"})

	_, err := f.service.Register(context.Background(), validRegistration())
	assert.Equal(t, "Aadhaar already registered", formMessage(t, err))

	assert.Equal(t, 0, dirEntries(t, f.docs.Dir(storage.KindVoterID)))
	assert.Equal(t, 0, dirEntries(t, f.docs.Dir(storage.KindAadhaar)))
	f.sender.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 200; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)

		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
