package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smartvoting/backend/internal/audit"
	"github.com/smartvoting/backend/internal/models"
	"github.com/smartvoting/backend/internal/sms"
	"github.com/smartvoting/backend/internal/storage"
)

// RegistrationForm is the identity part of the registration form.
type RegistrationForm struct {
	Name          string `validate:"required"`
	Email         string `validate:"required"`
	Mobile        string `validate:"required,digits=10"`
	Age           string `validate:"required,adult"`
	Aadhaar       string `validate:"required,digits=12"`
	VoterIDNumber string `validate:"required"`
	Country       string `validate:"required"`
	State         string `validate:"required"`
	Constituency  string `validate:"required"`
	Captcha       string
}

// Normalize trims surrounding whitespace from every field.
func (f *RegistrationForm) Normalize() {
	for _, p := range []*string{&f.Name, &f.Email, &f.Mobile, &f.Age, &f.Aadhaar,
		&f.VoterIDNumber, &f.Country, &f.State, &f.Constituency, &f.Captcha} {
		*p = strings.TrimSpace(*p)
	}
}

var fieldMessages = map[string]string{
	"Mobile":  "Enter valid 10-digit mobile number",
	"Age":     "You must be 18 or older",
	"Aadhaar": "Aadhaar must be 12 digits",
}

// registrationMessage maps validator failures to the message shown on the
// form. Blank fields win over format errors.
func registrationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid registration"
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "All fields are required."
		}
	}
	if msg, ok := fieldMessages[verrs[0].Field()]; ok {
		return msg
	}
	return "Invalid registration"
}

// RegistrationRequest carries a submitted form, its two documents and the
// session id whose captcha it answers.
type RegistrationRequest struct {
	Form       RegistrationForm
	VoterIDDoc *storage.Upload
	AadhaarDoc *storage.Upload
	SessionID  string
}

type RegistrationResult struct {
	Voter   *models.Voter
	OTPSent bool
	Message string
}

type RegistrationService struct {
	voters     *VoterService
	docs       *storage.DocumentStore
	captcha    *CaptchaService
	sms        sms.Sender
	audit      audit.Logger
	validation *ValidationHelper
}

func NewRegistrationService(voters *VoterService, docs *storage.DocumentStore, captcha *CaptchaService,
	sender sms.Sender, auditLogger audit.Logger) *RegistrationService {
	return &RegistrationService{
		voters:     voters,
		docs:       docs,
		captcha:    captcha,
		sms:        sender,
		audit:      auditLogger,
		validation: NewValidationHelper(),
	}
}

// Register validates the form, stores both documents, inserts the voter with
// a fresh OTP and attempts SMS delivery. Validation failures are *FormError.
func (s *RegistrationService) Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error) {
	form := req.Form
	form.Normalize()

	if err := s.validation.ValidateStruct(&form); err != nil {
		log.Printf("[REGISTER] Validation failed: %v", err)
		return nil, formError(registrationMessage(err))
	}

	ok, err := s.captcha.Check(ctx, req.SessionID, form.Captcha)
	if err != nil {
		return nil, fmt.Errorf("check captcha: %w", err)
	}
	if !ok {
		return nil, formError("Invalid CAPTCHA")
	}

	exists, err := s.voters.AadhaarExists(ctx, form.Aadhaar)
	if err != nil {
		return nil, fmt.Errorf("check aadhaar: %w", err)
	}
	if exists {
		return nil, formError("Aadhaar already registered")
	}

	if req.VoterIDDoc == nil || req.VoterIDDoc.Filename == "" {
		return nil, formError("Voter ID document is required")
	}
	if req.AadhaarDoc == nil || req.AadhaarDoc.Filename == "" {
		return nil, formError("Aadhaar document is required")
	}
	if !storage.AllowedExtension(req.VoterIDDoc.Filename) {
		return nil, formError("Invalid voter ID file type")
	}
	if !storage.AllowedExtension(req.AadhaarDoc.Filename) {
		return nil, formError("Invalid Aadhaar file type")
	}

	voterIDFile, err := s.docs.SaveUpload(storage.KindVoterID, "id", *req.VoterIDDoc)
	if err != nil {
		return nil, fmt.Errorf("save voter id document: %w", err)
	}
	aadhaarFile, err := s.docs.SaveUpload(storage.KindAadhaar, "aad", *req.AadhaarDoc)
	if err != nil {
		s.docs.Remove(storage.KindVoterID, voterIDFile)
		return nil, fmt.Errorf("save aadhaar document: %w", err)
	}

	otp, err := GenerateOTP()
	if err != nil {
		s.docs.Remove(storage.KindVoterID, voterIDFile)
		s.docs.Remove(storage.KindAadhaar, aadhaarFile)
		return nil, err
	}

	age, _ := strconv.Atoi(form.Age)
	voter := &models.Voter{
		Name:            form.Name,
		Email:           form.Email,
		Mobile:          form.Mobile,
		Age:             age,
		Aadhaar:         form.Aadhaar,
		VoterIDNumber:   form.VoterIDNumber,
		VoterIDFilename: voterIDFile,
		AadhaarFilename: aadhaarFile,
		Country:         form.Country,
		State:           form.State,
		Constituency:    form.Constituency,
		OTP:             otp,
	}

	if err := s.voters.Create(ctx, voter); err != nil {
		s.docs.Remove(storage.KindVoterID, voterIDFile)
		s.docs.Remove(storage.KindAadhaar, aadhaarFile)
		if errors.Is(err, ErrAadhaarTaken) {
			return nil, formError("Aadhaar already registered")
		}
		s.audit.LogError("register", 0, err)
		return nil, err
	}

	log.Printf("[REGISTER] Voter %d registered for constituency %s", voter.ID, voter.Constituency)
	s.audit.LogRegistration(voter.ID, voter.Constituency)

	if err := s.captcha.Consume(ctx, req.SessionID); err != nil {
		log.Printf("[REGISTER] Failed to clear captcha: %v", err)
	}

	result := &RegistrationResult{Voter: voter}
	if err := s.sms.SendOTP(ctx, voter.Mobile, otp); err != nil {
		log.Printf("[REGISTER] OTP delivery failed for voter %d: %v", voter.ID, err)
		result.Message = "OTP sending failed"
	} else {
		result.OTPSent = true
		result.Message = "OTP sent via SMS to " + voter.Mobile
	}
	return result, nil
}

// GenerateOTP returns a random six digit code in [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
