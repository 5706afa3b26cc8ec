package services

import "errors"

var (
	ErrVoterNotFound         = errors.New("voter not found")
	ErrVoteNotFound          = errors.New("vote not found")
	ErrAadhaarTaken          = errors.New("aadhaar already registered")
	ErrNoRegistration        = errors.New("no registration found")
	ErrInvalidOTP            = errors.New("invalid otp")
	ErrNoImage               = errors.New("no image provided")
	ErrInvalidImage          = errors.New("invalid image")
	ErrImageProcessing       = errors.New("failed to process image")
	ErrNoFace                = errors.New("no face detected")
	ErrFaceAlreadyRegistered = errors.New("face already registered")
	ErrAlreadyEnrolled       = errors.New("face already enrolled")
	ErrFaceNotRecognized     = errors.New("face not recognized")
	ErrAlreadyVoted          = errors.New("already voted")
	ErrNotApproved           = errors.New("voter not approved")
	ErrInvalidCandidate      = errors.New("invalid candidate")
)

// FormError is a user-facing validation failure shown on the originating form.
type FormError struct {
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

func formError(message string) error {
	return &FormError{Message: message}
}
