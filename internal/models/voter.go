package models

import (
	"time"

	"github.com/smartvoting/backend/internal/face"
)

type Voter struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Mobile          string          `json:"mobile"`
	Age             int             `json:"age"`
	Aadhaar         string          `json:"-"`
	VoterIDNumber   string          `json:"voterIdNumber"`
	VoterIDFilename string          `json:"voterIdFilename,omitempty"`
	AadhaarFilename string          `json:"aadhaarFilename,omitempty"`
	PhotoFilename   string          `json:"photoFilename,omitempty"`
	FaceEncoding    face.Descriptor `json:"-"`
	Country         string          `json:"country"`
	State           string          `json:"state"`
	Constituency    string          `json:"constituency"`
	OTP             string          `json:"-"`
	Approved        bool            `json:"approved"`
	Voted           bool            `json:"voted"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// MaskedAadhaar returns the Aadhaar as XXXX-XXXX-<last4>.
func (v *Voter) MaskedAadhaar() string {
	return MaskAadhaar(v.Aadhaar)
}

// HasFace reports whether a face embedding has been enrolled.
func (v *Voter) HasFace() bool {
	return len(v.FaceEncoding) > 0
}

// MaskAadhaar hides all but the last four digits. Values that are not
// 12 characters long are returned unchanged.
func MaskAadhaar(aadhaar string) string {
	if len(aadhaar) != 12 {
		return aadhaar
	}
	return "XXXX-XXXX-" + aadhaar[8:]
}
