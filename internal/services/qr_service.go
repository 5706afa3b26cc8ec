package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/smartvoting/backend/internal/models"
)

// RegistrationReference is the payload encoded in a voter's receipt QR code.
// It never carries the full Aadhaar number.
type RegistrationReference struct {
	VoterID      int64  `json:"voterId"`
	Aadhaar      string `json:"aadhaar"`
	Constituency string `json:"constituency"`
	Issued       int64  `json:"issued"`
}

type QRService struct {
	size int
}

func NewQRService() *QRService {
	return &QRService{size: 256}
}

// RegistrationQRCode returns the receipt QR for voter as a base64 PNG.
func (s *QRService) RegistrationQRCode(voter *models.Voter) (string, error) {
	ref := RegistrationReference{
		VoterID:      voter.ID,
		Aadhaar:      voter.MaskedAadhaar(),
		Constituency: voter.Constituency,
		Issued:       time.Now().Unix(),
	}

	jsonData, err := json.Marshal(ref)
	if err != nil {
		return "", err
	}

	qr, err := qrcode.New(string(jsonData), qrcode.Medium)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(s.size)); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
