package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"github.com/smartvoting/backend/internal/models"
	"github.com/smartvoting/backend/internal/services"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// page carries the fields every template can show. VoiceMsg is read aloud by
// the page script for accessibility.
type page struct {
	Title    string
	Error    string
	Message  string
	VoiceMsg string
}

type indexView struct {
	page
	Candidates []models.Candidate
}

type registerView struct {
	page
	Form services.RegistrationForm
}

type otpView struct {
	page
	Email string
}

type uploadFaceView struct {
	page
	VoterID int64
}

type registeredView struct {
	page
	Voter  *models.Voter
	QRCode string
}

type voteView struct {
	page
	Candidates []models.Candidate
	VoterName  string
	Closed     bool
}

type trackView struct {
	page
	Aadhaar       string
	Voter         *models.Voter
	MaskedAadhaar string
	QRCode        string
}

type adminLoginView struct {
	page
	Username string
}

type dashboardView struct {
	page
	*services.Dashboard
}

// render buffers the template output before writing the status line.
func render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[RENDER] Template %s failed: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// StatusResponse is the JSON body of the face verification endpoint.
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Face verified"`
}

func writeStatus(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(StatusResponse{Status: status, Message: message})
}
