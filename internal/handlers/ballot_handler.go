package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/smartvoting/backend/internal/models"
	"github.com/smartvoting/backend/internal/services"
	"github.com/smartvoting/backend/internal/session"
)

// BallotHandler authenticates voters by face and takes their vote.
type BallotHandler struct {
	faces    *services.FaceService
	ballots  *services.BallotService
	sessions *session.Manager
}

func NewBallotHandler(faces *services.FaceService, ballots *services.BallotService, sessions *session.Manager) *BallotHandler {
	return &BallotHandler{
		faces:    faces,
		ballots:  ballots,
		sessions: sessions,
	}
}

// VerifyRequest is the webcam capture sent for face verification.
type VerifyRequest struct {
	Image string `json:"image" example:"data:image/jpeg;base64,/9j/4AAQSkZJRg..."`
}

// Verify matches a webcam capture against approved voters
// @Summary Verify face for voting
// @Description Binds the first approved voter whose face matches to the session
// @Tags voting
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Captured image"
// @Success 200 {object} StatusResponse "status is success or fail"
// @Router /verify [post]
func (h *BallotHandler) Verify(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeStatus(w, http.StatusOK, "fail", "Invalid request")
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatus(w, http.StatusOK, "fail", "Invalid request")
		return
	}

	voter, err := h.faces.Identify(r.Context(), req.Image)
	switch {
	case errors.Is(err, services.ErrNoImage):
		writeStatus(w, http.StatusOK, "fail", "No image provided")
		return
	case errors.Is(err, services.ErrNoFace):
		writeStatus(w, http.StatusOK, "fail", "No face detected")
		return
	case errors.Is(err, services.ErrAlreadyVoted):
		writeStatus(w, http.StatusOK, "fail", "You already voted")
		return
	case errors.Is(err, services.ErrFaceNotRecognized):
		writeStatus(w, http.StatusOK, "fail", "Face not recognized")
		return
	case err != nil:
		log.Printf("[FACE] Verification failed: %v", err)
		writeStatus(w, http.StatusInternalServerError, "fail", "Verification failed")
		return
	}

	sess := session.FromContext(r.Context())
	sess.VoterID = voter.ID
	sess.VoterName = voter.Name
	if err := h.sessions.Save(w, sess); err != nil {
		log.Printf("[FACE] Failed to save session for voter %d: %v", voter.ID, err)
		writeStatus(w, http.StatusInternalServerError, "fail", "Verification failed")
		return
	}

	log.Printf("[FACE] Voter %d verified for voting", voter.ID)
	writeStatus(w, http.StatusOK, "success", "Face verified")
}

// Vote shows the ballot and records the voter's choice
// @Summary Cast a vote
// @Description Requires a face-verified session. The session is cleared after a vote or when the voter already voted.
// @Tags voting
// @Accept x-www-form-urlencoded
// @Produce html
// @Param candidate formData string false "Candidate name (POST only)"
// @Success 200 {string} string "Ballot page"
// @Success 303 {string} string "Redirect to /face_verify"
// @Failure 400 {string} string "Invalid candidate"
// @Router /vote [get]
// @Router /vote [post]
func (h *BallotHandler) Vote(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	voter, err := h.ballots.Eligibility(r.Context(), sess.VoterID)
	switch {
	case errors.Is(err, services.ErrVoterNotFound), errors.Is(err, services.ErrNotApproved):
		h.clear(w, r, sess)
		http.Redirect(w, r, "/face_verify", http.StatusSeeOther)
		return
	case errors.Is(err, services.ErrAlreadyVoted):
		h.clear(w, r, sess)
		render(w, http.StatusOK, "vote.html", voteView{
			page:       page{Title: "Vote", Error: "You have already voted", VoiceMsg: "You have already voted"},
			Candidates: models.Candidates,
			Closed:     true,
		})
		return
	case err != nil:
		log.Printf("[BALLOT] Eligibility check failed for voter %d: %v", sess.VoterID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view := voteView{
		page:       page{Title: "Vote"},
		Candidates: models.Candidates,
		VoterName:  voter.Name,
	}
	if r.Method != http.MethodPost {
		render(w, http.StatusOK, "vote.html", view)
		return
	}

	_, err = h.ballots.Cast(r.Context(), voter.ID, r.FormValue("candidate"))
	switch {
	case errors.Is(err, services.ErrInvalidCandidate):
		view.Error = "Invalid candidate"
		view.VoiceMsg = view.Error
		render(w, http.StatusBadRequest, "vote.html", view)
	case errors.Is(err, services.ErrVoterNotFound), errors.Is(err, services.ErrNotApproved):
		h.clear(w, r, sess)
		http.Redirect(w, r, "/face_verify", http.StatusSeeOther)
	case errors.Is(err, services.ErrAlreadyVoted):
		h.clear(w, r, sess)
		view.Error = "You have already voted"
		view.VoiceMsg = view.Error
		view.Closed = true
		render(w, http.StatusOK, "vote.html", view)
	case err != nil:
		log.Printf("[BALLOT] Cast failed for voter %d: %v", voter.ID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		h.clear(w, r, sess)
		view.Message = "Thank you for voting"
		view.VoiceMsg = view.Message
		view.Closed = true
		render(w, http.StatusOK, "vote.html", view)
	}
}

func (h *BallotHandler) clear(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := h.sessions.Clear(r.Context(), w, sess); err != nil {
		log.Printf("[BALLOT] Failed to clear session: %v", err)
	}
}
