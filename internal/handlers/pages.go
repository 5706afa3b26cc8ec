package handlers

import (
	"net/http"

	"github.com/smartvoting/backend/internal/models"
)

// Index renders the landing page with the candidate list
// @Summary Home page
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router / [get]
func Index(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "index.html", indexView{page: page{Title: "Smart Voting"}, Candidates: models.Candidates})
}

// FaceVerify renders the webcam page used before voting
// @Summary Face verification page
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /face_verify [get]
func FaceVerify(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "face_verify.html", page{Title: "Verify Your Face"})
}
