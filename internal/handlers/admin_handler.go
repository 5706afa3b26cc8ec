package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/smartvoting/backend/internal/services"
	"github.com/smartvoting/backend/internal/session"
)

const dashboardPath = "/admin/dashboard"

type AdminHandler struct {
	admin    *services.AdminService
	voters   *services.VoterService
	ballots  *services.BallotService
	sessions *session.Manager
}

func NewAdminHandler(admin *services.AdminService, voters *services.VoterService, ballots *services.BallotService,
	sessions *session.Manager) *AdminHandler {
	return &AdminHandler{
		admin:    admin,
		voters:   voters,
		ballots:  ballots,
		sessions: sessions,
	}
}

// Login shows the admin login form and checks submitted credentials
// @Summary Admin login
// @Tags admin
// @Accept x-www-form-urlencoded
// @Produce html
// @Param username formData string false "Admin username (POST only)"
// @Param password formData string false "Admin password (POST only)"
// @Success 200 {string} string "Login form"
// @Success 303 {string} string "Redirect to dashboard"
// @Failure 401 {string} string "Invalid credentials"
// @Router /admin [get]
// @Router /admin [post]
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	view := adminLoginView{page: page{Title: "Admin Login"}}
	if r.Method != http.MethodPost {
		render(w, http.StatusOK, "admin_login.html", view)
		return
	}

	username := r.FormValue("username")
	if !h.admin.Authenticate(username, r.FormValue("password")) {
		log.Printf("[ADMIN] Failed login from IP: %s", r.RemoteAddr)
		view.Error = "Invalid credentials"
		view.Username = username
		render(w, http.StatusUnauthorized, "admin_login.html", view)
		return
	}

	sess := session.FromContext(r.Context())
	sess.Admin = true
	if err := h.sessions.Save(w, sess); err != nil {
		log.Printf("[ADMIN] Failed to save session: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	log.Printf("[ADMIN] Login from IP: %s", r.RemoteAddr)
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// Dashboard renders pending voters, tallies and all voters and votes
// @Summary Admin dashboard
// @Tags admin
// @Produce html
// @Success 200 {string} string "Dashboard"
// @Success 303 {string} string "Redirect to /admin without an admin session"
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.admin.Dashboard(r.Context())
	if err != nil {
		log.Printf("[ADMIN] Dashboard failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	render(w, http.StatusOK, "admin_dashboard.html", dashboardView{page: page{Title: "Admin Dashboard"}, Dashboard: dash})
}

// Approve marks a voter as approved
// @Summary Approve voter
// @Tags admin
// @Param id path int true "Voter id"
// @Success 303 {string} string "Redirect to dashboard"
// @Router /admin/approve/{id} [post]
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if ok {
		err := h.voters.Approve(r.Context(), id)
		if err != nil && !errors.Is(err, services.ErrVoterNotFound) {
			log.Printf("[ADMIN] Approve voter %d failed: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if err == nil {
			log.Printf("[ADMIN] Voter %d approved", id)
		}
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// Reject deletes a voter and their files
// @Summary Reject voter
// @Tags admin
// @Param id path int true "Voter id"
// @Success 303 {string} string "Redirect to dashboard"
// @Router /admin/reject/{id} [post]
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if ok {
		err := h.voters.Reject(r.Context(), id)
		if err != nil && !errors.Is(err, services.ErrVoterNotFound) {
			log.Printf("[ADMIN] Reject voter %d failed: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if err == nil {
			log.Printf("[ADMIN] Voter %d rejected", id)
		}
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// DeleteVote removes a vote and lets the voter vote again
// @Summary Delete vote
// @Tags admin
// @Param id path int true "Vote id"
// @Success 303 {string} string "Redirect to dashboard"
// @Router /admin/delete_vote/{id} [post]
func (h *AdminHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if ok {
		err := h.ballots.DeleteVote(r.Context(), id)
		if err != nil && !errors.Is(err, services.ErrVoteNotFound) {
			log.Printf("[ADMIN] Delete vote %d failed: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if err == nil {
			log.Printf("[ADMIN] Vote %d deleted", id)
		}
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// Logout drops the admin flag and revokes the current token
// @Summary Admin logout
// @Tags admin
// @Success 303 {string} string "Redirect to /admin"
// @Router /admin/logout [get]
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess.TokenID != "" {
		if err := h.sessions.Store().Revoke(r.Context(), sess.TokenID, time.Until(sess.ExpiresAt)); err != nil {
			log.Printf("[ADMIN] Failed to revoke token: %v", err)
		}
	}

	sess.Admin = false
	if err := h.sessions.Save(w, sess); err != nil {
		log.Printf("[ADMIN] Failed to save session: %v", err)
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
