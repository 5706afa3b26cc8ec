package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mW "github.com/smartvoting/backend/internal/middleware"
	"github.com/smartvoting/backend/internal/session"
	"github.com/smartvoting/backend/internal/storage"
)

// Routes groups the handlers mounted by Mount.
type Routes struct {
	Voters   *VoterHandler
	Ballots  *BallotHandler
	Admin    *AdminHandler
	Sessions *session.Manager
	Docs     *storage.DocumentStore
}

// Mount registers pages, form endpoints, admin routes and file serving on r.
func (rt Routes) Mount(r chi.Router) {
	r.Handle("/symbols/*", http.StripPrefix("/symbols/", mW.SymbolFileServer(rt.Docs.Dir(storage.KindSymbol))))

	r.Group(func(r chi.Router) {
		r.Use(rt.Sessions.Middleware)

		r.Get("/", Index)
		r.Get("/face_verify", FaceVerify)
		r.Get("/captcha", rt.Voters.Captcha)
		r.Get("/register", rt.Voters.ShowRegister)
		r.Post("/register", rt.Voters.Register)
		r.Post("/verify_otp", rt.Voters.VerifyOTP)
		r.Post("/save_face", rt.Voters.SaveFace)
		r.Get("/track", rt.Voters.Track)
		r.Post("/track", rt.Voters.Track)

		r.Post("/verify", rt.Ballots.Verify)
		r.Group(func(r chi.Router) {
			r.Use(mW.RequireVoter)
			r.Get("/vote", rt.Ballots.Vote)
			r.Post("/vote", rt.Ballots.Vote)
		})

		r.Get("/admin", rt.Admin.Login)
		r.Post("/admin", rt.Admin.Login)
		r.Get("/admin/logout", rt.Admin.Logout)
		r.Group(func(r chi.Router) {
			r.Use(mW.RequireAdmin)
			r.Get("/admin/dashboard", rt.Admin.Dashboard)
			r.Post("/admin/approve/{id}", rt.Admin.Approve)
			r.Post("/admin/reject/{id}", rt.Admin.Reject)
			r.Post("/admin/delete_vote/{id}", rt.Admin.DeleteVote)

			r.Handle("/uploads/ids/*", http.StripPrefix("/uploads/ids/", mW.StaticFileServer(rt.Docs.Dir(storage.KindVoterID))))
			r.Handle("/uploads/aadhaar/*", http.StripPrefix("/uploads/aadhaar/", mW.StaticFileServer(rt.Docs.Dir(storage.KindAadhaar))))
			r.Handle("/voter_photos/*", http.StripPrefix("/voter_photos/", mW.StaticFileServer(rt.Docs.Dir(storage.KindPhoto))))
		})
	})
}
