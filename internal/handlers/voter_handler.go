package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/smartvoting/backend/internal/models"
	"github.com/smartvoting/backend/internal/services"
	"github.com/smartvoting/backend/internal/session"
	"github.com/smartvoting/backend/internal/storage"
)

const multipartMemory = 8 << 20

// VoterHandler serves the registration journey: form, OTP, face enrollment,
// CAPTCHA and status tracking.
type VoterHandler struct {
	registration *services.RegistrationService
	voters       *services.VoterService
	faces        *services.FaceService
	captcha      *services.CaptchaService
	qr           *services.QRService
	sessions     *session.Manager
	maxUpload    int64
}

func NewVoterHandler(registration *services.RegistrationService, voters *services.VoterService,
	faces *services.FaceService, captcha *services.CaptchaService, qr *services.QRService,
	sessions *session.Manager, maxUpload int64) *VoterHandler {
	return &VoterHandler{
		registration: registration,
		voters:       voters,
		faces:        faces,
		captcha:      captcha,
		qr:           qr,
		sessions:     sessions,
		maxUpload:    maxUpload,
	}
}

// ShowRegister renders the empty registration form.
// @Summary Registration form
// @Tags registration
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /register [get]
func (h *VoterHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "register.html", registerView{page: page{Title: "Voter Registration"}})
}

// Register handles the registration form
// @Summary Register a voter
// @Description Validates identity fields and CAPTCHA, stores both documents and sends an OTP
// @Tags registration
// @Accept mpfd
// @Produce html
// @Param name formData string true "Full name"
// @Param email formData string true "Email"
// @Param mobile formData string true "10 digit mobile number"
// @Param age formData string true "Age (18 or older)"
// @Param aadhaar formData string true "12 digit Aadhaar number"
// @Param voter_id_number formData string true "Voter ID number"
// @Param country formData string true "Country"
// @Param state formData string true "State"
// @Param constituency formData string true "Constituency"
// @Param captcha formData string true "CAPTCHA text"
// @Param voter_id_file formData file true "Voter ID document (png, jpg, jpeg, pdf)"
// @Param aadhaar_file formData file true "Aadhaar document (png, jpg, jpeg, pdf)"
// @Success 200 {string} string "OTP form"
// @Failure 400 {string} string "Registration form with error"
// @Router /register [post]
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[REGISTER] Registration attempt from IP: %s", r.RemoteAddr)

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		log.Printf("[REGISTER] Invalid multipart form: %v", err)
		message := "Invalid request"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "Uploaded files are too large"
		}
		render(w, http.StatusBadRequest, "register.html", registerView{page: page{Title: "Voter Registration", Error: message, VoiceMsg: message}})
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := services.RegistrationForm{
		Name:          r.FormValue("name"),
		Email:         r.FormValue("email"),
		Mobile:        r.FormValue("mobile"),
		Age:           r.FormValue("age"),
		Aadhaar:       r.FormValue("aadhaar"),
		VoterIDNumber: r.FormValue("voter_id_number"),
		Country:       r.FormValue("country"),
		State:         r.FormValue("state"),
		Constituency:  r.FormValue("constituency"),
		Captcha:       r.FormValue("captcha"),
	}

	voterIDDoc, closeVoterID := formUpload(r, "voter_id_file")
	defer closeVoterID()
	aadhaarDoc, closeAadhaar := formUpload(r, "aadhaar_file")
	defer closeAadhaar()

	sess := session.FromContext(r.Context())
	result, err := h.registration.Register(r.Context(), services.RegistrationRequest{
		Form:       form,
		VoterIDDoc: voterIDDoc,
		AadhaarDoc: aadhaarDoc,
		SessionID:  sess.ID,
	})
	if err != nil {
		form.Normalize()
		form.Captcha = ""
		var formErr *services.FormError
		if errors.As(err, &formErr) {
			render(w, http.StatusBadRequest, "register.html", registerView{
				page: page{Title: "Voter Registration", Error: formErr.Message, VoiceMsg: formErr.Message},
				Form: form,
			})
			return
		}
		log.Printf("[REGISTER] Registration failed: %v", err)
		render(w, http.StatusInternalServerError, "register.html", registerView{
			page: page{Title: "Voter Registration", Error: "Registration failed, please try again"},
			Form: form,
		})
		return
	}

	render(w, http.StatusOK, "verify_otp.html", otpView{
		page:  page{Title: "Verify OTP", Message: result.Message, VoiceMsg: result.Message},
		Email: result.Voter.Email,
	})
}

// formUpload returns the named file part, or nil when it is absent. The
// returned func closes the part.
func formUpload(r *http.Request, field string) (*storage.Upload, func()) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, func() {}
	}
	return &storage.Upload{Filename: header.Filename, Content: file}, func() { file.Close() }
}

// VerifyOTP checks the code sent by SMS
// @Summary Verify registration OTP
// @Tags registration
// @Accept x-www-form-urlencoded
// @Produce html
// @Param email formData string true "Registered email"
// @Param otp formData string true "Six digit OTP"
// @Success 200 {string} string "Face enrollment page"
// @Failure 400 {string} string "OTP form with error"
// @Router /verify_otp [post]
func (h *VoterHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	otp := strings.TrimSpace(r.FormValue("otp"))

	voter, err := h.voters.VerifyOTP(r.Context(), email, otp)
	switch {
	case errors.Is(err, services.ErrNoRegistration):
		render(w, http.StatusBadRequest, "verify_otp.html", otpView{
			page: page{Title: "Verify OTP", Error: "No registration found", VoiceMsg: "No registration found"}, Email: email})
	case errors.Is(err, services.ErrInvalidOTP):
		render(w, http.StatusBadRequest, "verify_otp.html", otpView{
			page: page{Title: "Verify OTP", Error: "Invalid OTP", VoiceMsg: "Invalid OTP"}, Email: email})
	case err != nil:
		log.Printf("[OTP] Verification failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		render(w, http.StatusOK, "upload_face.html", uploadFaceView{
			page: page{Title: "Register Your Face", VoiceMsg: "OTP verified successfully"}, VoterID: voter.ID})
	}
}

// SaveFace enrolls the voter's face
// @Summary Enroll face
// @Description Stores the voter photo and face embedding after rejecting duplicates
// @Tags registration
// @Accept mpfd
// @Produce html
// @Param voter_id formData int true "Voter id"
// @Param photo formData file false "Photo upload"
// @Param captured_image formData string false "Webcam capture as data URL"
// @Success 200 {string} string "Registered, waiting for approval"
// @Failure 400 {string} string "Missing voter id, no image, invalid image, no face or duplicate face"
// @Failure 404 {string} string "Voter not found"
// @Failure 409 {string} string "Face already enrolled"
// @Failure 500 {string} string "Failed to process image"
// @Router /save_face [post]
func (h *VoterHandler) SaveFace(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Invalid image", http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	rawID := strings.TrimSpace(r.FormValue("voter_id"))
	if rawID == "" {
		http.Error(w, "Missing voter id", http.StatusBadRequest)
		return
	}
	voterID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		http.Error(w, "Voter not found", http.StatusNotFound)
		return
	}

	img := services.FaceImage{DataURL: r.FormValue("captured_image")}
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		if header.Filename != "" {
			img.Upload, err = readUpload(file)
			if err != nil {
				http.Error(w, "Invalid image", http.StatusBadRequest)
				return
			}
		}
	}

	voter, err := h.faces.Enroll(r.Context(), voterID, img)
	switch {
	case errors.Is(err, services.ErrVoterNotFound):
		http.Error(w, "Voter not found", http.StatusNotFound)
	case errors.Is(err, services.ErrAlreadyEnrolled):
		http.Error(w, "Face already enrolled", http.StatusConflict)
	case errors.Is(err, services.ErrNoImage):
		http.Error(w, "No image provided", http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidImage):
		http.Error(w, "Invalid image", http.StatusBadRequest)
	case errors.Is(err, services.ErrImageProcessing):
		http.Error(w, "Failed to process image", http.StatusInternalServerError)
	case errors.Is(err, services.ErrNoFace):
		render(w, http.StatusBadRequest, "upload_face.html", uploadFaceView{
			page: page{Title: "Register Your Face", Error: "No face detected", VoiceMsg: "No face detected"}, VoterID: voterID})
	case errors.Is(err, services.ErrFaceAlreadyRegistered):
		render(w, http.StatusBadRequest, "upload_face.html", uploadFaceView{
			page: page{Title: "Register Your Face", Error: "Face already registered", VoiceMsg: "Face already registered"}, VoterID: voterID})
	case err != nil:
		log.Printf("[FACE] Enrollment failed for voter %d: %v", voterID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		render(w, http.StatusOK, "registered_wait.html", registeredView{
			page:   page{Title: "Registration Complete", VoiceMsg: "Face registered successfully"},
			Voter:  voter,
			QRCode: h.registrationQR(voter),
		})
	}
}

func readUpload(file multipart.File) ([]byte, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty upload")
	}
	return data, nil
}

func (h *VoterHandler) registrationQR(voter *models.Voter) string {
	code, err := h.qr.RegistrationQRCode(voter)
	if err != nil {
		log.Printf("[QR] Failed to render registration QR for voter %d: %v", voter.ID, err)
		return ""
	}
	return code
}

// Captcha issues a new CAPTCHA image bound to the session
// @Summary CAPTCHA image
// @Tags registration
// @Produce png
// @Success 200 {file} binary "200x70 PNG"
// @Router /captcha [get]
func (h *VoterHandler) Captcha(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	data, err := h.captcha.Issue(r.Context(), sess.ID)
	if err != nil {
		log.Printf("[CAPTCHA] Failed to issue captcha: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := h.sessions.Save(w, sess); err != nil {
		log.Printf("[CAPTCHA] Failed to save session: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// Track shows a voter's registration status
// @Summary Track registration
// @Description Looks a registration up by Aadhaar and shows approval and voting status with a masked Aadhaar
// @Tags registration
// @Accept x-www-form-urlencoded
// @Produce html
// @Param aadhaar formData string false "12 digit Aadhaar number"
// @Success 200 {string} string "Status page"
// @Failure 400 {string} string "Invalid Aadhaar"
// @Failure 404 {string} string "No voter found"
// @Router /track [get]
// @Router /track [post]
func (h *VoterHandler) Track(w http.ResponseWriter, r *http.Request) {
	view := trackView{page: page{Title: "Track Registration"}}
	if r.Method != http.MethodPost {
		render(w, http.StatusOK, "track_status.html", view)
		return
	}

	aadhaar := strings.TrimSpace(r.FormValue("aadhaar"))
	if !services.IsAadhaar(aadhaar) {
		view.Error = "Enter valid 12-digit Aadhaar number"
		view.VoiceMsg = view.Error
		render(w, http.StatusBadRequest, "track_status.html", view)
		return
	}

	voter, err := h.voters.FindByAadhaar(r.Context(), aadhaar)
	if errors.Is(err, services.ErrVoterNotFound) {
		view.Error = "No voter found with this Aadhaar number"
		view.VoiceMsg = view.Error
		render(w, http.StatusNotFound, "track_status.html", view)
		return
	}
	if err != nil {
		log.Printf("[TRACK] Lookup failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.Voter = voter
	view.MaskedAadhaar = voter.MaskedAadhaar()
	view.QRCode = h.registrationQR(voter)
	render(w, http.StatusOK, "track_status.html", view)
}
