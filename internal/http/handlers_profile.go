package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"ehuza/internal/core"
	"ehuza/internal/session"
	"ehuza/internal/wallet"
)

// maxImageSize caps profile picture uploads at 2 MiB.
const maxImageSize = 2 << 20

type profileData struct {
	Profile  core.Profile
	Active   string
	EditMode bool
	JoinedAt string
	Error    string
	Notice   string
}

// handleProfile renders the profile in read-only mode by default; ?edit=1
// switches the same page into the edit form. The name and email fields are
// pre-filled, the password fields start empty.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		profile, err := s.getProfile(r.Context(), sess)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to load profile", "session_id", sess.ID, "error", err)
			s.renderError(w, r, http.StatusBadGateway, "Could not load your profile. Please try again.")
			return
		}

		data := profileData{
			Profile:  profile,
			Active:   "profile",
			EditMode: r.URL.Query().Get("edit") == "1",
			JoinedAt: core.FormatTimestamp(profile.CreatedAt),
		}
		if r.URL.Query().Get("notice") == "saved" {
			data.Notice = "Profile updated."
		}
		s.render(w, r, "profile.html", data)

	case http.MethodPost:
		s.handleProfileUpdate(w, r, sess)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	renderEdit := func(errMsg string) {
		profile, err := s.getProfile(r.Context(), sess)
		if err != nil {
			s.renderError(w, r, http.StatusBadGateway, "Could not load your profile. Please try again.")
			return
		}
		// Echo the submitted values back into the form.
		profile.Name = name
		profile.Email = email
		s.render(w, r, "profile.html", profileData{
			Profile:  profile,
			Active:   "profile",
			EditMode: true,
			JoinedAt: core.FormatTimestamp(profile.CreatedAt),
			Error:    errMsg,
		})
	}

	if name == "" || email == "" {
		renderEdit("Name and email are required.")
		return
	}
	if password != confirm {
		renderEdit("Passwords do not match.")
		return
	}

	payload := wallet.UpdateProfilePayload{Name: name, Email: email}
	if password != "" {
		payload.Password = &password
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
		if err != nil {
			renderEdit("Could not read the uploaded image.")
			return
		}
		if len(data) > maxImageSize {
			renderEdit("The image is too large. Keep it under 2 MB.")
			return
		}
		payload.Image = &wallet.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	if _, err := s.backend.UpdateProfile(r.Context(), payload); err != nil {
		slog.ErrorContext(r.Context(), "Failed to update profile", "session_id", sess.ID, "error", err)
		renderEdit(wallet.ErrorMessage(err, "Could not save your profile. Please try again."))
		return
	}

	s.profileCache.Delete(profileKey(sess.ID))
	slog.InfoContext(r.Context(), "Profile updated",
		"session_id", sess.ID, "password_changed", payload.HasPassword(), "image_changed", payload.HasImage())

	http.Redirect(w, r, "/profile?notice=saved", http.StatusSeeOther)
}
