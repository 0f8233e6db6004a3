package services

import (
	cryptorand "crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/horizonbank/backend/internal/mail"
	"github.com/horizonbank/backend/internal/store"
)

const resetTokenTTL = time.Hour

// PasswordResetService implements the forgot/reset password flow. Only
// the SHA-256 of the reset token is stored; the raw token travels to the
// user by email and is hashed again on redemption.
type PasswordResetService struct {
	users  store.UserStore
	mailer mail.Mailer
}

func NewPasswordResetService(users store.UserStore, mailer mail.Mailer) *PasswordResetService {
	return &PasswordResetService{users: users, mailer: mailer}
}

// Forgot issues a reset token and emails the reset link.
func (s *PasswordResetService) Forgot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Email is required"})
		return
	}

	if _, err := s.users.FindByEmail(r.Context(), req.Email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "User not found"})
			return
		}
		log.Printf("[RESET] User lookup failed for %s: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	tokenBytes := make([]byte, 32)
	if _, err := cryptorand.Read(tokenBytes); err != nil {
		log.Printf("[RESET] Token generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}
	token := hex.EncodeToString(tokenBytes)

	expires := time.Now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(r.Context(), req.Email, hashToken(token), expires); err != nil {
		log.Printf("[RESET] Failed to store reset token for %s: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	viper.SetDefault("app.base_url", "http://localhost:3000")
	link := fmt.Sprintf("%s/reset-password?token=%s", viper.GetString("app.base_url"), token)
	body := fmt.Sprintf("Use the link below to reset your password. It expires in one hour.\n\n%s", link)
	if err := s.mailer.Send(req.Email, "Password reset", body); err != nil {
		log.Printf("[RESET] Failed to send reset email to %s: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Error sending email"})
		return
	}

	log.Printf("[RESET] Password reset email sent to %s", req.Email)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password reset email sent"})
}

// Reset redeems a token and sets the new password.
func (s *PasswordResetService) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Token and password are required"})
		return
	}

	user, err := s.users.FindByResetToken(r.Context(), hashToken(req.Token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid or expired reset token"})
			return
		}
		log.Printf("[RESET] Token lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		log.Printf("[RESET] Password hashing failed for %s: %v", user.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	if err := s.users.UpdatePassword(r.Context(), user.ID, hashedPassword); err != nil {
		log.Printf("[RESET] Failed to update password for %s: %v", user.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	log.Printf("[RESET] Password reset successful for %s", user.Email)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password reset successful"})
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
