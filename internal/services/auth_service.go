package services

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"

	"github.com/horizonbank/backend/internal/mail"
	"github.com/horizonbank/backend/internal/models"
	"github.com/horizonbank/backend/internal/session"
	"github.com/horizonbank/backend/internal/store"
)

const otpTTL = 5 * time.Minute

type AuthService struct {
	users     store.UserStore
	redis     *redis.Client
	mailer    mail.Mailer
	validator *validator.Validate
}

// RegisterRequest represents the registration request payload. A body
// with Type "send-otp" only needs Email; the final registration carries
// the password and the code that was emailed.
type RegisterRequest struct {
	Type     string `json:"type"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	OTP      string `json:"otp" validate:"required,len=6"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token,omitempty"`
	User    *PublicUser `json:"user,omitempty"`
}

// PublicUser is the caller-visible slice of a user record.
type PublicUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewAuthService(users store.UserStore, redisClient *redis.Client, mailer mail.Mailer) *AuthService {
	return &AuthService{
		users:     users,
		redis:     redisClient,
		mailer:    mailer,
		validator: validator.New(),
	}
}

// Register handles both phases of registration: sending the OTP email and
// creating the user once the code is confirmed.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Registration attempt from IP: %s", r.RemoteAddr)

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AUTH] Registration failed - invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request"})
		return
	}

	if req.Type == "send-otp" {
		s.sendRegistrationOTP(w, r, req.Email)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		log.Printf("[AUTH] Registration validation failed: %v", err)
		SendErrorResponse(w, "Email, password, and OTP are required", http.StatusBadRequest, err)
		return
	}

	if !s.consumeOTP(r.Context(), req.Email, req.OTP) {
		log.Printf("[AUTH] Invalid or expired OTP for %s", req.Email)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid or expired OTP"})
		return
	}

	if _, err := s.users.FindByEmail(r.Context(), req.Email); err == nil {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Email already registered"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[AUTH] User lookup failed for %s: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
		return
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed for %s: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "An Internal Error Occurred"})
		return
	}

	user := &models.User{
		Email:    strings.ToLower(req.Email),
		Password: hashedPassword,
		Role:     "user",
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		log.Printf("[AUTH] User creation failed for %s: %v", req.Email, err)
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Email already registered"})
		return
	}

	log.Printf("[AUTH] User created successfully - ID: %s, Email: %s", user.ID, user.Email)

	s.setSessionCookie(w, user)
	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Registration successful",
		User:    &PublicUser{Email: user.Email, Role: user.Role},
	})
}

func (s *AuthService) sendRegistrationOTP(w http.ResponseWriter, r *http.Request, email string) {
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Email is required"})
		return
	}

	otp, err := generateOTP()
	if err != nil {
		log.Printf("[AUTH] OTP generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to generate OTP"})
		return
	}

	if s.redis != nil {
		key := otpKey(email)
		if err := s.redis.Set(r.Context(), key, otp, otpTTL).Err(); err != nil {
			log.Printf("[AUTH] Failed to store OTP in Redis: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to generate OTP"})
			return
		}
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", otp)
	if err := s.mailer.Send(email, "Your verification code", body); err != nil {
		log.Printf("[AUTH] Failed to send OTP email to %s: %v", email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to send OTP email"})
		return
	}

	log.Printf("[AUTH] OTP sent to %s", email)
	writeJSON(w, http.StatusOK, map[string]any{"message": "OTP sent successfully"})
}

// consumeOTP checks the stored code and deletes it on match so a code
// cannot be replayed.
func (s *AuthService) consumeOTP(ctx context.Context, email, otp string) bool {
	if s.redis == nil {
		return false
	}

	key := otpKey(email)
	stored, err := s.redis.Get(ctx, key).Result()
	if err != nil || stored != otp {
		return false
	}

	s.redis.Del(ctx, key)
	return true
}

// Login handles user authentication
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[AUTH] Login failed - invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request"})
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Email and password are required", http.StatusBadRequest, err)
		return
	}

	user, err := s.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[AUTH] User not found for email: %s", req.Email)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
		return
	}

	if !verifyPassword(req.Password, user.Password) {
		log.Printf("[AUTH] Invalid password for user: %s", req.Email)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
		return
	}

	token, err := generateJWT(user)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %s: %v", user.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to generate token"})
		return
	}

	s.setSessionCookie(w, user)

	log.Printf("[AUTH] Login successful for user %s", user.ID)
	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    &PublicUser{Email: user.Email, Role: user.Role},
	})
}

// Logout clears the session cookie.
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteStrictMode,
		Secure:   viper.GetString("env") == "production",
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

func (s *AuthService) setSessionCookie(w http.ResponseWriter, user *models.User) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    session.Encode(session.Identity{Email: user.Email, Role: user.Role}),
		Path:     "/",
		MaxAge:   60 * 60 * 24,
		SameSite: http.SameSiteStrictMode,
		Secure:   viper.GetString("env") == "production",
	})
}

func otpKey(email string) string {
	return fmt.Sprintf("register_otp:%s", strings.ToLower(email))
}

func generateJWT(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, viper.GetInt("argon2.salt_length"))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return string(hash) == string(computedHash)
}

func generateOTP() (string, error) {
	b := make([]byte, 4)
	if _, err := cryptorand.Read(b); err != nil {
		return "", err
	}
	n := (int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])) % 1000000
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("%06d", n), nil
}
