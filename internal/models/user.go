package models

import "time"

// User is an identity record. Password holds the argon2id hash, never the
// plaintext. The reset fields are set only while a password reset is
// pending: ResetPasswordToken is the SHA-256 of the emailed token.
type User struct {
	ID                   string     `json:"id" db:"id"`
	Email                string     `json:"email" db:"email"`
	Password             string     `json:"-" db:"password"`
	Role                 string     `json:"role" db:"role"`
	ResetPasswordToken   string     `json:"-" db:"reset_password_token"`
	ResetPasswordExpires *time.Time `json:"-" db:"reset_password_expires"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}
