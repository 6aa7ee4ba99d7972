package auth

import "time"

// Credential is a locally held login record used when the deployment
// authenticates with email and password instead of an external provider.
// PasswordHash is a bcrypt hash and never leaves the data layer in
// serialized form.
type Credential struct {
	ID            string    `db:"id"`
	Email         string    `db:"email"`
	PasswordHash  []byte    `db:"password_hash"`
	EmailVerified bool      `db:"email_verified"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Identity returns the externally visible identity for this credential.
func (c Credential) Identity() Identity {
	return Identity{ID: c.ID, Email: c.Email, EmailVerified: c.EmailVerified}
}
