package store

import (
	"time"

	"github.com/dmitrijs2005/authvault/fieldcrypt"
)

// Profile field names present in every record.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
)

// UserRecord is the persisted user entity. The email is stored in its
// normalized (lowercased) form and is immutable after creation, as is the
// generated UserID. PasswordHash is only ever compared, never reversed, and
// profile values exist in storage only as ciphertext envelopes.
type UserRecord struct {
	UserID           string                          `json:"user_id" dynamodbav:"userId"`
	Email            string                          `json:"email" dynamodbav:"email"`
	PasswordHash     string                          `json:"password_hash" dynamodbav:"passwordHash"`
	EncryptedProfile map[string]*fieldcrypt.Envelope `json:"encrypted_profile" dynamodbav:"encryptedProfile"`
	CreatedAt        time.Time                       `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt        time.Time                       `json:"updated_at" dynamodbav:"updatedAt"`
}
