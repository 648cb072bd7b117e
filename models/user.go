package models

import (
	"strings"
	"time"
)

// User is both the account and the public profile. Created on sign-up
// (email/password) or on first phone OTP verification.
type User struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email        *string `gorm:"uniqueIndex;size:255" json:"email,omitempty"`
	PhoneNumber  *string `gorm:"uniqueIndex;size:20" json:"phoneNumber,omitempty"`
	PasswordHash string  `gorm:"size:100" json:"-"`

	Username      *string `gorm:"uniqueIndex;size:100" json:"username,omitempty"`
	AvatarURL     *string `gorm:"size:500" json:"avatarUrl,omitempty"`
	Bio           *string `gorm:"type:text" json:"bio,omitempty"`
	AddressStreet *string `gorm:"size:255" json:"addressStreet,omitempty"`
	AddressCity   *string `gorm:"size:100" json:"addressCity,omitempty"`
	AddressState  *string `gorm:"size:50" json:"addressState,omitempty"`
	AddressZip    *string `gorm:"size:20" json:"addressZip,omitempty"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Credentials []Credential `json:"-"`
}

func (User) TableName() string { return "profiles" }

// DisplayName is what other users see next to a listing or request.
// Falls back to the email local part, never used for ownership checks.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	if u.Email != nil && *u.Email != "" {
		if at := strings.IndexByte(*u.Email, '@'); at > 0 {
			return (*u.Email)[:at]
		}
		return *u.Email
	}
	return "Anonymous"
}

// Credential stores one registered passkey. CredentialID / PublicKey /
// AAGUID are binary (bytea on Postgres).
type Credential struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;index" json:"userId"`
	CredentialID    []byte    `gorm:"uniqueIndex" json:"credentialId"`
	PublicKey       []byte    `json:"publicKey"`
	AttestationType string    `gorm:"size:64" json:"attestationType"`
	AAGUID          []byte    `gorm:"type:bytea" json:"aaguid"`
	SignCount       uint32    `json:"signCount"`
	CloneWarning    bool      `json:"cloneWarning"`
	BackupEligible  bool      `json:"backupEligible"`
	BackupState     bool      `json:"backupState"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	LastUsedAt *time.Time `gorm:"index" json:"lastUsedAt,omitempty"`
}

func (Credential) TableName() string { return "credentials" }
