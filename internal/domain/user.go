package domain

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Profile struct {
	UserID         int64
	Bio            string
	PhoneNumber    string
	ProfilePicture *string
	UpdatedAt      time.Time
}
