package users

import "time"

// DefaultAvatar is assigned to new accounts until they upload their own.
const DefaultAvatar = "https://img.freepik.com/free-psd/3d-illustration-person-with-sunglasses_23-2149436188.jpg"

// User is an account holder. Email is the durable join key used by files.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	LegacyID  string    `json:"-" bson:"id,omitempty"`
	Email     string    `json:"email" bson:"email"`
	FullName  string    `json:"fullName" bson:"full_name"`
	AccountID string    `json:"accountId" bson:"account_id"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
