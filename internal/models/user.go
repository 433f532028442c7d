package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account document stored in the users collection.
// Password and reset fields are only populated when explicitly projected.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UID         string             `bson:"uid" json:"uid"`
	Email       string             `bson:"email" json:"email"`
	DisplayName string             `bson:"display_name" json:"displayName"`
	Password    string             `bson:"password,omitempty" json:"-"`
	PhotoURL    string             `bson:"photo_url" json:"photoURL"`

	ResetPasswordToken  string     `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpire *time.Time `bson:"reset_password_expire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// AccountView is what the auth endpoints return alongside a token.
type AccountView struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}

// PublicUser is the projection used in follower and following lists.
type PublicUser struct {
	UID         string `bson:"uid" json:"uid"`
	DisplayName string `bson:"display_name" json:"displayName"`
	PhotoURL    string `bson:"photo_url" json:"photoURL"`
}

// Profile is a user's public fields plus relation counts.
type Profile struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
	Followers   int64  `json:"followers"`
	Following   int64  `json:"following"`
}

func (u *User) Account() AccountView {
	return AccountView{
		UID:         u.UID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PhotoURL:    u.PhotoURL,
	}
}

func (u *User) Public() PublicUser {
	return PublicUser{UID: u.UID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}
