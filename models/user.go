package models

import "time"

type User struct {
	UserID    string    `bson:"userID" json:"userID"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"password,omitempty"`
	IsAdmin   bool      `bson:"isAdmin" json:"isAdmin"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
