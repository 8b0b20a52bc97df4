package domain

import "time"

// The entities below are owned by the academic domain; the messaging core only
// reads their identity and membership fields.

type Group struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	MentorID  string    `bson:"mentor_id" json:"mentor_id"`
	MenteeIDs []string  `bson:"mentee_ids" json:"mentee_ids"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Mentor struct {
	ID     string `bson:"_id" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`
	Name   string `bson:"name" json:"name"`
}

type Mentee struct {
	ID          string   `bson:"_id" json:"id"`
	UserID      string   `bson:"user_id" json:"user_id"`
	MentorID    string   `bson:"mentor_id" json:"mentor_id"`
	GuardianIDs []string `bson:"guardian_ids" json:"guardian_ids"`
	Name        string   `bson:"name" json:"name"`
}

type Guardian struct {
	ID        string   `bson:"_id" json:"id"`
	UserID    string   `bson:"user_id" json:"user_id"`
	MenteeIDs []string `bson:"mentee_ids" json:"mentee_ids"`
	Name      string   `bson:"name" json:"name"`
}

type User struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
	Role Role   `bson:"role" json:"role"`
}
