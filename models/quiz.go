package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuizQuestion is the normalized question shape every quiz serves, whether the
// question came from the index or was freshly generated.
type QuizQuestion struct {
	QuestionID    string   `bson:"question_id" json:"question_id"`
	QuestionText  string   `bson:"question_text" json:"question_text"`
	Options       []string `bson:"answer_options" json:"answer_options"`
	CorrectAnswer string   `bson:"correct_answer,omitempty" json:"correct_answer,omitempty"`
	Category      string   `bson:"category,omitempty" json:"category,omitempty"`
	Difficulty    string   `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Source        string   `bson:"source" json:"source"`
}

// Quiz question sources.
const (
	QuizSourceIndex     = "index"
	QuizSourceGenerated = "generated"
)

// QuizSession is an assembled quiz for one user. It is built from a read-only
// snapshot of the index plus generated fill and never mutates index records.
type QuizSession struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	QuizID        string             `bson:"quiz_id" json:"quiz_id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Certification string             `bson:"certification" json:"certification"`
	Difficulty    string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Questions     []QuizQuestion     `bson:"questions" json:"questions"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// QuizRequest are the caller-supplied quiz parameters.
type QuizRequest struct {
	Certification string `json:"certification" binding:"required"`
	Count         int    `json:"count" binding:"required,min=1,max=50"`
	Difficulty    string `json:"difficulty,omitempty"`
	Unique        bool   `json:"unique,omitempty"`
}
