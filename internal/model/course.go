package model

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID          uuid.UUID `json:"id"`
	TrainerID   uuid.UUID `json:"trainer_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Level       string    `json:"level"`
	PriceCents  int64     `json:"price_cents"`
	CoverURL    string    `json:"cover_url"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Lesson struct {
	ID              uuid.UUID `json:"id"`
	CourseID        uuid.UUID `json:"course_id"`
	Position        int       `json:"position"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"duration_minutes"`
	Preview         bool      `json:"preview"`
}

type FullCourse struct {
	Course   Course   `json:"course"`
	Trainer  *Trainer `json:"trainer"`
	Lessons  []Lesson `json:"lessons"`
	Students int64    `json:"students"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Courses  int64  `json:"courses"`
}
