package model

import "github.com/google/uuid"

type Trainer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	Socials   []string  `json:"socials"`
}

type TrainerProfile struct {
	Trainer Trainer  `json:"trainer"`
	Courses []Course `json:"courses"`
}
