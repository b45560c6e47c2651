package model

import (
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	ID               uuid.UUID   `json:"id"`
	UserID           uuid.UUID   `json:"user_id"`
	CourseID         uuid.UUID   `json:"course_id"`
	CompletedLessons []uuid.UUID `json:"completed_lessons"`
	Progress         int         `json:"progress"`
	EnrolledAt       time.Time   `json:"enrolled_at"`
	CompletedAt      *time.Time  `json:"completed_at"`
}

// CompleteLesson records lessonID as done and recomputes Progress.
// It reports whether the enrollment changed.
func (e *Enrollment) CompleteLesson(lessonID uuid.UUID, totalLessons int) bool {
	if e.hasLesson(lessonID) {
		return e.recompute(totalLessons)
	}

	e.CompletedLessons = append(e.CompletedLessons, lessonID)
	e.recompute(totalLessons)
	return true
}

func (e *Enrollment) UncompleteLesson(lessonID uuid.UUID, totalLessons int) bool {
	idx := -1
	for i, id := range e.CompletedLessons {
		if id == lessonID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return e.recompute(totalLessons)
	}

	lessons := make([]uuid.UUID, 0, len(e.CompletedLessons)-1)
	lessons = append(lessons, e.CompletedLessons[:idx]...)
	lessons = append(lessons, e.CompletedLessons[idx+1:]...)
	e.CompletedLessons = lessons
	e.recompute(totalLessons)
	return true
}

func (e *Enrollment) hasLesson(lessonID uuid.UUID) bool {
	for _, id := range e.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

func (e *Enrollment) recompute(totalLessons int) bool {
	progress := 0
	if totalLessons > 0 {
		progress = len(e.CompletedLessons) * 100 / totalLessons
	}
	if progress > 100 {
		progress = 100
	}

	changed := progress != e.Progress
	e.Progress = progress

	if progress == 100 && e.CompletedAt == nil {
		now := time.Now()
		e.CompletedAt = &now
		changed = true
	}
	if progress < 100 && e.CompletedAt != nil {
		e.CompletedAt = nil
		changed = true
	}

	return changed
}
