package dto

import "github.com/LearnHub/course-service/internal/model"

type EnrollmentWithCourse struct {
	Enrollment model.Enrollment `json:"enrollment"`
	Course     model.Course     `json:"course"`
}

type StudentsCount struct {
	Students int64 `json:"students"`
}
