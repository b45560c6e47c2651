package redisrepo

import "fmt"

const (
	COURSE_KEY         = "course:%s"           // <courseID>
	COURSES_KEY        = "courses:%s:%s:%d:%d" // <category>:<query>:<limit>:<offset>
	CATEGORIES_KEY     = "course-categories"
	TRAINERS_KEY       = "trainers"
	TRAINER_KEY        = "trainer:%s"           // <trainerID>
	STUDENTS_COUNT_KEY = "course:%s-students"   // <courseID>
	POST_KEY           = "post:%s"              // <postID>
	POSTS_KEY          = "posts:%d:%d"          // <limit>:<offset>
	COMMENTS_KEY       = "comments:%s:%s:%d:%d" // <subjectType>:<subjectID>:<limit>:<offset>
	COMMENTS_PATTERN   = "comments:%s:%s:*"     // <subjectType>:<subjectID>
	COMMENTS_COUNT_KEY = "comments-count:%s:%s" // <subjectType>:<subjectID>
	USER_CACHE_KEY     = "user-cache:%s"        // <userID>
)

func CourseKey(courseID string) string {
	return fmt.Sprintf(COURSE_KEY, courseID)
}

func CoursesKey(category string, query string, limit int, offset int) string {
	return fmt.Sprintf(COURSES_KEY, category, query, limit, offset)
}

func TrainerKey(trainerID string) string {
	return fmt.Sprintf(TRAINER_KEY, trainerID)
}

func StudentsCountKey(courseID string) string {
	return fmt.Sprintf(STUDENTS_COUNT_KEY, courseID)
}

func PostKey(postID string) string {
	return fmt.Sprintf(POST_KEY, postID)
}

func PostsKey(limit int, offset int) string {
	return fmt.Sprintf(POSTS_KEY, limit, offset)
}

func CommentsKey(subjectType string, subjectID string, limit int, offset int) string {
	return fmt.Sprintf(COMMENTS_KEY, subjectType, subjectID, limit, offset)
}

func CommentsPattern(subjectType string, subjectID string) string {
	return fmt.Sprintf(COMMENTS_PATTERN, subjectType, subjectID)
}

func CommentsCountKey(subjectType string, subjectID string) string {
	return fmt.Sprintf(COMMENTS_COUNT_KEY, subjectType, subjectID)
}

func UserCacheKey(userID string) string {
	return fmt.Sprintf(USER_CACHE_KEY, userID)
}
