package courseValidator

import (
	"coursemanager/services/coursesvc"
	"coursemanager/validators"

	"github.com/gofiber/fiber/v2"
)

func LessonID() fiber.Handler {
	return validators.ParamID("id", "Lesson", "lessonID")
}

func LessonCourseID() fiber.Handler {
	return validators.ParamID("course_id", "Course", "courseID")
}

func CreateLesson() fiber.Handler {
	return validators.Body[coursesvc.LessonInput]("validatedLesson")
}

func UpdateLesson() fiber.Handler {
	return validators.Body[coursesvc.LessonUpdate]("validatedLessonUpdate")
}
