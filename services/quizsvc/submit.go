package quizsvc

import (
	"coursemanager/models"
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/services/auditsvc"
	"coursemanager/services/coursesvc"
	"coursemanager/utils/apperror"
	"coursemanager/utils/metrics"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerInput struct {
	QuestionID     uint   `json:"question_id" validate:"required"`
	SelectedAnswer string `json:"selected_answer"`
}

type SubmitInput struct {
	QuizID  uint          `json:"quiz_id" validate:"required"`
	Answers []AnswerInput `json:"answers" validate:"required,dive"`
}

type SubmitResult struct {
	ResultID     uint  `json:"result_id"`
	QuizID       uint  `json:"quiz_id"`
	Score        int   `json:"score"`
	Correct      int   `json:"correct"`
	Total        int   `json:"total"`
	Passed       bool  `json:"passed"`
	AttemptsUsed int64 `json:"attempts_used"`
	MaxAttempts  int   `json:"max_attempts"`
}

// QuestionView is a question as shown to someone taking the quiz
type QuestionView struct {
	ID       uint     `json:"id"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

// TakeView never carries correct answers.
type TakeView struct {
	QuizID        uint                   `json:"quiz_id"`
	LessonID      uint                   `json:"lesson_id"`
	Title         string                 `json:"title"`
	MaxAttempts   int                    `json:"max_attempts"`
	PassingScore  int                    `json:"passing_score"`
	Questions     []QuestionView         `json:"questions"`
	AttemptsUsed  int64                  `json:"attempts_used"`
	LatestScore   *int                   `json:"latest_score"`
	LatestAnswers course.SelectedAnswers `json:"latest_answers"`
}

// ReviewView exposes the answer key.
type ReviewView struct {
	QuizID         uint                   `json:"quiz_id"`
	LessonID       uint                   `json:"lesson_id"`
	Title          string                 `json:"title"`
	MaxAttempts    int                    `json:"max_attempts"`
	PassingScore   int                    `json:"passing_score"`
	Questions      []course.Question      `json:"questions"`
	CorrectAnswers course.SelectedAnswers `json:"correct_answers"`
}

// ResultRow is a submission joined with its author
type ResultRow struct {
	ID              uint                   `json:"id"`
	UserID          uint                   `json:"user_id"`
	Username        string                 `json:"username"`
	Email           string                 `json:"email"`
	Score           int                    `json:"score"`
	SubmittedAt     time.Time              `json:"submitted_at"`
	SelectedAnswers course.SelectedAnswers `json:"selected_answers"`
}

// CountCorrect counts questions whose selected answer equals the correct answer exactly.
func CountCorrect(questions []course.Question, selected course.SelectedAnswers) int {
	correct := 0
	for _, q := range questions {
		if answer, ok := selected[q.ID]; ok && answer == q.CorrectAnswer {
			correct++
		}
	}
	return correct
}

// Percentage is round(100*correct/total), rounding halves to even. An empty quiz scores 0.
func Percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(correct) * 100 / float64(total)))
}

func attemptsUsed(db *gorm.DB, userID, quizID uint) (int64, error) {
	var count int64
	err := db.Model(&course.QuizResult{}).Where("user_id = ? AND quiz_id = ?", userID, quizID).Count(&count).Error
	return count, errors.Wrap(err, "count attempts")
}

// ForLesson is the take view of a lesson's quiz for userID.
func ForLesson(db *gorm.DB, lessonID, userID uint) (TakeView, error) {
	if _, err := coursesvc.GetLesson(db, lessonID); err != nil {
		return TakeView{}, err
	}

	var quiz course.Quiz
	err := db.Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("lesson_id = ?", lessonID).
		First(&quiz).Error
	if apperror.IsNotFound(err) {
		return TakeView{}, ErrNoQuizForLesson
	}
	if err != nil {
		return TakeView{}, errors.Wrap(err, "load quiz")
	}

	view := TakeView{
		QuizID:       quiz.ID,
		LessonID:     quiz.LessonID,
		Title:        quiz.Title,
		MaxAttempts:  quiz.MaxAttempts,
		PassingScore: quiz.PassingScore,
		Questions:    make([]QuestionView, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		view.Questions = append(view.Questions, QuestionView{ID: q.ID, Question: q.Question, Choices: q.Choices})
	}

	if view.AttemptsUsed, err = attemptsUsed(db, userID, quiz.ID); err != nil {
		return view, err
	}

	var latest course.QuizResult
	err = db.Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).
		Order("submitted_at desc, id desc").
		First(&latest).Error
	switch {
	case err == nil:
		score := latest.Score
		view.LatestScore = &score
		view.LatestAnswers = latest.SelectedAnswers.Data()
	case !apperror.IsNotFound(err):
		return view, errors.Wrap(err, "load latest result")
	}
	return view, nil
}

// Review returns the quiz with its answer key when the actor may see it.
func Review(db *gorm.DB, actor policy.Actor, quizID uint) (ReviewView, error) {
	quiz, err := Get(db, quizID)
	if err != nil {
		return ReviewView{}, err
	}
	c, err := owningCourse(db, quiz)
	if err != nil {
		return ReviewView{}, err
	}
	used, err := attemptsUsed(db, actor.ID, quiz.ID)
	if err != nil {
		return ReviewView{}, err
	}
	if !policy.CanReviewQuiz(actor, c, quiz, used) {
		return ReviewView{}, ErrReviewLocked
	}

	view := ReviewView{
		QuizID:         quiz.ID,
		LessonID:       quiz.LessonID,
		Title:          quiz.Title,
		MaxAttempts:    quiz.MaxAttempts,
		PassingScore:   quiz.PassingScore,
		Questions:      quiz.Questions,
		CorrectAnswers: make(course.SelectedAnswers, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		view.CorrectAnswers[q.ID] = q.CorrectAnswer
	}
	return view, nil
}

// Submit scores one attempt, updates the lesson progress to the attempt's pass flag and
// appends the result. A failed attempt after a passed one marks the lesson incomplete again.
func Submit(db *gorm.DB, userID uint, input SubmitInput, now time.Time) (SubmitResult, error) {
	now = now.UTC()
	var result SubmitResult

	err := db.Transaction(func(tx *gorm.DB) error {
		// serialize one user's submissions so the attempt cap holds
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&models.User{}, userID).Error; err != nil {
			if apperror.IsNotFound(err) {
				return coursesvc.ErrUserNotFound
			}
			return errors.Wrap(err, "lock user")
		}

		quiz, err := Get(tx, input.QuizID)
		if err != nil {
			return err
		}
		lesson, err := coursesvc.GetLesson(tx, quiz.LessonID)
		if err != nil {
			return err
		}
		enrolled, err := coursesvc.IsEnrolled(tx, userID, lesson.CourseID)
		if err != nil {
			return err
		}
		if !enrolled {
			return coursesvc.ErrNotEnrolled
		}

		used, err := attemptsUsed(tx, userID, quiz.ID)
		if err != nil {
			return err
		}
		if used >= int64(quiz.MaxAttempts) {
			return ErrAttemptsExhausted
		}

		selected := make(course.SelectedAnswers, len(input.Answers))
		for _, a := range input.Answers {
			selected[a.QuestionID] = a.SelectedAnswer
		}
		correct := CountCorrect(quiz.Questions, selected)
		score := Percentage(correct, len(quiz.Questions))
		passed := score >= quiz.PassingScore

		progress := course.LessonProgress{
			UserID:      userID,
			LessonID:    quiz.LessonID,
			IsCompleted: passed,
			UpdatedAt:   now,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_completed", "updated_at"}),
		}).Create(&progress).Error
		if err != nil {
			return errors.Wrap(err, "upsert lesson progress")
		}

		row := course.QuizResult{
			UserID:          userID,
			QuizID:          quiz.ID,
			SelectedAnswers: datatypes.NewJSONType(selected),
			Score:           score,
			SubmittedAt:     now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return errors.Wrap(err, "create quiz result")
		}

		result = SubmitResult{
			ResultID:     row.ID,
			QuizID:       quiz.ID,
			Score:        score,
			Correct:      correct,
			Total:        len(quiz.Questions),
			Passed:       passed,
			AttemptsUsed: used + 1,
			MaxAttempts:  quiz.MaxAttempts,
		}
		return auditsvc.By(tx, userID, models.ActionQuizSubmitted, fmt.Sprintf("quiz %d score %d", quiz.ID, score))
	})
	if err != nil {
		return SubmitResult{}, err
	}

	metrics.QuizSubmissions.WithLabelValues(metrics.Outcome(result.Passed)).Inc()
	return result, nil
}

// Results lists every submission of a quiz, newest first.
func Results(db *gorm.DB, actor policy.Actor, quizID uint) ([]ResultRow, error) {
	quiz, _, err := managed(db, actor, quizID)
	if err != nil {
		return nil, err
	}

	type row struct {
		course.QuizResult
		Username string
		Email    string
	}
	var rows []row
	err = db.Model(&course.QuizResult{}).
		Select("student_quiz_results.*, users.username, users.email").
		Joins("JOIN users ON users.id = student_quiz_results.user_id").
		Where("student_quiz_results.quiz_id = ?", quiz.ID).
		Order("student_quiz_results.submitted_at desc, student_quiz_results.id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list quiz results")
	}

	results := make([]ResultRow, 0, len(rows))
	for _, r := range rows {
		results = append(results, ResultRow{
			ID:              r.ID,
			UserID:          r.UserID,
			Username:        r.Username,
			Email:           r.Email,
			Score:           r.Score,
			SubmittedAt:     r.SubmittedAt,
			SelectedAnswers: r.SelectedAnswers.Data(),
		})
	}
	return results, nil
}

// ExportHeader is the header row of the results CSV
var ExportHeader = []string{"Username", "Email", "Score", "Submitted At", "Answers"}

// ExportRows renders results as CSV records.
func ExportRows(results []ResultRow) [][]string {
	records := make([][]string, 0, len(results))
	for _, r := range results {
		records = append(records, []string{
			r.Username,
			r.Email,
			fmt.Sprintf("%d", r.Score),
			r.SubmittedAt.UTC().Format(time.RFC3339),
			FormatAnswers(r.SelectedAnswers),
		})
	}
	return records
}

// FormatAnswers renders answers as "Q<id>: <choice>" joined by "; ", ordered by question id.
func FormatAnswers(answers course.SelectedAnswers) string {
	ids := make([]uint, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("Q%d: %s", id, answers[id]))
	}
	return strings.Join(parts, "; ")
}
