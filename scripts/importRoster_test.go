package main

import (
	"coursemanager/models"
	"coursemanager/models/course"
	"coursemanager/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportRoster(t *testing.T) {
	db := testutil.OpenDB(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	existing := testutil.CreateUser(t, db, models.RoleStudentID)
	c := testutil.CreateCourse(t, db, teacher)

	records := [][]string{
		{"Username", "Email", "Password", "Course_Title"},
		{"grace", "grace@example.com", "hopper1", c.Title},
		{existing.Username, existing.Email, "ignored", c.Title},
		{"linus", "linus@example.com", "torvalds", "No Such Course"},
		{"", "blank@example.com", "secret1", c.Title},
	}

	stats, err := importRoster(db, records, 4)
	require.NoError(t, err)
	assert.Equal(t, rosterStats{Created: 1, Existing: 1, Enrolled: 2, Skipped: 2}, stats)

	var enrolled int64
	require.NoError(t, db.Model(&course.Enrollment{}).Where("course_id = ?", c.ID).Count(&enrolled).Error)
	assert.EqualValues(t, 2, enrolled)

	// a second run finds everyone enrolled already
	stats, err = importRoster(db, records, 4)
	require.NoError(t, err)
	assert.Equal(t, rosterStats{Existing: 2, Skipped: 2}, stats)
}

func TestImportRosterRequiresColumns(t *testing.T) {
	db := testutil.OpenDB(t)

	_, err := importRoster(db, [][]string{{"username", "email"}, {"a", "a@example.com"}}, 4)
	assert.Error(t, err)

	_, err = importRoster(db, [][]string{{"username", "email", "password", "course_title"}}, 4)
	assert.Error(t, err)
}
