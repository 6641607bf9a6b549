package authsvc

import (
	"coursemanager/models"
	"coursemanager/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := testutil.OpenDB(t)

	user, err := Register(db, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "lovelace", RoleID: models.RoleStudentID}, 4)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.RoleName())
	assert.NotEqual(t, "lovelace", user.Password)

	_, err = Register(db, RegisterInput{Username: "ada", Email: "other@example.com", Password: "lovelace", RoleID: models.RoleStudentID}, 4)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = Register(db, RegisterInput{Username: "ada2", Email: "ada@example.com", Password: "lovelace", RoleID: models.RoleStudentID}, 4)
	assert.ErrorIs(t, err, ErrEmailTaken)

	logged, err := Authenticate(db, LoginInput{Username: "ada", Password: "lovelace"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = Authenticate(db, LoginInput{Username: "ada", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Authenticate(db, LoginInput{Username: "nobody", Password: "lovelace"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var logins int64
	require.NoError(t, db.Model(&models.SystemLog{}).Where("action = ?", models.ActionUserLogin).Count(&logins).Error)
	assert.EqualValues(t, 1, logins)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db := testutil.OpenDB(t)

	_, err := Register(db, RegisterInput{Username: "eve", Email: "eve@example.com", Password: "secret1", RoleID: models.RoleAdminID}, 4)
	assert.ErrorIs(t, err, ErrInvalidRole)

	// admins can still create admin accounts directly
	user, err := CreateUser(db, RegisterInput{Username: "eve", Email: "eve@example.com", Password: "secret1", RoleID: models.RoleAdminID}, 4)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.RoleName())

	_, err = CreateUser(db, RegisterInput{Username: "x", Email: "x@example.com", Password: "secret1", RoleID: 42}, 4)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserByID(t *testing.T) {
	db := testutil.OpenDB(t)
	created := testutil.CreateUser(t, db, models.RoleTeacherID)

	user, err := UserByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.RoleName())

	_, err = UserByID(db, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
