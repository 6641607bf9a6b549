package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailBodiesEscapeUserInput(t *testing.T) {
	name := `<script>alert("x")</script>`
	title := `Go & <b>Friends</b>`

	bodies := []string{
		welcomeBody(name),
		enrollmentBody(name, title),
		courseCompletedBody(name, title),
	}
	for _, body := range bodies {
		assert.NotContains(t, body, "<script>")
		assert.Contains(t, body, "&lt;script&gt;")
	}
	assert.Contains(t, enrollmentBody("ada", title), "<strong>Go &amp; &lt;b&gt;Friends&lt;/b&gt;</strong>")
	assert.Contains(t, courseCompletedBody("ada", title), "Go &amp; &lt;b&gt;Friends&lt;/b&gt;")

	page := getEmailTemplate("New Enrollment", enrollmentBody(name, title))
	assert.NotContains(t, page, "<script>")
}
