package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCourseProgressToRecord(t *testing.T) {
	done := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	p := &CourseProgress{CourseID: "js", CompletedLessons: []string{"l1", "l2"}, CompletedAt: &done}

	rec := p.ToRecord()
	rec.CompletedLessons[0] = "changed"

	assert.Equal(t, "js", rec.CourseID)
	assert.Equal(t, &done, rec.CompletedAt)
	assert.Equal(t, "l1", p.CompletedLessons[0])
	assert.True(t, p.HasLesson("l2"))
	assert.False(t, p.HasLesson("l3"))
}
