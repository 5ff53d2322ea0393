package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID        string `db:"id" json:"id"`
	CourseID  string `db:"course_id" json:"courseId" validate:"required"`
	Title     string `db:"title" json:"title" validate:"required,min=1,max=500"`
	Content   string `db:"content" json:"content" validate:"max=10000"`
	Pinned    bool   `db:"pinned" json:"pinned"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
}

func NewNote(courseID, title, content string) *Note {
	return &Note{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().Unix(),
	}
}

func (n *Note) Validate() error {
	return validate.Struct(n)
}

type NotePatch struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Content *string `json:"content,omitempty" validate:"omitempty,max=10000"`
	Pinned  *bool   `json:"pinned,omitempty"`
}

func (p *NotePatch) Validate() error {
	return validate.Struct(p)
}

func (p *NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Pinned != nil {
		n.Pinned = *p.Pinned
	}
}
