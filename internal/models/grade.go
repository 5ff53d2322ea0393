package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type Grade struct {
	ID        string  `db:"id" json:"id"`
	CourseID  string  `db:"course_id" json:"courseId" validate:"required"`
	Label     string  `db:"label" json:"label" validate:"required,min=1,max=200"`
	Value     float64 `db:"value" json:"value" validate:"min=0,max=5"`
	Weight    float64 `db:"weight" json:"weight" validate:"min=0,max=100"`
	Momento   Momento `db:"momento" json:"momento,omitempty"`
	CreatedAt int64   `db:"created_at" json:"createdAt"`
}

func NewGrade(courseID, label string, value, weight float64, momento Momento) *Grade {
	return &Grade{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Label:     label,
		Value:     value,
		Weight:    weight,
		Momento:   momento,
		CreatedAt: time.Now().Unix(),
	}
}

func (g *Grade) Validate() error {
	return validate.Struct(g)
}

// GradePatch carries the optional fields of a grade update.
type GradePatch struct {
	Label   *string  `json:"label,omitempty" validate:"omitempty,min=1,max=200"`
	Value   *float64 `json:"value,omitempty" validate:"omitempty,min=0,max=5"`
	Weight  *float64 `json:"weight,omitempty" validate:"omitempty,min=0,max=100"`
	Momento *string  `json:"momento,omitempty"`
}

func (p *GradePatch) Validate() error {
	return validate.Struct(p)
}

func (p *GradePatch) Apply(g *Grade) {
	if p.Label != nil {
		g.Label = *p.Label
	}
	if p.Value != nil {
		g.Value = *p.Value
	}
	if p.Weight != nil {
		g.Weight = *p.Weight
	}
	if p.Momento != nil {
		g.Momento = ParseMomento(*p.Momento)
	}
}
