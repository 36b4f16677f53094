package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ProgressSnapshot is a course progress record as last returned by the
// service, kept so progress can be shown offline.
type ProgressSnapshot struct {
	ent.Schema
}

func (ProgressSnapshot) Mixin() []ent.Mixin {
	return []ent.Mixin{HistoryMixin{}}
}

func (ProgressSnapshot) Fields() []ent.Field {
	return []ent.Field{
		field.Int("user_id").
			Comment("Learner the progress belongs to"),
		field.String("course_name").
			Comment("Course the progress is for"),
		field.JSON("data", map[string]any{}).
			Comment("The progress record as JSON"),
	}
}

func (ProgressSnapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "course_name"),
	}
}
