package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// HistoryMixin is shared by the append-only tables: request events and
// progress snapshots draw from one sequence, so `takallem requests` and
// `takallem status` agree on what happened first.
type HistoryMixin struct {
	mixin.Schema
}

func (HistoryMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Unique().
			Immutable().
			Comment("Position in the local history, shared across tables"),
		field.Time("timestamp").
			Default(time.Now).
			Immutable().
			Comment("When the client recorded the row"),
	}
}
