package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Credential is the saved sign-in. At most one row exists.
type Credential struct {
	ent.Schema
}

func (Credential) Fields() []ent.Field {
	return []ent.Field{
		field.String("server_url").
			Comment("Service the token was issued by"),
		field.String("email").
			Default(""),
		field.Int("user_id").
			Default(0),
		field.String("token").
			Sensitive().
			Comment("Bearer token"),
		field.Time("saved_at").
			Default(time.Now),
	}
}
