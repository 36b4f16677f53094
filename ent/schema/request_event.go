package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// RequestEvent records every call made to the Takallem service.
type RequestEvent struct {
	ent.Schema
}

func (RequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{HistoryMixin{}}
}

func (RequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("method").
			Comment("HTTP method"),
		field.String("route").
			Comment("Route template, e.g. /resource/{id}"),
		field.Int("status").
			Default(0).
			Comment("HTTP status, 0 when no response arrived"),
		field.Int64("latency_ms").
			Default(0).
			Comment("Wall-clock time for the request"),
		field.Bool("success").
			Comment("Whether the service answered below 400"),
		field.String("error_message").
			Default("").
			Comment("Status line or transport error if failed"),
		field.String("idempotency_key").
			Default("").
			Comment("Idempotency-Key header sent with progress mutations"),
	}
}

func (RequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
	}
}
