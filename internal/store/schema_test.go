package store

import (
	"testing"

	"entgo.io/ent"
	entschema "entgo.io/ent/dialect/sql/schema"

	"github.com/takallem/takallem/ent/schema"
)

type entSchema interface {
	Fields() []ent.Field
	Mixin() []ent.Mixin
}

// columnNames returns the table's columns without the id.
func columnNames(t *entschema.Table) []string {
	var names []string
	for _, c := range t.Columns[1:] {
		names = append(names, c.Name)
	}
	return names
}

func fieldNames(s entSchema) []string {
	var names []string
	for _, m := range s.Mixin() {
		for _, f := range m.Fields() {
			names = append(names, f.Descriptor().Name)
		}
	}
	for _, f := range s.Fields() {
		names = append(names, f.Descriptor().Name)
	}
	return names
}

func TestTablesMatchEntSchema(t *testing.T) {
	tests := []struct {
		table  *entschema.Table
		schema entSchema
	}{
		{CredentialsTable, schema.Credential{}},
		{ProgressSnapshotsTable, schema.ProgressSnapshot{}},
		{RequestEventsTable, schema.RequestEvent{}},
	}

	for _, tt := range tests {
		t.Run(tt.table.Name, func(t *testing.T) {
			got, want := columnNames(tt.table), fieldNames(tt.schema)
			if len(got) != len(want) {
				t.Fatalf("columns = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("column %d = %q, want %q", i, got[i], want[i])
				}
			}
		})
	}
}
