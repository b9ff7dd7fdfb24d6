// Package schema describes the models sqlmodel persists.
//
// A Model is the record type's metadata: its name, table, attribute
// descriptors (see package field) and primary key. A Record is one instance
// of a model, carrying attribute values plus the set of attributes changed
// since it was last saved, which drives update statements.
//
//	User := schema.MustNew("User", []*field.Builder{
//	    field.Any("id").Primary(),
//	    field.String("fullname").Column("name"),
//	    field.Bool("active"),
//	})
//
//	u := schema.NewRecord(map[string]any{"fullname": "alex"})
//
// Models can also be loaded from YAML files with LoadModel.
package schema
