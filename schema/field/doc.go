// Package field provides fluent builders for model attribute descriptors.
//
// A descriptor names an attribute, declares its type and optionally maps it
// to a differently-named column:
//
//	field.Any("id").Primary()
//	field.String("fullname").Column("name").MaxLen(255)
//	field.Bool("active")
//	field.UUID("token")
//
// # Field Types
//
//	field.String("name")       // inlined as a quoted literal
//	field.Number("age")        // inlined as a numeric literal
//	field.Bool("active")       // bound as 1 / 0, read back as bool
//	field.Date("created_at")   // converted per column type, see below
//	field.UUID("id")           // bound as 16 bytes, read back lower-case
//	field.Any("tag_id")        // no conversion
//
// # Date Storage
//
// Date attributes may declare how the column stores them. The statement
// compiler converts values (and comparison operands) accordingly:
//
//	field.Date("subscribed_at").ColumnType(field.ColumnDatetime)  // '2006-01-02 15:04:05'
//	field.Date("updated_at").ColumnType(field.ColumnInteger)      // Unix seconds
//	field.Date("created_at").ColumnType(field.ColumnTimestamp)    // '2006-01-02 15:04:05.000000'
//
// Descriptors are immutable once the model is built.
package field
