// Package sqlmodel persists model records in a relational database.
//
// A model declares its attributes with the schema and field packages. A
// Store compiles queries for the model, runs them with bounded retry on
// transient failures and normalizes the rows it reads back:
//
//	user := schema.MustNew("User", []*field.Builder{
//	    field.Any("id").Primary(),
//	    field.String("name"),
//	    field.Bool("active"),
//	})
//
//	client, err := sqlmodel.Open(cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	users := client.Store(user)
//
//	page, err := users.FindAll(ctx, map[string]any{"active": true, "page": 2, "pageSize": 25})
//	alex, err := users.FindOne(ctx, 1)
//	n, err := users.Count(ctx, map[string]any{"name": map[string]any{"$in": []any{"alex", "jeff"}}})
//
//	r := schema.NewRecord(map[string]any{"name": "jeff"})
//	err = users.Save(ctx, r) // insert; r now holds the generated id
//	r.Set("name", "jeffrey")
//	err = users.Save(ctx, r) // update "name" only
//	err = users.Remove(ctx, r)
package sqlmodel
