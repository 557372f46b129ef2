package migrate_test

import (
	"fmt"

	"github.com/gradtrack/gradtrack/internal/migrate"
)

func ExampleMigrateData() {
	legacy := migrate.ParseBlob([]byte(`[{"id": 1700000000000, "universityName": "MIT", "status": "Submitted"}]`))

	fmt.Println("stored version:", migrate.DetectVersion(legacy))
	schema := migrate.MigrateData(legacy)
	app := schema.Applications[0]
	fmt.Println("current version:", schema.Version)
	fmt.Println(app.ID, app.UniversityName, app.Status, app.IsPinned)
	// Output:
	// stored version: 0
	// current version: 4
	// 1700000000000 MIT Submitted false
}
