package model

// Migrations returns the schemas in the order they must be applied.
// The schema is fixed: users before sessions and tasks, which both
// reference users.id.
func Migrations() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Task{},
	}
}
