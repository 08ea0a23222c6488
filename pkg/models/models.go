package models

// All lists every persisted record, in dependency order, for AutoMigrate in
// tests and local tooling. Production schema lives in migrations/.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Friendship{},
		&Post{},
		&PostMedia{},
		&PostCoCreator{},
		&CollaborationInvite{},
		&Comment{},
		&Like{},
	}
}
