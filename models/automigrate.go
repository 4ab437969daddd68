package models

// AllTables returns every model that has a table.
func AllTables() []interface{} {
	return []interface{}{
		&ActivityLogEntry{},
		&Follower{},
		&KeyPair{},
	}
}
