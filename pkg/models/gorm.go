package models

// ModelsToAutoMigrate returns the models the local store creates on startup.
func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&SheetRow{},
	}
}
