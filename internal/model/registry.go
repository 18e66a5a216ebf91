package model

// AllModels returns every model the migrator needs to know about. New
// tables only have to be added here.
func AllModels() []interface{} {
	return []interface{}{
		&OwnedAccount{},
		&SubmissionRecord{},
	}
}
