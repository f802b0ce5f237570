// Package model contain gorm model for recording data to database
package model

// MigrateAble is array of model instance, use for migrating database
var MigrateAble []interface{}

func init() {
	MigrateAble = append(
		MigrateAble,
		&User{},
		&JobListing{},
		&Application{},
		&Activity{},
	)
}

// Contains checks if a string is present in a slice of strings.
func Contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidJobStatus reports whether s is a known job listing status.
func IsValidJobStatus(s string) bool {
	return Contains(JobStatuses, s)
}

// IsValidApplicationStatus reports whether s is a known application status.
func IsValidApplicationStatus(s string) bool {
	return Contains(ApplicationStatuses, s)
}
