package models

// AdminCredential is the single operator login record, stored under a fixed
// well-known name. The password is kept as a bcrypt hash; the application
// only ever reads this record.
type AdminCredential struct {
	Name         string
	Username     string
	PasswordHash []byte
}
