package utils

import "github.com/google/uuid"

// GenId returns a random connection key.
func GenId() string {
	return uuid.NewString()
}
