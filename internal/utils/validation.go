package utils

import "regexp"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail checks an address against a pragmatic pattern, not RFC 5322.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]{3,30}$`)

// IsValidUsername allows letters, digits, underscore, hyphen and dot,
// between 3 and 30 characters.
func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}
