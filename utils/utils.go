package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

func GenerateUuid() string {
	uuid1, err := uuid.NewUUID()
	if err != nil {
		panic("Failed to generate UUID")
	}

	return uuid1.String()
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsValidSlug reports whether a collection slug is lowercase alphanumeric
// with inner hyphens only.
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Slugify derives a slug candidate from free text. Used to propose a
// username from the local part of an email address.
func Slugify(text string) string {
	lowered := strings.ToLower(text)
	cleaned := regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(lowered, "-")

	return strings.Trim(cleaned, "-")
}
