package services

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

const (
	minPasswordLen = 8
	maxNameLen     = 150
	maxEmailLen    = 254
	maxTitleLen    = 200
)

// usernameRe allows letters, digits and @.+-_ like most account systems.
var usernameRe = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkUsername(ve *common.ValidationError, username string) {
	switch {
	case username == "":
		ve.Add("username", "this field is required")
	case utf8.RuneCountInString(username) > maxNameLen:
		ve.Add("username", "must be at most 150 characters")
	case !usernameRe.MatchString(username):
		ve.Add("username", "may contain only letters, digits and @/./+/-/_")
	}
}

func checkEmail(ve *common.ValidationError, email string) {
	if email == "" {
		ve.Add("email", "this field is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || len(email) > maxEmailLen {
		ve.Add("email", "enter a valid email address")
	}
}

func checkName(ve *common.ValidationError, field, value string) {
	if utf8.RuneCountInString(value) > maxNameLen {
		ve.Add(field, "must be at most 150 characters")
	}
}

// checkTitle validates an already trimmed task title.
func checkTitle(ve *common.ValidationError, title string) {
	switch {
	case title == "":
		ve.Add("title", "this field is required")
	case utf8.RuneCountInString(title) > maxTitleLen:
		ve.Add("title", "must be at most 200 characters")
	}
}
