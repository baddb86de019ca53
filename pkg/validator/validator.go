package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

const (
	MaxBioLen     = 250
	MaxCaptionLen = 2200
	MaxCommentLen = 1000
	MaxMessageLen = 2000
)

func ValidateRegister(email, username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	// Email
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	// Username
	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 30 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and .")
	}

	// Password
	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateProfile(bio, gender string) ValidationErrors {
	errs := make(ValidationErrors)

	if utf8.RuneCountInString(bio) > MaxBioLen {
		errs.Add("bio", fmt.Sprintf("Bio must be at most %d characters", MaxBioLen))
	}

	switch gender {
	case "", "male", "female", "other":
	default:
		errs.Add("gender", "Gender must be male, female or other")
	}

	return errs
}

func ValidateCaption(caption string) ValidationErrors {
	errs := make(ValidationErrors)

	if utf8.RuneCountInString(caption) > MaxCaptionLen {
		errs.Add("caption", fmt.Sprintf("Caption must be at most %d characters", MaxCaptionLen))
	}

	return errs
}

func ValidateComment(text string) ValidationErrors {
	errs := make(ValidationErrors)

	text = strings.TrimSpace(text)
	if text == "" {
		errs.Add("text", "Comment text is required")
	} else if utf8.RuneCountInString(text) > MaxCommentLen {
		errs.Add("text", fmt.Sprintf("Comment must be at most %d characters", MaxCommentLen))
	}

	return errs
}

func ValidateMessage(body string) ValidationErrors {
	errs := make(ValidationErrors)

	body = strings.TrimSpace(body)
	if body == "" {
		errs.Add("body", "Message cannot be empty")
	} else if utf8.RuneCountInString(body) > MaxMessageLen {
		errs.Add("body", fmt.Sprintf("Message must be at most %d characters", MaxMessageLen))
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasLetter, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsLetter(ch):
			hasLetter = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		errs.Add("password", "Password must contain at least one letter and one number")
	}
}
