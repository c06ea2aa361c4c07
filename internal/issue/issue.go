// Package issue holds the value objects and integrity rules for tracker issues.
package issue

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Number identifies an issue within a repository. Valid numbers are positive.
type Number int

// NewNumber validates v as an issue number.
func NewNumber(v int) (Number, error) {
	if v <= 0 {
		return 0, fmt.Errorf("issue number must be positive, got %d", v)
	}
	return Number(v), nil
}

// Int returns the number as a plain int.
func (n Number) Int() int { return int(n) }

func (n Number) String() string { return fmt.Sprintf("#%d", int(n)) }

// Repo identifies a repository as owner/name.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo parses an "owner/name" identifier.
func ParseRepo(full string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(full), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("malformed repository identifier %q (want owner/name)", full)
	}
	return Repo{Owner: owner, Name: name}, nil
}

func (r Repo) String() string { return r.Owner + "/" + r.Name }

// IsZero reports whether the repo identifier is unset.
func (r Repo) IsZero() bool { return r.Owner == "" && r.Name == "" }

// Title wraps an issue title with whitespace normalization.
type Title struct {
	value string
}

// NewTitle trims and wraps a raw title.
func NewTitle(raw string) Title { return Title{value: strings.TrimSpace(raw)} }

func (t Title) String() string { return t.value }

// Len returns the normalized length in runes.
func (t Title) Len() int { return utf8.RuneCountInString(t.value) }

// IsEmpty reports whether the normalized title is empty.
func (t Title) IsEmpty() bool { return t.value == "" }

// Description wraps an issue body with whitespace normalization.
type Description struct {
	value string
}

// NewDescription trims and wraps a raw body.
func NewDescription(raw string) Description { return Description{value: strings.TrimSpace(raw)} }

func (d Description) String() string { return d.value }

// Len returns the normalized length in runes.
func (d Description) Len() int { return utf8.RuneCountInString(d.value) }

// IsEmpty reports whether the normalized description is empty.
func (d Description) IsEmpty() bool { return d.value == "" }

// Author wraps the login of the user who opened the issue.
type Author struct {
	login string
}

// NewAuthor trims and wraps a raw login.
func NewAuthor(raw string) Author { return Author{login: strings.TrimSpace(raw)} }

func (a Author) String() string { return a.login }

// IsEmpty reports whether the author login is missing.
func (a Author) IsEmpty() bool { return a.login == "" }

// Issue is the tracker entity the pre-AI gate validates.
type Issue struct {
	Number    Number
	Title     Title
	Body      Description
	Author    Author
	CreatedAt time.Time
}
