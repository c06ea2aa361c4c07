package issue

import "regexp"

const (
	// MinTitleLen is the minimum normalized title length in runes.
	MinTitleLen = 10
	// MinDescriptionLen is the minimum normalized description length in runes.
	MinDescriptionLen = 30
)

// Validation error messages. These are published verbatim in the
// needs-more-info comment, so they are user-facing strings.
const (
	ErrTitleRequired       = "Title is required"
	ErrTitleTooShort       = "Title is too short (min 10 chars)"
	ErrDescriptionRequired = "Description is required"
	ErrDescriptionTooShort = "Description is too short (min 30 chars) to be useful"
	ErrAuthorRequired      = "Author is required"
	ErrSpamContent         = "Content contains spam keywords"
)

// spamPatterns is the fixed list of content patterns that mark an issue as
// spam. Matching any number of them contributes a single aggregated error.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)free\s+money`),
	regexp.MustCompile(`(?i)click\s+here`),
	regexp.MustCompile(`(?i)buy\s+now`),
	regexp.MustCompile(`(?i)limited\s+time\s+offer`),
	regexp.MustCompile(`(?i)work\s+from\s+home`),
	regexp.MustCompile(`(?i)crypto\s+giveaway`),
	regexp.MustCompile(`(?i)100%\s+guaranteed`),
}

// ValidationResult reports issue integrity violations in detection order.
type ValidationResult struct {
	Errors []string
}

// IsValid reports whether the issue passed all integrity checks.
func (r ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

// Validate runs the pre-AI integrity checks on an issue. Error order is
// stable: title, description, author, spam.
func Validate(is *Issue) ValidationResult {
	var errs []string

	switch {
	case is.Title.IsEmpty():
		errs = append(errs, ErrTitleRequired)
	case is.Title.Len() < MinTitleLen:
		errs = append(errs, ErrTitleTooShort)
	}

	switch {
	case is.Body.IsEmpty():
		errs = append(errs, ErrDescriptionRequired)
	case is.Body.Len() < MinDescriptionLen:
		errs = append(errs, ErrDescriptionTooShort)
	}

	if is.Author.IsEmpty() {
		errs = append(errs, ErrAuthorRequired)
	}

	content := is.Title.String() + " " + is.Body.String()
	for _, re := range spamPatterns {
		if re.MatchString(content) {
			errs = append(errs, ErrSpamContent)
			break
		}
	}

	return ValidationResult{Errors: errs}
}
