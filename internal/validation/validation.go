package validation

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"rottencompany/internal/models"
)

// Input limits.
const (
	MaxTitleLength   = 200
	MaxSummaryLength = 5000
	MaxNameLength    = 120
	MaxNoteLength    = 2000
	MaxQueryLength   = 100
)

var (
	ErrMissingID = errors.New("id is required")
	ErrInvalidID = errors.New("id must be an integer")
)

// ParseID parses a required integer identifier from a query or path value.
func ParseID(raw string) (int64, error) {
	if raw == "" {
		return 0, ErrMissingID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// SlugPattern defines the valid slug format: lowercase alphanumerics separated by single hyphens.
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug checks if a slug is URL-safe.
func ValidateSlug(slug string) bool {
	if slug == "" || len(slug) > 100 {
		return false
	}
	return SlugPattern.MatchString(slug)
}

// Slugify derives a URL-safe slug from a display name.
// Accents are stripped; runs of other characters collapse to a single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range norm.NFKD.String(name) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}

// NormalizeQuery trims a search query and caps its length in bytes.
// The cut never splits a multi-byte character.
func NormalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > MaxQueryLength {
		cut := MaxQueryLength
		for cut > 0 && !utf8.RuneStart(q[cut]) {
			cut--
		}
		q = q[:cut]
	}
	return q
}

// ValidateFileRef checks an optional evidence attachment reference.
// Accepts empty, an http(s) URL or a bare storage key.
func ValidateFileRef(ref string) (bool, string) {
	if ref == "" {
		return true, ""
	}
	if len(ref) > 500 {
		return false, "File reference is too long"
	}
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return false, "Invalid file reference"
		}
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return false, "File URL must use http:// or https:// scheme"
		}
		if u.Host == "" {
			return false, "File URL must have a valid host"
		}
		return true, ""
	}
	if strings.Contains(ref, "..") || strings.HasPrefix(ref, "/") {
		return false, "Invalid file reference"
	}
	return true, ""
}

// ValidateEvidence checks user-supplied evidence fields and fills defaults.
// Returns false with a user-facing message on the first problem found.
func ValidateEvidence(ev *models.Evidence) (bool, string) {
	ev.Title = strings.TrimSpace(ev.Title)
	ev.Summary = strings.TrimSpace(ev.Summary)

	if ev.Title == "" {
		return false, "Title is required"
	}
	if len(ev.Title) > MaxTitleLength {
		return false, "Title is too long"
	}
	if len(ev.Summary) > MaxSummaryLength {
		return false, "Summary is too long"
	}
	if ev.Category == "" {
		ev.Category = models.CategoryOther
	}
	if !models.IsValidCategory(ev.Category) {
		return false, "Unknown category"
	}
	if ev.Severity == 0 {
		ev.Severity = models.DefaultSeverity
	}
	if ev.Severity < models.MinSeverity || ev.Severity > models.MaxSeverity {
		return false, "Severity must be between 1 and 10"
	}
	if !models.IsEntityTarget(ev.TargetType) {
		return false, "Target must be a company, leader or manager"
	}
	if ev.TargetID <= 0 {
		return false, "Target id is required"
	}
	return ValidateFileRef(ev.FileRef)
}

// ValidateCompanyName checks a proposed company name.
func ValidateCompanyName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "Company name is required"
	}
	if len(name) > MaxNameLength {
		return false, "Company name is too long"
	}
	if Slugify(name) == "" {
		return false, "Company name must contain letters or digits"
	}
	return true, ""
}
