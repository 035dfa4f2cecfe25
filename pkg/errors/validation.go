package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No whitespace (index formats split on it)
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name cannot contain whitespace")
		}
	}

	dangerousPatterns := []string{
		"..", // Parent directory
		"//", // Double slash
		"\\", // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// apkPackageNameRegex matches names as apk-tools accepts them.
var apkPackageNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+._-]*$`)

// ValidateApkPackageName validates a package name from an Alpine-style repository.
func ValidateApkPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if !apkPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid apk package name: %q", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL parses, has a host, and uses http or https.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}

// MaxDepth bounds the expansion depth accepted from users.
const MaxDepth = 64

// ValidateDepth checks that depth is between 1 and [MaxDepth].
func ValidateDepth(depth int) error {
	if depth < 1 {
		return New(ErrCodeInvalidDepth, "depth must be at least 1, got %d", depth)
	}
	if depth > MaxDepth {
		return New(ErrCodeInvalidDepth, "depth must be at most %d, got %d", MaxDepth, depth)
	}
	return nil
}

// Run modes: online fetches remote repositories, test reads local index files.
const (
	ModeOnline = "online"
	ModeTest   = "test"
)

// ValidateMode checks that mode is [ModeOnline] or [ModeTest].
func ValidateMode(mode string) error {
	switch mode {
	case ModeOnline, ModeTest:
		return nil
	default:
		return New(ErrCodeInvalidMode, "mode must be %q or %q, got %q", ModeOnline, ModeTest, mode)
	}
}
