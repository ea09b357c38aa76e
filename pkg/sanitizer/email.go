package sanitizer

import "strings"

// NormalizeEmail trims and lowercases an address. Emails are the join key
// between users and file access lists, so no further rewriting is done.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmails normalizes, drops empties and deduplicates, keeping first-seen order.
func NormalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = NormalizeEmail(e); e != "" {
			out = append(out, e)
		}
	}
	return Deduplicate(out)
}

// EmailLocalPart returns the text before "@". A value without "@" is
// returned whole.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
