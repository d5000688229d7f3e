package textstat

import "regexp"

var (
	urlRe     = regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.\-]*://\S+`)
	mentionRe = regexp.MustCompile(`@([\p{L}\p{N}_]+)`)
	hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
)

// CountURLs counts non-overlapping scheme:// links in text.
func CountURLs(text string) int {
	return len(urlRe.FindAllStringIndex(text, -1))
}

// URLs returns the scheme:// links in text.
func URLs(text string) []string {
	return nonNil(urlRe.FindAllString(text, -1))
}

// Mentions returns the @names in text without the leading @.
func Mentions(text string) []string {
	return captures(mentionRe, text)
}

// Hashtags returns the #tags in text without the leading #.
func Hashtags(text string) []string {
	return captures(hashtagRe, text)
}

func captures(re *regexp.Regexp, text string) []string {
	out := []string{}
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
