package parse

import "strings"

// Normalize canonicalizes a URL for visited-set membership by stripping the
// fragment component. Scheme, host, path, query, and trailing slashes are
// left untouched: two URLs differing only in fragment address the same crawl
// target, anything else does not. The returned string is used for dedup
// bookkeeping only; the original URL is what actually gets fetched.
func Normalize(rawURL string) string {
	base, _, _ := strings.Cut(rawURL, "#")
	return base
}
