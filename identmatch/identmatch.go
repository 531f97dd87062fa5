// Package identmatch defines the regex-identifier-matching collaborator
// the reader consults for the optional match/reject filters. Regex
// filtering of record identifiers is treated as a pluggable collaborator;
// this package fixes the interface shape and ships a plain regexp-backed
// default implementation for local use and testing.
package identmatch

import "regexp"

// Matcher decides whether an identifier string (NET_STA_LOC_CHAN_QUAL)
// should be accepted.
type Matcher interface {
	Match(identifier string) bool
}

// Regex is the default Matcher, backed by the standard library regexp
// package.
type Regex struct {
	re *regexp.Regexp
}

// NewRegex compiles pattern into a Matcher. An empty pattern always matches.
func NewRegex(pattern string) (*Regex, error) {
	if pattern == "" {
		return &Regex{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Regex{re: re}, nil
}

// Match implements Matcher.
func (r *Regex) Match(identifier string) bool {
	if r.re == nil {
		return true
	}
	return r.re.MatchString(identifier)
}
