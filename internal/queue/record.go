// Package queue holds the content queue core: the typed record model, the
// row normalizer, the time resolver, the due-job selector and the status
// updater. Everything here is pure computation over an in-memory snapshot;
// reading and writing the backing store is the rowsource package's job.
package queue

import "strings"

// Record is one row of the content queue in canonical form. Rows are authored
// by hand in a spreadsheet; every field is a trimmed string and any of them
// may be empty.
type Record struct {
	ScheduledDate string
	ScheduledTime string
	Title         string
	Body          string
	Hashtags      string
	AffiliateLink string
	Background    string
	Music         string
	Status        string
}

// Key identifies a record within one queue. The queue has no row IDs, so the
// date/title pair is the only stable handle across read/write cycles.
type Key struct {
	ScheduledDate string
	Title         string
}

func (r Record) Key() Key {
	return Key{ScheduledDate: r.ScheduledDate, Title: r.Title}
}

// StatusToken is one POSTED-<PLATFORM> marker, optionally carrying a note
// such as the external video ID.
type StatusToken struct {
	Platform string
	Note     string
}

func (t StatusToken) String() string {
	if t.Note != "" {
		return "POSTED-" + t.Platform + "(" + t.Note + ")"
	}
	return "POSTED-" + t.Platform
}

// ParseStatus splits a raw status field into its tokens. Fragments that do
// not carry the POSTED- prefix are dropped; platform matching elsewhere must
// go through the parsed tokens so that a tag like "YT" never matches inside
// a longer token such as POSTED-YTMUSIC.
func ParseStatus(raw string) []StatusToken {
	var tokens []StatusToken
	for _, part := range strings.Split(raw, "|") {
		part = strings.TrimSpace(part)
		if part == "" || !strings.HasPrefix(part, "POSTED-") {
			continue
		}
		body := strings.TrimPrefix(part, "POSTED-")
		token := StatusToken{Platform: body}
		if open := strings.Index(body, "("); open >= 0 && strings.HasSuffix(body, ")") {
			token.Platform = body[:open]
			token.Note = body[open+1 : len(body)-1]
		}
		if token.Platform == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// SerializeStatus joins tokens back into the persisted form.
func SerializeStatus(tokens []StatusToken) string {
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		parts = append(parts, token.String())
	}
	return strings.Join(parts, "|")
}

// PostedTo reports whether the record already carries a token for the given
// platform tag, regardless of note.
func (r Record) PostedTo(platform string) bool {
	for _, token := range ParseStatus(r.Status) {
		if token.Platform == platform {
			return true
		}
	}
	return false
}

// HasStatusToken reports whether the record carries this exact token,
// note included. Used for idempotent marking.
func (r Record) HasStatusToken(want StatusToken) bool {
	for _, token := range ParseStatus(r.Status) {
		if token == want {
			return true
		}
	}
	return false
}
