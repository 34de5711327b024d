package queue

import "errors"

// ErrRecordNotFound means the target row disappeared between selection and
// marking, usually because the queue was edited concurrently. Callers log it
// and move on; the queue is left untouched.
var ErrRecordNotFound = errors.New("record not found in queue")

// MarkPosted appends a POSTED token for the platform to the record matching
// target's natural key and returns the full record set, order preserved.
//
// Marking is idempotent on the exact token string: if the record already
// carries POSTED-<platform> with the same note, the set comes back unchanged.
// A record posted to the same platform under a different note still gains the
// new token, so the note history is kept.
func MarkPosted(records []Record, target Record, platform, note string) ([]Record, error) {
	token := StatusToken{Platform: platform, Note: note}

	idx := -1
	for i, record := range records {
		if record.Key() == target.Key() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrRecordNotFound
	}

	updated := make([]Record, len(records))
	copy(updated, records)

	record := updated[idx]
	if record.HasStatusToken(token) {
		return updated, nil
	}
	// Append rather than reserialize so any free-form fragments an operator
	// typed into the column survive the rewrite.
	if record.Status == "" {
		record.Status = token.String()
	} else {
		record.Status += "|" + token.String()
	}
	updated[idx] = record

	return updated, nil
}
