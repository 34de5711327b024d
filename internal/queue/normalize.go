package queue

import "strings"

// CanonicalHeader is the persisted column order. The queue files in the wild
// are authored in Indonesian; the English scheme below is accepted on read
// but everything is written back under this header.
var CanonicalHeader = []string{
	"Tanggal",
	"Judul",
	"Teks",
	"Hashtag",
	"LinkAffiliate",
	"BG",
	"Music",
	"Status",
	"JamWIB",
}

// aliases maps English column names onto the canonical ones.
var aliases = map[string]string{
	"Date":          "Tanggal",
	"Title":         "Judul",
	"Text":          "Teks",
	"Hashtags":      "Hashtag",
	"AffiliateLink": "LinkAffiliate",
	"Background":    "BG",
	"Time":          "JamWIB",
}

// Normalize maps a raw key-value row onto a Record. Keys and values are
// trimmed; a canonical column wins over its alias when both carry a value;
// anything missing stays the empty string. A fully empty row is a valid
// record, it just never resolves to a schedule.
func Normalize(raw map[string]string) Record {
	trimmed := make(map[string]string, len(raw))
	for key, value := range raw {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		trimmed[key] = strings.TrimSpace(value)
	}

	fields := make(map[string]string, len(CanonicalHeader))
	for alias, canonical := range aliases {
		if value := trimmed[alias]; value != "" {
			fields[canonical] = value
		}
	}
	for _, canonical := range CanonicalHeader {
		if value := trimmed[canonical]; value != "" {
			fields[canonical] = value
		}
	}

	return Record{
		ScheduledDate: fields["Tanggal"],
		ScheduledTime: fields["JamWIB"],
		Title:         fields["Judul"],
		Body:          fields["Teks"],
		Hashtags:      fields["Hashtag"],
		AffiliateLink: fields["LinkAffiliate"],
		Background:    fields["BG"],
		Music:         fields["Music"],
		Status:        fields["Status"],
	}
}

// Denormalize is the inverse mapping: canonical column names only, in no
// particular order (the rowsource writes them under CanonicalHeader).
func Denormalize(r Record) map[string]string {
	return map[string]string{
		"Tanggal":       r.ScheduledDate,
		"Judul":         r.Title,
		"Teks":          r.Body,
		"Hashtag":       r.Hashtags,
		"LinkAffiliate": r.AffiliateLink,
		"BG":            r.Background,
		"Music":         r.Music,
		"Status":        r.Status,
		"JamWIB":        r.ScheduledTime,
	}
}
