package models

// Section tags the topic board a post belongs to.
type Section string

const (
	SectionEvents     Section = "events"
	SectionBusinesses Section = "businesses"
	SectionNews       Section = "news"
	SectionChat       Section = "chat"
)

// Sections lists every known section in navigation order.
var Sections = []Section{SectionEvents, SectionBusinesses, SectionNews, SectionChat}

// Valid reports whether s is one of the known sections.
func (s Section) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}
