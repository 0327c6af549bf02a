package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kasi is a locality that owns a set of forum sections.
type Kasi struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"-"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewKasi is the insert payload for a kasi.
type NewKasi struct {
	Name        string
	Description string
}

// DefaultKasis seeds an empty kasis table.
var DefaultKasis = []string{
	"Soweto", "Alexandra", "Tembisa", "Katlehong", "Evaton",
	"Sebokeng", "Daveyton", "Diepsloot", "Mamelodi", "Lenasia",
	"Khayelitsha", "Gugulethu", "Langa", "Nyanga", "Soshanguve",
	"Atteridgeville", "Vosloorus", "Thokoza", "Botshabelo",
	"Mdantsane", "KwaMashu", "Umlazi", "Chatsworth", "Phoenix",
	"Verulam",
}

func (k *Kasi) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	k.Name = CleanKasiName(k.Name)
	k.Slug = KasiSlug(k.Name)
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	return nil
}

// FeedColumns lists the columns change-feed subscribers may filter on.
func (k *Kasi) FeedColumns() map[string]string {
	return map[string]string{
		"id":   k.ID,
		"name": k.Name,
	}
}

// FormatKasiName upper-cases the first letter and lower-cases the rest.
// "kwaMashu" and "KWAMASHU" both become "Kwamashu", so the result is only
// suitable as a key; lookups go through KasiSlug.
func FormatKasiName(name string) string {
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}

// CleanKasiName trims the name and collapses inner whitespace.
func CleanKasiName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// KasiSlug is the case-insensitive lookup key stored alongside the name.
func KasiSlug(name string) string {
	return strings.ToLower(CleanKasiName(name))
}
