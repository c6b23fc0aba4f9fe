// Package models defines the domain types for the site content document.
package models

import "encoding/json"

// SectionID identifies one of the fixed page sections.
type SectionID string

// Known section identifiers, in page order.
const (
	SectionHome     SectionID = "home"
	SectionAbout    SectionID = "about"
	SectionGallery  SectionID = "gallery"
	SectionServices SectionID = "services"
	SectionContact  SectionID = "contact"
)

// KnownSections lists every section id in page order.
var KnownSections = []SectionID{
	SectionHome,
	SectionAbout,
	SectionGallery,
	SectionServices,
	SectionContact,
}

// IsKnown reports whether id belongs to the fixed section set.
func (id SectionID) IsKnown() bool {
	for _, k := range KnownSections {
		if k == id {
			return true
		}
	}
	return false
}

// Nav alignment values. The stored value is not validated against these.
const (
	NavAlignLeft   = "left"
	NavAlignCenter = "center"
	NavAlignRight  = "right"
)

// SiteConfig holds the site-wide settings.
type SiteConfig struct {
	Brand        string `json:"brand"`
	NavAlign     string `json:"nav_align"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	WhatsApp     string `json:"whatsapp"`
}

// ImageRef points at a gallery original and its square thumbnail.
type ImageRef struct {
	Full  string `json:"full"`
	Thumb string `json:"thumb"`
}

// Section is one configurable block of the public page.
//
// Image is used by every section except the gallery; Images only by the gallery.
type Section struct {
	ID       SectionID
	Title    string
	Subtitle string
	Bg       string
	Image    string
	Images   []ImageRef
}

// IsGallery reports whether the section carries the image list.
func (s *Section) IsGallery() bool {
	return s.ID == SectionGallery
}

type sectionJSON struct {
	ID       SectionID   `json:"id"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Bg       string      `json:"bg"`
	Image    *string     `json:"image,omitempty"`
	Images   *[]ImageRef `json:"images,omitempty"`
}

// MarshalJSON emits "images" for the gallery and "image" for every other section.
func (s Section) MarshalJSON() ([]byte, error) {
	out := sectionJSON{
		ID:       s.ID,
		Title:    s.Title,
		Subtitle: s.Subtitle,
		Bg:       s.Bg,
	}
	if s.IsGallery() {
		images := s.Images
		if images == nil {
			images = []ImageRef{}
		}
		out.Images = &images
	} else {
		image := s.Image
		out.Image = &image
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a section, normalising a missing gallery list to empty.
func (s *Section) UnmarshalJSON(data []byte) error {
	var in sectionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Section{
		ID:       in.ID,
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Bg:       in.Bg,
	}
	if in.Image != nil {
		s.Image = *in.Image
	}
	if in.Images != nil {
		s.Images = *in.Images
	}
	if s.IsGallery() && s.Images == nil {
		s.Images = []ImageRef{}
	}
	return nil
}

// Document is the single persisted content record.
type Document struct {
	Site     SiteConfig `json:"site"`
	Sections []Section  `json:"sections"`
}

// Section returns the section with the given id, or nil.
func (d *Document) Section(id SectionID) *Section {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i]
		}
	}
	return nil
}

// DefaultDocument returns the content written on first run.
func DefaultDocument() *Document {
	return &Document{
		Site: SiteConfig{
			Brand:        "האתר שלי",
			NavAlign:     NavAlignCenter,
			ContactEmail: "you@example.com",
			ContactPhone: "+972501234567",
			WhatsApp:     "+972501234567",
		},
		Sections: []Section{
			{ID: SectionHome, Title: "ברוכים הבאים", Subtitle: "עמוד נחיתה עם גלילה", Bg: "#f5f5f5"},
			{ID: SectionAbout, Title: "אודות", Subtitle: "כמה מילים עלי/העסק", Bg: "#e8f4ff"},
			{ID: SectionGallery, Title: "גלריה", Subtitle: "עבודות נבחרות", Bg: "#ffffff", Images: []ImageRef{}},
			{ID: SectionServices, Title: "שירותים", Subtitle: "מה אני מציע/ה", Bg: "#eefbea"},
			{ID: SectionContact, Title: "צור קשר", Subtitle: "טל׳ / וואטסאפ / מייל", Bg: "#fff1f1"},
		},
	}
}
