package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSectionJSON_GalleryEmitsImages(t *testing.T) {
	data, err := json.Marshal(Section{ID: SectionGallery, Title: "g"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"images":[]`) {
		t.Errorf("gallery should emit empty images list: %s", s)
	}
	if strings.Contains(s, `"image":`) {
		t.Errorf("gallery should not emit image: %s", s)
	}
}

func TestSectionJSON_PlainSectionEmitsEmptyImage(t *testing.T) {
	data, err := json.Marshal(Section{ID: SectionAbout})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"image":""`) {
		t.Errorf("section should emit empty image: %s", s)
	}
	if strings.Contains(s, `"images"`) {
		t.Errorf("section should not emit images: %s", s)
	}
}

func TestSectionJSON_GalleryMissingImages(t *testing.T) {
	var s Section
	if err := json.Unmarshal([]byte(`{"id":"gallery","title":"g"}`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s.Images == nil {
		t.Error("gallery images should be normalised to an empty list")
	}
}

func TestDefaultDocument_KnownSections(t *testing.T) {
	doc := DefaultDocument()
	if len(doc.Sections) != len(KnownSections) {
		t.Fatalf("sections = %d, want %d", len(doc.Sections), len(KnownSections))
	}
	for i, id := range KnownSections {
		if doc.Sections[i].ID != id {
			t.Errorf("section %d = %q, want %q", i, doc.Sections[i].ID, id)
		}
	}
	if doc.Section(SectionGallery) == nil {
		t.Fatal("gallery missing")
	}
	if doc.Section("blog") != nil {
		t.Error("unexpected section for unknown id")
	}
}

func TestSectionID_IsKnown(t *testing.T) {
	if !SectionServices.IsKnown() {
		t.Error("services should be known")
	}
	if SectionID("pricing").IsKnown() {
		t.Error("pricing should not be known")
	}
}
