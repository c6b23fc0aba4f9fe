package contentservice

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/vitrine/internal/apperr"
	"github.com/starford/vitrine/internal/media"
	"github.com/starford/vitrine/internal/models"
	"github.com/starford/vitrine/internal/storage"
	"github.com/starford/vitrine/internal/testutil"
)

type recorder struct {
	kinds []string
}

func (r *recorder) PublishContentEvent(kind string, _ map[string]string) {
	r.kinds = append(r.kinds, kind)
}

func testService(t *testing.T) (*Service, *storage.FS, *media.Library, *recorder) {
	t.Helper()
	store := testutil.TestStore(t)
	lib := testutil.TestLibrary(t)
	rec := &recorder{}
	return NewService(store, lib, rec), store, lib, rec
}

func str(s string) *string { return &s }

func pngUpload(t *testing.T, name string, w, h int) Upload {
	t.Helper()
	return Upload{Filename: name, Content: bytes.NewReader(testutil.PNG(t, w, h, color.White))}
}

func TestSave_SiteFieldsFallBack(t *testing.T) {
	svc, _, _, rec := testService(t)
	ctx := context.Background()

	err := svc.Save(ctx, SaveRequest{Site: SitePatch{Brand: str("Studio Noa"), NavAlign: str("right")}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, _ := svc.Document(ctx)
	if doc.Site.Brand != "Studio Noa" || doc.Site.NavAlign != "right" {
		t.Errorf("site = %+v", doc.Site)
	}
	def := models.DefaultDocument().Site
	if doc.Site.ContactEmail != def.ContactEmail || doc.Site.WhatsApp != def.WhatsApp {
		t.Errorf("absent fields changed: %+v", doc.Site)
	}
	if len(rec.kinds) != 1 || rec.kinds[0] != EventSaved {
		t.Errorf("events = %v", rec.kinds)
	}
}

func TestSave_SectionFields(t *testing.T) {
	svc, _, _, _ := testService(t)
	ctx := context.Background()

	err := svc.Save(ctx, SaveRequest{Sections: map[models.SectionID]SectionUpdate{
		models.SectionAbout: {Title: str("About us"), Bg: str("#000000")},
	}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, _ := svc.Document(ctx)
	about := doc.Section(models.SectionAbout)
	if about.Title != "About us" || about.Bg != "#000000" {
		t.Errorf("about = %+v", about)
	}
	if about.Subtitle != models.DefaultDocument().Section(models.SectionAbout).Subtitle {
		t.Errorf("subtitle changed: %q", about.Subtitle)
	}
	if doc.Section(models.SectionHome).Title != models.DefaultDocument().Section(models.SectionHome).Title {
		t.Error("unrelated section changed")
	}
}

func TestSave_SingleImage(t *testing.T) {
	svc, _, lib, _ := testService(t)
	ctx := context.Background()

	up := pngUpload(t, "hero.png", 20, 20)
	err := svc.Save(ctx, SaveRequest{Sections: map[models.SectionID]SectionUpdate{
		models.SectionHome: {Image: &up},
	}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, _ := svc.Document(ctx)
	image := doc.Section(models.SectionHome).Image
	if !strings.HasPrefix(image, "hero-") {
		t.Fatalf("image = %q", image)
	}
	if !testutil.Exists(filepath.Join(lib.UploadDir(), image)) {
		t.Error("uploaded file missing")
	}

	// Saving again without a new file keeps the stored name.
	if err := svc.Save(ctx, SaveRequest{Sections: map[models.SectionID]SectionUpdate{
		models.SectionHome: {Title: str("Hi")},
	}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, _ = svc.Document(ctx)
	if got := doc.Section(models.SectionHome).Image; got != image {
		t.Errorf("image = %q, want %q preserved", got, image)
	}
}

func TestSave_DisallowedImageSkipped(t *testing.T) {
	svc, _, _, _ := testService(t)
	ctx := context.Background()

	up := Upload{Filename: "run.exe", Content: strings.NewReader("MZ")}
	err := svc.Save(ctx, SaveRequest{
		Sections: map[models.SectionID]SectionUpdate{models.SectionAbout: {Image: &up}},
		Gallery:  []Upload{{Filename: "script.sh", Content: strings.NewReader("#!")}},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, _ := svc.Document(ctx)
	if doc.Section(models.SectionAbout).Image != "" {
		t.Error("disallowed upload stored as section image")
	}
	if len(doc.Section(models.SectionGallery).Images) != 0 {
		t.Error("disallowed upload added to gallery")
	}
}

func TestSave_GalleryAppendsInOrder(t *testing.T) {
	svc, _, lib, _ := testService(t)
	ctx := context.Background()

	err := svc.Save(ctx, SaveRequest{Gallery: []Upload{
		pngUpload(t, "first.png", 100, 200),
		{Filename: "skip.txt", Content: strings.NewReader("x")},
		pngUpload(t, "second.png", 400, 100),
	}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, _ := svc.Document(ctx)
	images := doc.Section(models.SectionGallery).Images
	if len(images) != 2 {
		t.Fatalf("gallery = %+v, want 2 entries", images)
	}
	if !strings.HasPrefix(images[0].Full, "first-") || !strings.HasPrefix(images[1].Full, "second-") {
		t.Errorf("gallery order = %+v", images)
	}
	for _, img := range images {
		if img.Thumb != media.ThumbName(img.Full) {
			t.Errorf("thumb = %q for %q", img.Thumb, img.Full)
		}
		if !testutil.Exists(filepath.Join(lib.ThumbDir(), img.Thumb)) {
			t.Errorf("thumbnail %s missing", img.Thumb)
		}
	}
}

func TestSave_DecodeErrorAborts(t *testing.T) {
	svc, store, lib, rec := testService(t)
	ctx := context.Background()
	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	sum := store.LastWritten()

	err := svc.Save(ctx, SaveRequest{
		Site: SitePatch{Brand: str("never saved")},
		Gallery: []Upload{
			pngUpload(t, "good.png", 10, 10),
			{Filename: "bad.png", Content: strings.NewReader("garbage")},
		},
	})
	if !errors.Is(err, apperr.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
	if store.LastWritten() != sum {
		t.Error("document was written despite the failure")
	}
	doc, _ := svc.Document(ctx)
	if doc.Site.Brand == "never saved" || len(doc.Section(models.SectionGallery).Images) != 0 {
		t.Error("partial save persisted")
	}
	// The earlier upload and its thumbnail are not rolled back.
	originals, _ := filepath.Glob(filepath.Join(lib.UploadDir(), "good-*.png"))
	if len(originals) != 1 {
		t.Errorf("good originals = %v", originals)
	}
	if len(rec.kinds) != 0 {
		t.Errorf("events published on failure: %v", rec.kinds)
	}
}

func seedGallery(t *testing.T, store *storage.FS, lib *media.Library) {
	t.Helper()
	ctx := context.Background()
	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	doc.Section(models.SectionGallery).Images = []models.ImageRef{
		{Full: "x.png", Thumb: "x_thumb.jpg"},
		{Full: "y.png", Thumb: "y_thumb.jpg"},
	}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"x.png", "y.png"} {
		testutil.WriteFile(t, lib.UploadDir(), n, []byte(n))
	}
	for _, n := range []string{"x_thumb.jpg", "y_thumb.jpg"} {
		testutil.WriteFile(t, lib.ThumbDir(), n, []byte(n))
	}
}

func TestDeleteGalleryImage(t *testing.T) {
	svc, store, lib, rec := testService(t)
	seedGallery(t, store, lib)
	ctx := context.Background()

	removed, err := svc.DeleteGalleryImage(ctx, "x.png", "x_thumb.jpg")
	if err != nil {
		t.Fatalf("DeleteGalleryImage: %v", err)
	}
	if !removed {
		t.Fatal("expected a match")
	}
	doc, _ := svc.Document(ctx)
	images := doc.Section(models.SectionGallery).Images
	if len(images) != 1 || images[0].Full != "y.png" {
		t.Fatalf("gallery = %+v", images)
	}
	if testutil.Exists(filepath.Join(lib.UploadDir(), "x.png")) || testutil.Exists(filepath.Join(lib.ThumbDir(), "x_thumb.jpg")) {
		t.Error("x files should be removed")
	}
	if !testutil.Exists(filepath.Join(lib.UploadDir(), "y.png")) || !testutil.Exists(filepath.Join(lib.ThumbDir(), "y_thumb.jpg")) {
		t.Error("y files should be kept")
	}
	if len(rec.kinds) != 1 || rec.kinds[0] != EventImageDeleted {
		t.Errorf("events = %v", rec.kinds)
	}
}

func TestDeleteGalleryImage_NoMatch(t *testing.T) {
	svc, store, lib, rec := testService(t)
	seedGallery(t, store, lib)
	ctx := context.Background()

	removed, err := svc.DeleteGalleryImage(ctx, "zzz.png", "y_thumb.jpg")
	if err != nil {
		t.Fatalf("DeleteGalleryImage: %v", err)
	}
	if removed {
		t.Error("unexpected match")
	}
	doc, _ := svc.Document(ctx)
	if len(doc.Section(models.SectionGallery).Images) != 2 {
		t.Error("gallery changed")
	}
	// Files named by the client are left alone when nothing matched.
	if !testutil.Exists(filepath.Join(lib.ThumbDir(), "y_thumb.jpg")) {
		t.Error("thumbnail removed without a matching entry")
	}
	if len(rec.kinds) != 0 {
		t.Errorf("events = %v", rec.kinds)
	}
}

func TestDeleteGalleryImage_FilesAlreadyGone(t *testing.T) {
	svc, store, lib, _ := testService(t)
	seedGallery(t, store, lib)
	ctx := context.Background()
	if err := lib.Remove("x.png", "x_thumb.jpg"); err != nil {
		t.Fatal(err)
	}
	removed, err := svc.DeleteGalleryImage(ctx, "x.png", "x_thumb.jpg")
	if err != nil || !removed {
		t.Fatalf("removed = %v, err = %v", removed, err)
	}
}
