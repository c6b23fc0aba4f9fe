// Package contentservice implements the admin save and gallery-delete
// workflows over the content store and the media library.
package contentservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/vitrine/internal/apperr"
	"github.com/starford/vitrine/internal/metrics"
	"github.com/starford/vitrine/internal/models"
	"github.com/starford/vitrine/internal/storage"
)

// Event kinds published after successful writes.
const (
	EventSaved        = "content.saved"
	EventImageDeleted = "gallery.image_deleted"
)

// Media is the subset of media.Library the service needs.
type Media interface {
	StoreOriginal(name string, r io.Reader) (string, error)
	MakeThumbnail(full string) (string, error)
	Remove(full, thumb string) error
}

// Notifier receives an event after each successful write.
type Notifier interface {
	PublishContentEvent(kind string, data map[string]string)
}

// Upload is one submitted file.
type Upload struct {
	Filename string
	Content  io.Reader
}

// SitePatch carries submitted site fields; nil means "keep the stored value".
type SitePatch struct {
	Brand        *string
	NavAlign     *string
	ContactEmail *string
	ContactPhone *string
	WhatsApp     *string
}

// SectionUpdate carries the submitted fields for one section.
// Image is ignored for the gallery.
type SectionUpdate struct {
	Title    *string
	Subtitle *string
	Bg       *string
	Image    *Upload
}

// SaveRequest is a full admin form submission.
type SaveRequest struct {
	Site     SitePatch
	Sections map[models.SectionID]SectionUpdate
	Gallery  []Upload
}

// Service coordinates content and media operations.
type Service struct {
	store  storage.Provider
	media  Media
	notify Notifier
}

// NewService creates a new content service. notify may be nil.
func NewService(store storage.Provider, media Media, notify Notifier) *Service {
	return &Service{store: store, media: media, notify: notify}
}

// Document returns the current content document.
func (s *Service) Document(ctx context.Context) (*models.Document, error) {
	return s.store.Load(ctx)
}

// Save applies req to the stored document and writes it back.
//
// Uploads with an empty name or disallowed extension are skipped. A gallery
// image that cannot be decoded aborts the save before the document is
// written; files stored earlier in the same request stay on disk.
func (s *Service) Save(ctx context.Context, req SaveRequest) error {
	err := s.save(ctx, req)
	if err != nil {
		metrics.ContentWrites.WithLabelValues("save", "error").Inc()
		return err
	}
	metrics.ContentWrites.WithLabelValues("save", "ok").Inc()
	s.publish(EventSaved, map[string]string{})
	return nil
}

func (s *Service) save(ctx context.Context, req SaveRequest) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	applySite(&doc.Site, req.Site)

	for i := range doc.Sections {
		sec := &doc.Sections[i]
		upd := req.Sections[sec.ID]
		setIf(&sec.Title, upd.Title)
		setIf(&sec.Subtitle, upd.Subtitle)
		setIf(&sec.Bg, upd.Bg)

		if sec.IsGallery() {
			if err := s.appendGallery(sec, req.Gallery); err != nil {
				return err
			}
			continue
		}

		if upd.Image != nil {
			name, err := s.media.StoreOriginal(upd.Image.Filename, upd.Image.Content)
			switch {
			case errors.Is(err, apperr.ErrUnsupportedFileType):
				slog.Debug("skipping section image", slog.String("section", string(sec.ID)), slog.String("filename", upd.Image.Filename))
			case err != nil:
				return fmt.Errorf("store image for %s: %w", sec.ID, err)
			default:
				sec.Image = name
			}
		}
	}

	return s.store.Save(ctx, doc)
}

func (s *Service) appendGallery(sec *models.Section, uploads []Upload) error {
	for _, up := range uploads {
		full, err := s.media.StoreOriginal(up.Filename, up.Content)
		if errors.Is(err, apperr.ErrUnsupportedFileType) {
			slog.Debug("skipping gallery upload", slog.String("filename", up.Filename))
			continue
		}
		if err != nil {
			return fmt.Errorf("store gallery image: %w", err)
		}
		thumb, err := s.media.MakeThumbnail(full)
		if err != nil {
			return fmt.Errorf("thumbnail for %s: %w", full, err)
		}
		sec.Images = append(sec.Images, models.ImageRef{Full: full, Thumb: thumb})
	}
	return nil
}

// DeleteGalleryImage drops the first gallery entry whose original is full.
// When an entry was dropped, both files are removed (missing files are fine).
// The document is written either way. It reports whether an entry matched.
func (s *Service) DeleteGalleryImage(ctx context.Context, full, thumb string) (bool, error) {
	removed, err := s.deleteGalleryImage(ctx, full, thumb)
	if err != nil {
		metrics.ContentWrites.WithLabelValues("delete_image", "error").Inc()
		return false, err
	}
	metrics.ContentWrites.WithLabelValues("delete_image", "ok").Inc()
	if removed {
		s.publish(EventImageDeleted, map[string]string{"full": full})
	}
	return removed, nil
}

func (s *Service) deleteGalleryImage(ctx context.Context, full, thumb string) (bool, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}

	removed := false
	if sec := doc.Section(models.SectionGallery); sec != nil {
		for i, img := range sec.Images {
			if img.Full == full {
				sec.Images = append(sec.Images[:i:i], sec.Images[i+1:]...)
				removed = true
				break
			}
		}
		if removed {
			if err := s.media.Remove(full, thumb); err != nil {
				return false, err
			}
		}
	}

	if err := s.store.Save(ctx, doc); err != nil {
		return false, err
	}
	return removed, nil
}

func (s *Service) publish(kind string, data map[string]string) {
	if s.notify != nil {
		s.notify.PublishContentEvent(kind, data)
	}
}

func applySite(site *models.SiteConfig, p SitePatch) {
	setIf(&site.Brand, p.Brand)
	setIf(&site.NavAlign, p.NavAlign)
	setIf(&site.ContactEmail, p.ContactEmail)
	setIf(&site.ContactPhone, p.ContactPhone)
	setIf(&site.WhatsApp, p.WhatsApp)
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
