package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/starford/vitrine/internal/apperr"
	"github.com/starford/vitrine/internal/contentservice"
	"github.com/starford/vitrine/internal/models"
)

const (
	maxBodyBytes   = 50 << 20 // 50 MB
	maxMemoryBytes = 32 << 20

	galleryField = "gallery_images"
)

// Per-section form key prefixes, e.g. title_home.
const (
	prefixTitle    = "title_"
	prefixSubtitle = "subtitle_"
	prefixBg       = "bg_"
	prefixImage    = "image_"
)

// parsedSave is a decoded save form. Close releases the opened uploads.
type parsedSave struct {
	req   contentservice.SaveRequest
	files []io.Closer
}

func (p *parsedSave) Close() {
	for _, f := range p.files {
		_ = f.Close()
	}
}

// parseSaveForm decodes a save submission. Multipart and urlencoded bodies are
// both accepted; a section-scoped key naming an unknown section fails with
// apperr.ErrUnknownSection.
func parseSaveForm(w http.ResponseWriter, r *http.Request) (*parsedSave, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	p := &parsedSave{req: contentservice.SaveRequest{
		Sections: make(map[models.SectionID]contentservice.SectionUpdate),
	}}

	site := &p.req.Site
	for key, vals := range r.PostForm {
		if len(vals) == 0 {
			continue
		}
		v := vals[0]
		switch key {
		case "brand":
			site.Brand = &v
			continue
		case "nav_align":
			site.NavAlign = &v
			continue
		case "contact_email":
			site.ContactEmail = &v
			continue
		case "contact_phone":
			site.ContactPhone = &v
			continue
		case "whatsapp":
			site.WhatsApp = &v
			continue
		case galleryField:
			// Empty file input.
			continue
		}

		prefix, id, ok := sectionKey(key)
		if !ok {
			continue
		}
		if !id.IsKnown() {
			return nil, fmt.Errorf("%w: %q in field %s", apperr.ErrUnknownSection, id, key)
		}
		upd := p.req.Sections[id]
		switch prefix {
		case prefixTitle:
			upd.Title = &v
		case prefixSubtitle:
			upd.Subtitle = &v
		case prefixBg:
			upd.Bg = &v
		}
		p.req.Sections[id] = upd
	}

	if r.MultipartForm == nil {
		return p, nil
	}

	for key, headers := range r.MultipartForm.File {
		if key == galleryField {
			for _, fh := range headers {
				up, err := p.open(fh)
				if err != nil {
					p.Close()
					return nil, err
				}
				p.req.Gallery = append(p.req.Gallery, up)
			}
			continue
		}

		prefix, id, ok := sectionKey(key)
		if !ok || prefix != prefixImage {
			continue
		}
		if !id.IsKnown() {
			p.Close()
			return nil, fmt.Errorf("%w: %q in field %s", apperr.ErrUnknownSection, id, key)
		}
		if id == models.SectionGallery || len(headers) == 0 {
			continue
		}
		up, err := p.open(headers[0])
		if err != nil {
			p.Close()
			return nil, err
		}
		upd := p.req.Sections[id]
		upd.Image = &up
		p.req.Sections[id] = upd
	}

	return p, nil
}

func (p *parsedSave) open(fh *multipart.FileHeader) (contentservice.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return contentservice.Upload{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	p.files = append(p.files, f)
	return contentservice.Upload{Filename: fh.Filename, Content: f}, nil
}

// sectionKey splits a section-scoped form key into its prefix and section id.
func sectionKey(key string) (string, models.SectionID, bool) {
	for _, prefix := range []string{prefixTitle, prefixSubtitle, prefixBg, prefixImage} {
		if id, ok := strings.CutPrefix(key, prefix); ok {
			return prefix, models.SectionID(id), true
		}
	}
	return "", "", false
}
