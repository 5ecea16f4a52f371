package pubtheme

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/eringen/pubtheme/content"
)

const (
	maxImageWidth = 1200 // widest displayed size, the post thumbnail
	jpegQuality   = 82
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processImage decodes an image from src, scales it down to maxWidth when
// wider and encodes it as JPEG. The returned attachment carries the pixel
// dimensions and a slug filename; the caller assigns parent and status.
func processImage(src io.Reader, originalName string, maxWidth int) (content.Post, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return content.Post{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return content.Post{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	base := slugifyFilename(originalName)
	if base == "" {
		base = "image"
	}
	return content.Post{
		Type:     content.TypeAttachment,
		Status:   content.StatusInherit,
		Title:    strings.TrimSuffix(originalName, filepath.Ext(originalName)),
		Slug:     base,
		MimeType: "image/jpeg",
		File:     base + ".jpg",
		Width:    w,
		Height:   h,
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	return Slugify(strings.TrimSuffix(name, ext))
}

// ensureUniqueFilename appends a counter until att.File is free both on
// disk and in the store.
func (a *App) ensureUniqueFilename(ctx context.Context, att *content.Post) error {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	base := strings.TrimSuffix(att.File, ".jpg")
	candidate := att.File
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(dir, candidate))
		taken, err := a.Store.AttachmentFileExists(ctx, candidate)
		if err != nil {
			return err
		}
		if statErr != nil && !taken {
			break
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	att.File = candidate
	att.Slug = strings.TrimSuffix(candidate, ".jpg")
	return nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}
	var parentID int64
	if v := c.FormValue("parent_id"); v != "" {
		if parentID, err = strconv.ParseInt(v, 10, 64); err != nil || parentID < 0 {
			return c.String(http.StatusBadRequest, "Invalid parent")
		}
	}
	menuOrder, _ := strconv.Atoi(c.FormValue("menu_order"))

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	att, data, err := processImage(src, file.Filename, maxImageWidth)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	att.ParentID = parentID
	att.MenuOrder = menuOrder
	att.Excerpt = strings.TrimSpace(c.FormValue("caption"))
	if title := strings.TrimSpace(c.FormValue("title")); title != "" {
		att.Title = title
	}

	ctx := c.Request().Context()
	if err := a.ensureUniqueFilename(ctx, &att); err != nil {
		return err
	}

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, att.File), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Store.SavePost(ctx, &att); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("id", att.ID).Str("file", att.File).Int64("parent", parentID).Msg("image uploaded")
	a.Cache.Invalidate()
	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid id")
	}
	ctx := c.Request().Context()
	att, err := a.Store.Post(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	if att.Type != content.TypeAttachment {
		return c.String(http.StatusBadRequest, "Not an attachment")
	}

	path := filepath.Join(a.staticDir, uploadsSubdir, filepath.Base(att.File))
	_ = os.Remove(path) // ignore error if file already gone

	if err := a.Store.DeletePost(ctx, id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Store.Attachments(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(images, CsrfToken(c)))
}
