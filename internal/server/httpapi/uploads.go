package httpapi

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	fieldAvatar     = "avatar"
	fieldCoverImage = "coverImage"
)

// stageImages saves the avatar and coverImage parts of a multipart request
// under the upload dir with random names. The returned func removes whatever
// is still on disk and must always be called.
func (h *handler) stageImages(c *fiber.Ctx) (services.ImageFiles, func(), error) {
	var files services.ImageFiles
	cleanup := func() {
		if err := filex.Remove(files.AvatarPath, files.CoverImagePath); err != nil {
			h.logger.Warn(c.UserContext(), "staged files not removed", "error", err)
		}
	}

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return files, cleanup, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return files, cleanup, fmt.Errorf("malformed multipart form: %w", common.ErrorBadRequest)
	}

	slots := []struct {
		field string
		dst   *string
	}{
		{fieldAvatar, &files.AvatarPath},
		{fieldCoverImage, &files.CoverImagePath},
	}
	for _, s := range slots {
		parts := form.File[s.field]
		if len(parts) == 0 {
			continue
		}
		fh := parts[0]
		path := filepath.Join(h.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
		if err := c.SaveFile(fh, path); err != nil {
			cleanup()
			h.logger.Error(c.UserContext(), "staging upload", "field", s.field, "error", err)
			return services.ImageFiles{}, func() {}, fmt.Errorf("stage %s: %w", s.field, common.ErrorInternal)
		}
		*s.dst = path
	}

	return files, cleanup, nil
}
