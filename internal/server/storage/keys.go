package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewStorageKey produces a date-bucketed object key for an upload,
// keeping the original extension so content sniffing downstream still
// works: assets/2026/08/28/1a2b3c4d5e6f.jpg
func NewStorageKey(originalFilename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("assets/%04d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), id, ext)
}
