package helper

import (
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"mime/multipart"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	uploadBaseDir = "uploads"
	maxImageWidth = 1280
	webpQuality   = 75
)

// SaveImageAsWebp meng-compress gambar bukti/foto ke webp dan menyimpannya di
// disk lokal. Mengembalikan path publik (dipakai apa adanya oleh pemanggil,
// core hanya menyimpan referensinya).
func SaveImageAsWebp(folder string, fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("gagal membuka file gambar: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("gagal decode gambar: %w", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	dir := filepath.Join(uploadBaseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("gagal membuat folder upload: %w", err)
	}

	filename := generateUniqueFilename(fileHeader.Filename) + ".webp"
	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("gagal membuat file: %w", err)
	}
	defer out.Close()

	if err := webp.Encode(out, img, &webp.Options{Quality: webpQuality}); err != nil {
		return "", fmt.Errorf("gagal encode webp: %w", err)
	}

	return "/" + filepath.ToSlash(fullPath), nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func generateUniqueFilename(originalFilename string) string {
	timestamp := time.Now().Format("20060102")
	safe := unsafeFilenameChars.ReplaceAllString(originalFilename, "_")
	ext := filepath.Ext(safe)
	return fmt.Sprintf("%s-%s-%s", timestamp, uuid.New().String(), safe[:len(safe)-len(ext)])
}
