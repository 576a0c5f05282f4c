package model

import (
	"encoding/base64"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// MaxImagesPerCall is the number of image references a single invocation consumes.
// Extra references are silently dropped.
const MaxImagesPerCall = 3

// supportedImageFormats maps file extensions to the media subtype the backend
// expects in data URLs. HEIC/HEIF require a vision-capable model tier.
var supportedImageFormats = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
	".bmp":  "bmp",
	".dib":  "bmp",
	".tiff": "tiff",
	".tif":  "tiff",
	".ico":  "ico",
	".icns": "icns",
	".sgi":  "sgi",
	".j2c":  "jp2",
	".j2k":  "jp2",
	".jp2":  "jp2",
	".jpc":  "jp2",
	".jpf":  "jp2",
	".jpx":  "jp2",
	".heic": "heic",
	".heif": "heif",
}

// rawImage is a loaded image file ready for provider-specific encoding.
type rawImage struct {
	Subtype string // media subtype, e.g. "jpeg"
	Bytes   []byte
}

// DataURL renders the image as a base64 data: URL accepted by the chat API.
func (r rawImage) DataURL() string {
	return "data:image/" + r.Subtype + ";base64," + base64.StdEncoding.EncodeToString(r.Bytes)
}

// readImages loads up to MaxImagesPerCall local image files. Unsupported
// extensions and unreadable files are skipped with a warning; a bad image
// never fails the invocation.
func readImages(refs []string) []rawImage {
	var images []rawImage
	for _, ref := range refs {
		if len(images) >= MaxImagesPerCall {
			break
		}
		ext := strings.ToLower(filepath.Ext(ref))
		subtype, ok := supportedImageFormats[ext]
		if !ok {
			log.Printf("skipping unsupported image format %q: %s", ext, ref)
			continue
		}
		data, err := os.ReadFile(ref)
		if err != nil {
			log.Printf("skipping unreadable image %s: %v", ref, err)
			continue
		}
		images = append(images, rawImage{Subtype: subtype, Bytes: data})
	}
	return images
}

// localImageRefs filters refs down to ones that look like local files.
// Remote URLs collected during scraping are skipped; only downloaded copies
// can be encoded into the payload.
func localImageRefs(refs []string) []string {
	var local []string
	for _, ref := range refs {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			continue
		}
		local = append(local, ref)
	}
	return local
}
