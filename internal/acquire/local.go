package acquire

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/content-strategist/internal/types"
)

// textExtensions are treated as profile text when scanning the local
// influencer directory.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// imageExtensions are collected as image references during a local scan.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// FromLocalDir assembles profile content from a local directory: every text
// file's contents concatenated (each prefixed with its filename) and every
// image file collected as a local reference. A missing directory or an empty
// scan is a warning, not a failure; the result is empty but valid.
func FromLocalDir(dir string) types.AcquisitionResult {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("local influencer directory unavailable: %v", err)
		return types.AcquisitionResult{Succeeded: true}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var parts []string
	var images []string
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		full := filepath.Join(dir, name)
		switch {
		case textExtensions[ext]:
			data, err := os.ReadFile(full)
			if err != nil {
				log.Printf("skipping unreadable local file %s: %v", full, err)
				continue
			}
			parts = append(parts, fmt.Sprintf("【%s】\n%s", name, strings.TrimSpace(string(data))))
		case imageExtensions[ext]:
			images = append(images, full)
		}
	}

	if len(parts) == 0 && len(images) == 0 {
		log.Printf("local influencer directory %s has no usable files", dir)
	}

	return types.AcquisitionResult{
		Document:  strings.Join(parts, "\n\n"),
		ImageRefs: images,
		Succeeded: true,
	}
}
