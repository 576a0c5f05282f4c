package acquire

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slideNamePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// ReadBriefing extracts all text runs from a product-briefing PPTX, slide by
// slide in deck order. On a missing file or a decode failure it returns a
// typed error string instead of an error.
func ReadBriefing(pptPath string) string {
	if _, err := os.Stat(pptPath); err != nil {
		return fmt.Sprintf("%s文件 '%s' 不存在", PrefixMissingFile, pptPath)
	}

	reader, err := zip.OpenReader(pptPath)
	if err != nil {
		return fmt.Sprintf("%s: %v", PrefixBriefingRead, err)
	}
	defer func() { _ = reader.Close() }()

	type slide struct {
		number int
		file   *zip.File
	}
	var slides []slide
	for _, f := range reader.File {
		m := slideNamePattern.FindStringSubmatch(path.Clean(f.Name))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{number: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var all []string
	for _, s := range slides {
		texts, err := slideText(s.file)
		if err != nil {
			return fmt.Sprintf("%s: %v", PrefixBriefingRead, err)
		}
		all = append(all, texts...)
	}
	return strings.Join(all, "\n")
}

// slideText pulls the <a:t> text runs out of one slide's XML.
func slideText(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	var texts []string
	decoder := xml.NewDecoder(rc)
	inTextRun := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inTextRun = false
			}
		case xml.CharData:
			if inTextRun {
				if text := strings.TrimSpace(string(t)); text != "" {
					texts = append(texts, text)
				}
			}
		}
	}
	return texts, nil
}

// ReadTextFile reads a UTF-8 text file, returning a typed error string on failure.
func ReadTextFile(filePath string) string {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Sprintf("%s: %v", PrefixFileRead, err)
	}
	return string(data)
}
