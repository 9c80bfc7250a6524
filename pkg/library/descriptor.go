package library

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/libmirror/pkg/errors"
)

// DefaultCategory is the category written when none is configured.
const DefaultCategory = "Android"

// Categories lists the category labels understood by downstream tooling.
var Categories = []string{"Advertising", "Analytics", "Android", "SocialMedia", "Cloud", "Utilities"}

// Descriptor is the content of a library.xml sidecar file.
type Descriptor struct {
	XMLName     xml.Name `xml:"library" json:"-"`
	Name        string   `xml:"name" json:"name"`
	Category    string   `xml:"category" json:"category"`
	Version     string   `xml:"version" json:"version"`
	ReleaseDate string   `xml:"releasedate" json:"release_date"` // dd.MM.yyyy
	Comment     string   `xml:"comment" json:"comment"`
}

const descriptorTemplate = `<?xml version="1.0"?>
<library>
    <!-- library name -->
    <name>%s</name>

    <!-- Advertising, Analytics, Android, SocialMedia, Cloud, Utilities -->
    <category>%s</category>

    <!-- optional: version string -->
    <version>%s</version>

    <!-- optional: date (format: dd.MM.yyyy  example: 21.05.2017) -->
    <releasedate>%s</releasedate>

    <!-- optional: comment -->
    <comment>%s</comment>
</library>
`

// Render returns the descriptor document. The layout, including the
// comments addressed to human editors, is fixed; field values are escaped.
func (d Descriptor) Render() []byte {
	var buf bytes.Buffer
	buf.Grow(len(descriptorTemplate) + 64)
	fields := []string{d.Name, d.Category, d.Version, d.ReleaseDate, d.Comment}

	parts := strings.Split(descriptorTemplate, "%s")
	for i, part := range parts {
		buf.WriteString(part)
		if i < len(fields) {
			xml.EscapeText(&buf, []byte(fields[i]))
		}
	}
	return buf.Bytes()
}

// WriteDescriptor writes d to path unless path already exists. It reports
// whether the file was written. An existing descriptor is never modified.
func WriteDescriptor(path string, d Descriptor) (bool, error) {
	exists, err := Exists(path)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(d.Render())
		return err
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReadDescriptor parses the descriptor at path.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "descriptor not found")
		}
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read descriptor")
	}
	return ParseDescriptor(data)
}

// ParseDescriptor parses a descriptor document.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse descriptor")
	}
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	d.Version = strings.TrimSpace(d.Version)
	d.ReleaseDate = strings.TrimSpace(d.ReleaseDate)
	d.Comment = strings.TrimSpace(d.Comment)
	return &d, nil
}
