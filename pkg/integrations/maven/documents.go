package maven

import (
	"bytes"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/matzehuels/libmirror/pkg/errors"
)

// DefaultPackaging is used when a POM does not declare <packaging>.
const DefaultPackaging = "jar"

// MasterIndex is the repository root index (master-index.xml): a <metadata>
// element whose children are named after the published groups.
//
//	<metadata>
//	  <androidx.core/>
//	  <com.google.android.material/>
//	</metadata>
type MasterIndex struct {
	Groups []string // Group ids in document order
}

// GroupIndex is a group-level index (group-index.xml). The root element is
// named after the group; every child is named after an artifact and carries
// its published versions in a comma-separated attribute.
//
//	<androidx.core>
//	  <core versions="1.0.0,1.1.0-alpha01,1.1.0"/>
//	</androidx.core>
type GroupIndex struct {
	Group     string
	Libraries []Library // Artifacts in document order
}

// Library is one artifact listed by a group index, with its raw version list.
type Library struct {
	Group    string
	Name     string
	Versions string // Raw "versions" attribute, unfiltered
}

// POM holds the fields of a project descriptor that the mirror uses.
type POM struct {
	XMLName    xml.Name
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Packaging  string `xml:"packaging"`
	Name       string `xml:"name"`
}

// Packaging is the resolved file extension and display name of one version.
type Packaging struct {
	Extension   string // e.g. "jar", "aar"
	DisplayName string
}

// element captures an arbitrary XML element with its attributes and children.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func decode(data []byte, doc string, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "%s: empty document", doc)
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s: malformed XML", doc)
	}
	return nil
}

// ParseMasterIndex parses and validates a master-index.xml body.
func ParseMasterIndex(data []byte) (*MasterIndex, error) {
	var root element
	if err := decode(data, "master index", &root); err != nil {
		return nil, err
	}
	if root.XMLName.Local != "metadata" {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "master index: root element is <%s>, want <metadata>", root.XMLName.Local)
	}

	idx := &MasterIndex{Groups: make([]string, 0, len(root.Children))}
	for _, child := range root.Children {
		idx.Groups = append(idx.Groups, child.XMLName.Local)
	}
	return idx, nil
}

// ParseGroupIndex parses and validates a group-index.xml body for group.
func ParseGroupIndex(group string, data []byte) (*GroupIndex, error) {
	var root element
	if err := decode(data, "group index "+group, &root); err != nil {
		return nil, err
	}
	if root.XMLName.Local != group {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "group index %s: root element is <%s>", group, root.XMLName.Local)
	}

	idx := &GroupIndex{Group: group, Libraries: make([]Library, 0, len(root.Children))}
	for _, child := range root.Children {
		versions, ok := child.attr("versions")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "group index %s: <%s> has no versions attribute", group, child.XMLName.Local)
		}
		idx.Libraries = append(idx.Libraries, Library{
			Group:    group,
			Name:     child.XMLName.Local,
			Versions: versions,
		})
	}
	return idx, nil
}

// ParsePOM parses and validates a POM body.
func ParsePOM(data []byte) (*POM, error) {
	var pom POM
	if err := decode(data, "pom", &pom); err != nil {
		return nil, err
	}
	if pom.XMLName.Local != "project" {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "pom: root element is <%s>, want <project>", pom.XMLName.Local)
	}
	return &pom, nil
}

// Resolve returns the packaging for artifact, applying the defaults: "jar"
// when <packaging> is absent and the artifact name when <name> is absent.
// A name that still contains an unresolved ${...} property reference is
// treated as absent.
func (p *POM) Resolve(artifact string) (Packaging, error) {
	ext := strings.TrimSpace(p.Packaging)
	if ext == "" {
		ext = DefaultPackaging
	}
	if err := errors.ValidateSegment("packaging", ext); err != nil {
		return Packaging{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "pom for %s", artifact)
	}

	name := strings.Join(strings.Fields(p.Name), " ")
	if name == "" || strings.Contains(name, "${") {
		name = artifact
	}
	return Packaging{Extension: ext, DisplayName: name}, nil
}
