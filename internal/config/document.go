package config

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/jdharms/jumpking-autosplitter/internal/split"
)

// Document is the persisted autosplitter configuration: the split list,
// the toggles and the fingerprint recorded when it was saved.
type Document struct {
	XMLName  xml.Name      `xml:"AutoSplitterSettings"`
	Splits   *split.Splits `xml:"Splits"`
	Settings *SettingsNode `xml:"Settings"`
	Hash     *uint32       `xml:"Hash,omitempty"`
}

// NewDocument builds a document for the given list and settings and stamps
// it with their fingerprint
func NewDocument(list *split.List, settings Settings) *Document {
	hash := Fingerprint(list, settings)
	return &Document{
		Splits:   list.Splits(),
		Settings: settings.Node(),
		Hash:     &hash,
	}
}

// Fingerprint combines the split list hash with the settings hash
func Fingerprint(list *split.List, settings Settings) uint32 {
	return list.Hash() ^ settings.Hash()
}

// ParseDocument decodes a document. An empty input yields an empty document.
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration document: %w", err)
	}
	return doc, nil
}

// Encode renders the document as indented XML with a header
func (d *Document) Encode() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration document: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
