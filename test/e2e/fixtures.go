package e2e

import (
	"archive/zip"
	"bytes"

	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions are the knowledge formats generated by the e2e tests.
// PDF is left out: there is no minimal PDF with extractable text.
var SupportedFileExtensions = []string{".txt", ".md", ".docx", ".xlsx"}

// WriteMinimalFile returns the bytes of a minimal file of type ext holding
// text. Plain formats return the text itself.
func WriteMinimalFile(ext, title, text string) ([]byte, error) {
	switch ext {
	case ".md":
		return []byte("# " + title + "\n\n" + text + "\n"), nil
	case ".docx":
		return minimalDocx(text)
	case ".xlsx":
		return minimalXlsx(title, text)
	default:
		return []byte(text), nil
	}
}

func minimalDocx(text string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func minimalXlsx(title, text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range map[string]string{"A1": "Topic", "B1": "Details", "A2": title, "B2": text} {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
