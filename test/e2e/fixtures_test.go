package e2e

import (
	"strings"
	"testing"

	"github.com/hyperjump/votesathi/internal/extract"
)

func TestWriteMinimalFile_Extractable(t *testing.T) {
	ex := extract.NewExtractor(0)
	const text = "indelible ink left forefinger"
	for _, ext := range SupportedFileExtensions {
		t.Run(ext, func(t *testing.T) {
			if !extract.Supported(ext) {
				t.Fatalf("extension %s not supported by extractor", ext)
			}
			data, err := WriteMinimalFile(ext, "Indelible ink", text)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ex.ExtractBytes(data, ext)
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if !strings.Contains(got, text) {
				t.Errorf("extracted %q, want it to contain %q", got, text)
			}
		})
	}
}

func TestBuildCorpus_SignaturesAreUnique(t *testing.T) {
	c := BuildCorpus()
	if len(c.Files) == 0 || len(c.Files) != len(c.TestCases) {
		t.Fatalf("files=%d cases=%d", len(c.Files), len(c.TestCases))
	}
	seen := make(map[string]bool)
	for _, f := range c.Files {
		if seen[f.Name] {
			t.Errorf("duplicate file name %q", f.Name)
		}
		seen[f.Name] = true
	}
	for _, tc := range c.TestCases {
		if !seen[tc.ExpectedFile] {
			t.Errorf("case %q expects unknown file %q", tc.Query, tc.ExpectedFile)
		}
	}
}
