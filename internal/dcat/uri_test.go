package dcat_test

import (
	"testing"

	"github.com/FAU-CDI/catalogproxy/internal/dcat"
	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
)

func TestType(t *testing.T) {
	t.Parallel()

	if want := impl.Label("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"); dcat.Type != want {
		t.Errorf("Type = %q, want %q", dcat.Type, want)
	}
}

func TestIsUnwantedFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format impl.Label
		want   bool
	}{
		{"http://publications.europa.eu/resource/authority/file-type/PDF", true},
		{"http://publications.europa.eu/resource/authority/file-type/DOCX", true},
		{"http://publications.europa.eu/resource/authority/file-type/HTML", true},
		{"http://publications.europa.eu/resource/authority/file-type/CSV", false},
		{"http://publications.europa.eu/resource/authority/file-type/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := dcat.IsUnwantedFormat(tt.format); got != tt.want {
			t.Errorf("IsUnwantedFormat(%q) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestIsPoliticalGeocoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location impl.Label
		want     bool
	}{
		{"http://dcat-ap.de/def/politicalGeocoding/districtKey/01001", true},
		{"http://dcat-ap.de/def/politicalGeocoding/", true},
		{"https://dcat-ap.de/def/politicalGeocoding/districtKey/01001", false},
		{"_:b0", false},
	}
	for _, tt := range tests {
		if got := dcat.IsPoliticalGeocoding(tt.location); got != tt.want {
			t.Errorf("IsPoliticalGeocoding(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}
