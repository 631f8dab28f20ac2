// Package dcat holds the DCAT-AP vocabulary used when filtering catalogs.
package dcat

import (
	"slices"
	"strings"

	"github.com/FAU-CDI/catalogproxy/internal/triplestore/impl"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
)

// cspell:words DCAT dcat locn hydra

// Namespaces used by catalogs.
const (
	DCAT  = "http://www.w3.org/ns/dcat#"
	DCT   = "http://purl.org/dc/terms/"
	LOCN  = "http://www.w3.org/ns/locn#"
	Hydra = "http://www.w3.org/ns/hydra/core#"
	RDF   = rdf.NS
)

// Type is the rdf:type predicate
var Type = impl.Label(quad.IRI(rdf.Type).Full())

// Classes
const (
	Dataset         impl.Label = DCAT + "Dataset"
	Distribution    impl.Label = DCAT + "Distribution"
	Location        impl.Label = DCT + "Location"
	PagedCollection impl.Label = Hydra + "PagedCollection"
)

// Predicates
const (
	DatasetOf       impl.Label = DCAT + "dataset"      // catalog -> dataset
	DistributionOf  impl.Label = DCAT + "distribution" // dataset -> distribution
	AccessURL       impl.Label = DCAT + "accessURL"
	DownloadURL     impl.Label = DCAT + "downloadURL"
	Format          impl.Label = DCT + "format"
	DatasetType     impl.Label = DCT + "type" // classification of a dataset, see Collection
	License         impl.Label = DCT + "license"
	Rights          impl.Label = DCT + "rights"
	AccessRights    impl.Label = DCT + "accessRights"
	Geometry        impl.Label = LOCN + "geometry"
	HydraFirstPage  impl.Label = Hydra + "firstPage"
	HydraLastPage   impl.Label = Hydra + "lastPage"
	HydraNextPage   impl.Label = Hydra + "nextPage"
	HydraPrevPage   impl.Label = Hydra + "previousPage"
	HydraTotalItems impl.Label = Hydra + "totalItems"
)

// Collection marks a dataset that aggregates other datasets.
const Collection impl.Label = "http://dcat-ap.de/def/datasetTypes/collection"

// PoliticalGeocoding is the namespace of named administrative locations.
const PoliticalGeocoding = "http://dcat-ap.de/def/politicalGeocoding/"

// CatalogResource is the final path segment of a catalog document.
const CatalogResource = "catalog.xml"

// FileType is the namespace of the file-type authority table.
const FileType = "http://publications.europa.eu/resource/authority/file-type/"

// UnwantedFormats are distribution formats that do not count as published data.
var UnwantedFormats = []impl.Label{
	FileType + "PDF",
	FileType + "DOC",
	FileType + "DOCX",
	FileType + "HTML",
}

// IsUnwantedFormat checks if format is one of [UnwantedFormats].
func IsUnwantedFormat(format impl.Label) bool {
	return slices.Contains(UnwantedFormats, format)
}

// IsPoliticalGeocoding checks if location names an administrative area.
func IsPoliticalGeocoding(location impl.Label) bool {
	return strings.HasPrefix(string(location), PoliticalGeocoding)
}

// Prefixes maps well-known namespaces to the prefixes used when serializing.
var Prefixes = map[string]string{
	RDF:   "rdf",
	DCAT:  "dcat",
	DCT:   "dct",
	LOCN:  "locn",
	Hydra: "hydra",

	"http://xmlns.com/foaf/0.1/":                    "foaf",
	"http://www.w3.org/2006/vcard/ns#":              "vcard",
	"http://www.w3.org/2001/XMLSchema#":             "xsd",
	"http://www.w3.org/ns/adms#":                    "adms",
	"http://dcat-ap.de/def/dcatde/":                 "dcatde",
	"http://www.w3.org/2004/02/skos/core#":          "skos",
	"http://www.w3.org/ns/odrl/2/":                  "odrl",
	"http://schema.org/":                            "schema",
	"http://www.w3.org/2000/01/rdf-schema#":         "rdfs",
	"http://www.w3.org/2002/07/owl#":                "owl",
	"http://spdx.org/rdf/terms#":                    "spdx",
	"http://www.w3.org/ns/prov#":                    "prov",
	"http://purl.org/dc/elements/1.1/":              "dc",
	"http://www.w3.org/2011/content#":               "cnt",
	"http://www.w3.org/ns/dqv#":                     "dqv",
	"http://data.europa.eu/r5r/":                    "dcatap",
	"http://www.w3.org/ns/shacl#":                   "sh",
	"http://www.opengis.net/ont/geosparql#":         "gsp",
	"http://publications.europa.eu/ontology/euvoc#": "euvoc",
}
