package entity

// PdfLink is an anchor of the cause list page that points to a PDF.
// Judge is the anchor text; it is assumed to name the judge or bench.
type PdfLink struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Judge string `json:"judge"`
}
