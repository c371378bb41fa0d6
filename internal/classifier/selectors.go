package classifier

// Group names a set of selectors in the shared table.
type Group string

// Selector groups, in scan order.
const (
	// GroupFiles targets platform file links.
	GroupFiles Group = "files"
	// GroupDocuments targets any anchor whose URL classifies as a file.
	GroupDocuments Group = "documents"
	// GroupEmbeds targets frames and embedded objects.
	GroupEmbeds Group = "embeds"
	// GroupAttachments targets attachment widgets found on rendered pages.
	GroupAttachments Group = "attachments"
)

// Selector is one CSS query of the shared table.
type Selector struct {
	// Query is the CSS selector.
	Query string

	// Attr holds the URL on the matched element.
	Attr string

	// RequireFile keeps only matches whose URL passes IsDownloadableFile.
	RequireFile bool

	// ElementType labels the provenance of matches.
	ElementType string
}

var selectorTable = map[Group][]Selector{
	GroupFiles: {
		{Query: "a.instructure_file_link", Attr: "href", ElementType: "file_link"},
		{Query: "a[download]", Attr: "href", ElementType: "download_link"},
		{Query: `a[data-api-endpoint*="files"]`, Attr: "href", ElementType: "api_link"},
		{Query: `a[href*="/files/"]`, Attr: "href", ElementType: "file_link"},
		{Query: `a[href*="verifier="]`, Attr: "href", ElementType: "file_link"},
	},
	GroupDocuments: {
		{Query: "a[href]", Attr: "href", RequireFile: true, ElementType: "link"},
	},
	GroupEmbeds: {
		{Query: "iframe[src]", Attr: "src", RequireFile: true, ElementType: "iframe"},
		{Query: "embed[src]", Attr: "src", RequireFile: true, ElementType: "embed"},
		{Query: "object[data]", Attr: "data", RequireFile: true, ElementType: "object"},
	},
	GroupAttachments: {
		{Query: ".attachment a[href]", Attr: "href", ElementType: "attachment"},
		{Query: "a[data-filename]", Attr: "href", ElementType: "attachment"},
		{Query: ".ic-Attachment a[href]", Attr: "href", ElementType: "attachment"},
	},
}

// Selectors returns the selectors of the given groups, in order.
func Selectors(groups ...Group) []Selector {
	var out []Selector
	for _, g := range groups {
		out = append(out, selectorTable[g]...)
	}
	return out
}

// MinerGroups are the groups scanned when mining rich-text fields.
func MinerGroups() []Group {
	return []Group{GroupFiles, GroupDocuments, GroupEmbeds}
}

// PageGroups are the groups scanned over a full rendered page.
func PageGroups() []Group {
	return []Group{GroupFiles, GroupAttachments, GroupDocuments, GroupEmbeds}
}
