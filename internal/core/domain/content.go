package domain

const unknownDescription = "Unknown"

// ContentType is the coarse category of a downloadable resource.
type ContentType string

// Available content types.
const (
	ContentPDF     ContentType = "pdf"
	ContentDoc     ContentType = "doc"
	ContentSlide   ContentType = "slide"
	ContentSheet   ContentType = "sheet"
	ContentText    ContentType = "text"
	ContentImage   ContentType = "image"
	ContentMedia   ContentType = "media"
	ContentArchive ContentType = "archive"
	ContentCode    ContentType = "code"
	ContentUnknown ContentType = "unknown"
)

// AllContentTypes returns every content type in report order.
func AllContentTypes() []ContentType {
	return []ContentType{
		ContentPDF, ContentDoc, ContentSlide, ContentSheet, ContentText,
		ContentImage, ContentMedia, ContentArchive, ContentCode, ContentUnknown,
	}
}

// IsValid returns true if the content type is recognised.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentPDF, ContentDoc, ContentSlide, ContentSheet, ContentText,
		ContentImage, ContentMedia, ContentArchive, ContentCode, ContentUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c ContentType) String() string {
	return string(c)
}

// MIME returns a representative MIME type for the category.
func (c ContentType) MIME() string {
	switch c {
	case ContentPDF:
		return "application/pdf"
	case ContentDoc:
		return "application/msword"
	case ContentSlide:
		return "application/vnd.ms-powerpoint"
	case ContentSheet:
		return "application/vnd.ms-excel"
	case ContentText:
		return "text/plain"
	case ContentImage:
		return "image/*"
	case ContentMedia:
		return "video/*"
	case ContentArchive:
		return "application/zip"
	case ContentCode:
		return "text/x-source"
	default:
		return "application/octet-stream"
	}
}

// Description returns a human-readable label.
func (c ContentType) Description() string {
	switch c {
	case ContentPDF:
		return "PDF document"
	case ContentDoc:
		return "Word document"
	case ContentSlide:
		return "Presentation"
	case ContentSheet:
		return "Spreadsheet"
	case ContentText:
		return "Text file"
	case ContentImage:
		return "Image"
	case ContentMedia:
		return "Audio/video"
	case ContentArchive:
		return "Archive"
	case ContentCode:
		return "Source code"
	default:
		return unknownDescription
	}
}

// Source records which discovery path produced a ContentItem.
type Source string

// Discovery sources. The order of the groups mirrors aggregation precedence.
const (
	SourceAPI                Source = "api"
	SourceAssignment         Source = "assignment"
	SourceAssignmentEmbedded Source = "assignment_embedded"
	SourceModule             Source = "module"
	SourceModuleExternal     Source = "module_external"
	SourceDiscussion         Source = "discussion"
	SourceDiscussionReply    Source = "discussion_reply"
	SourcePageScan           Source = "page_scan"
	SourceHTMLContent        Source = "html_content"
	SourceHTMLImage          Source = "html_image"
	SourcePDFEmbedded        Source = "pdf_embedded"
	SourcePDFTextPattern     Source = "pdf_text_pattern"
	SourceCanvasFileEmbedded Source = "canvas_file_embedded"
	SourceDOMComprehensive   Source = "dom_comprehensive"
)

// AllSources returns every discovery source.
func AllSources() []Source {
	return []Source{
		SourceAPI, SourceAssignment, SourceAssignmentEmbedded, SourceModule,
		SourceModuleExternal, SourceDiscussion, SourceDiscussionReply, SourcePageScan,
		SourceHTMLContent, SourceHTMLImage, SourcePDFEmbedded, SourcePDFTextPattern,
		SourceCanvasFileEmbedded, SourceDOMComprehensive,
	}
}

// IsValid returns true if the source is recognised.
func (s Source) IsValid() bool {
	for _, known := range AllSources() {
		if s == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (s Source) String() string {
	return string(s)
}

// ContentItem is a downloadable resource discovered in a course.
// URL and Name together form its identity.
type ContentItem struct {
	// URL is the absolute address of the resource.
	URL string `json:"url"`

	// Name is the sanitised display filename.
	Name string `json:"name"`

	// ContentType is the category derived from the URL or MIME type.
	ContentType ContentType `json:"content_type"`

	// Source is the discovery path that produced the item.
	Source Source `json:"source"`

	// Folder is raw folder metadata from the listing: a folder id
	// or an explicit logical path. Empty when the source carries none.
	Folder string `json:"folder,omitempty"`

	// FolderPath is the logical bucket assigned during aggregation.
	FolderPath string `json:"folder_path"`

	// SizeBytes is the reported size. Zero means unknown.
	SizeBytes int64 `json:"size_bytes"`

	// MIMEType is the type reported by the listing API, if any.
	MIMEType string `json:"mime_type,omitempty"`

	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`

	PageTitle      string `json:"page_title,omitempty"`
	AssignmentName string `json:"assignment_name,omitempty"`
	ModuleName     string `json:"module_name,omitempty"`
	ElementType    string `json:"element_type,omitempty"`

	// DownloadPath is where the downloader saved the file.
	DownloadPath string `json:"download_path,omitempty"`
}

// Key returns the deduplication key of the item.
func (c ContentItem) Key() string {
	return c.URL + "_" + c.Name
}
