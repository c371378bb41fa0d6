// Package export renders extracted course content.
//
// GenerateReport produces the plain-text course report. Sections appear in
// a fixed order and only when they have data; missing fields inside a
// section render as "N/A" or "Unknown" so the layout never shifts.
//
// TextRecords flattens the same content into one record per text unit for
// the relay, and UploadRecords wraps them in the relay wire shape.
package export
