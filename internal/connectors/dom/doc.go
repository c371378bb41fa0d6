// Package dom reads course material out of a rendered course page.
//
// It is the fallback path when the REST API cannot be used: no course id
// resolves from the location, or every API source came back empty.
//
// # Page Providers
//
// A driven.PageProvider supplies the page markup:
//
//   - FilePage reads a saved HTML snapshot from disk
//   - LivePage fetches the page with colly, sending the session cookie
//
// # Adapters
//
//   - PageScanAdapter runs the shared selector table over the page
//     (page_scan, pdf_embedded) plus the PDF and file URL regex sweeps
//   - Adapter is the comprehensive scan used when everything else
//     found nothing (dom_comprehensive), bounded by a result cap
//
// Collector turns page-type specific markup (assignment lists, module
// lists, grades tables, ...) into domain.ExtractedContent.
//
// Hidden elements are skipped by every scan.
package dom
