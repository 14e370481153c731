// Package pdf implements driven.DocumentParser for PDF files.
//
// Two extraction engines are provided. The native engine reads the PDF
// directly with github.com/ledongthuc/pdf and needs no external tools.
// The poppler engine shells out to pdftotext from poppler-utils, which
// handles some malformed or unusual PDFs the native reader cannot.
// Neither engine is reliably accurate across all PDFs, so callers pick
// one per call and may retry degenerate pages with the other.
package pdf
