// Package ui provides semantic text formatting for vctool output.
//
// Formatters render in color when the terminal supports it. When NO_COLOR
// is set or color is unavailable, some fall back to text decorations:
//
//	ui.Code.Sprint("vctool keygen")   // `vctool keygen`
//	ui.Highlight.Sprint("velo-v1")    // 'velo-v1'
//	ui.Muted.Sprint("not encrypted")  // (not encrypted)
//
// Path, Flag, Success, Error, Warning, Info and Key are left undecorated.
//
// Detail, Hex and Fingerprint lay out the inspect report.
package ui
