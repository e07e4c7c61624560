// Package forms serves static form metadata and renders filled records.
//
// Form codes are case-insensitive and normalized to upper case.
package forms
