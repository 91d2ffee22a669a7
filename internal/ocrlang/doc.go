// Package ocrlang normalizes OCR language specs such as "fra+eng".
//
// A spec is a '+'-joined list of Tesseract language codes. Operators may type
// ISO 639-1 codes, bibliographic ISO 639-2 codes, or English names; Normalize
// maps them to the codes the orchestrator's OCR stage expects.
package ocrlang
