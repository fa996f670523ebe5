// Package extractor matches inline annotation markers in single lines of
// source text.
//
// A marker line is optional indentation, a comment opener (//, /*, *,
// <!--, #), one of the five keywords (case-insensitive), an optional
// (author) group, an optional colon, then free text:
//
//	// TODO: fix this
//	  # FIXME(alice): refactor
//	<!-- NOTE: generated file -->
//
// Extraction is pure and cannot fail; a line either carries exactly one
// annotation (first match wins) or none. Both the bulk scanners and the
// incremental line patcher go through this package, which is what makes
// a patched index provably equal to a full rescan.
package extractor
