// Package extract turns PDF research papers into structured document data.
//
// The Extractor type runs the full structural pipeline over one file:
//   - Parsing the text layer and image resources per page
//   - Assembling reading-order text (column-aware, via the layout package)
//   - Heuristic title, author, DOI and keyword detection
//   - Section splitting on recognized heading lines
//   - Geometric table grid detection
//   - Figure enumeration with external image reference paths
//   - Bibliography entry parsing
//
// Parsing the file is all-or-nothing; the later stages degrade independently
// and record their outcome in the result's Stages.
package extract
