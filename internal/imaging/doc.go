// Package imaging decodes uploads and prepares them for recognition.
//
// Decode identifies the format from the bytes themselves (PNG, JPEG, GIF and
// BMP are registered) and reports dimensions. The declared MIME type of an
// upload plays no part here. The header is checked against a pixel limit
// (DefaultMaxPixels unless DecodeLimited is given another) before any pixel
// data is allocated.
//
// # Preprocessing
//
// Preprocess applies optional clean-up steps in a fixed order:
//   - AutoInvert: invert images whose mean CIE L* lightness is below 50%, so
//     light text on dark backgrounds reads as dark on light
//   - Grayscale
//   - Scale: Lanczos resize; values above 1 help with small print
//   - Threshold: binarize at the given level
//
// With every step disabled the original bytes go to the engine unchanged.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package imaging
