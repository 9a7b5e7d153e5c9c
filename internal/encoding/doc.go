// Package encoding turns an ordered corpus into part files.
//
// The pipeline has three layers:
//   - PhotoRenderer turns one photo into a letterboxed, captioned frame file.
//   - BatchEncoder holds a window of at most W frames and flushes it through
//     the Backend into one intermediate segment.
//   - PartBuilder folds windows into a part until the corpus is exhausted or
//     the clip ceiling is reached, then concatenates the segments into a file
//     named by package partname. Driver calls BuildPart until nothing remains.
//
// Failures are tiered. A photo that cannot be rendered is skipped with a
// warning, a window that cannot be encoded is dropped with an error log, and a
// part that produces no segment stops the run while keeping earlier parts.
// Cancellation is observed between windows, never inside an encode.
package encoding
