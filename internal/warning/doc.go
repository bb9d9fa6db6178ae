// Package warning parses static-analysis warning logs into structured
// records and derives the comparison signatures used for baseline
// suppression.
//
// A log is a sequence of header lines of the form
//
//	path:line:column: warning: message
//
// each followed by zero or more continuation lines (notes, source snippets,
// fix-it hints) that belong to the preceding header. Continuation content is
// opaque: no line is ever rejected, and text before the first header is
// discarded.
//
// [Warning.ExactKey], [Warning.ContentSignature] and
// [Warning.MessageSignature] are progressively coarser keys. [WriteLog]
// serializes warnings back into the same format so that parsing its output
// reproduces the input records.
package warning
