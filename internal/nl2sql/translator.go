// Package nl2sql adapts an OpenAI-compatible chat-completions endpoint into
// the translation gateway: natural-language question in, one SQL statement
// for the connection's dialect out.
package nl2sql

// TranslationError reports that the model rejected or could not translate a
// question. It is an expected outcome, recorded on the query rather than
// surfaced as a request failure.
type TranslationError struct {
	Reason string
}

func (e *TranslationError) Error() string {
	return e.Reason
}
