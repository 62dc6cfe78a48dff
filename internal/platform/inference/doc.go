// Package inference implements generation strategies backed by hosted
// text-inference HTTP endpoints.
//
// Each endpoint is configured with an explicit strategy kind:
//
//   - summarize: summarization models returning [{"summary_text": ...}]
//   - extractive: extractive question answering returning {"answer": ...}
//   - instruct: instruction-following models prompted for Q:/A: pairs
//   - complete: free-completion models continuing a "Q:" prompt
//
// Strategies return raw candidates. Normalization and fallback are the
// responsibility of the generation package.
package inference
