// Package model provides the in-memory document model populated by the
// TreeTagger reader and consumed by the TreeTagger writer.
//
// # Core Types
//
//   - Document: a named, ordered sequence of tokens plus metadata annotations
//   - Token: one data row; surface text and ordered annotations
//   - Span: a named group of tokens carrying its own annotations
//   - Annotation: a name/value pair; POS and Lemma are reserved kinds
//
// Tokens and spans reference each other (many-to-many). Both sides hold
// plain pointers; neither side owns the other. Structural comparison
// (Document.Equal) walks the relation in one direction only, expressing span
// membership as token positions, so the cycle is never followed.
//
// # Example
//
//	doc := model.NewDocument("doc1")
//	tok := doc.CreateToken("Haus")
//	tok.AddAnnotation(model.NewPOS("NN"))
//	tok.AddAnnotation(model.NewLemma("Haus"))
//	np := doc.CreateSpan("np")
//	np.AddToken(tok)
package model
