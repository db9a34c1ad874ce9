// Package token defines the PHP token kinds the metadata engine works on.
// Invariants:
//   - Token.Text is the exact source text of Token.Span.
//   - Whitespace and comments are real tokens, not trivia: run navigation
//     needs to see them.
//   - Doc comments are split into DocOpen, DocStar, DocTag, DocString,
//     DocWhitespace and DocClose tokens. DocWhitespace holding a newline
//     never carries anything else.
//   - Paired delimiters ((), [], {}, #[ ], /** */) point at each other
//     through Token.Match; every other token has Match == -1.
//   - The ']' closing an attribute group has kind AttributeClose.
package token
