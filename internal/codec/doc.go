// Package codec inserts and removes an invisible marker code point in text.
//
// Encoding splits input into words on Unicode whitespace, marks each word
// and rejoins the words with a single ASCII space. Two insertion modes
// exist:
//
//   - PerCharacter: a marker follows every code point of every word.
//   - MidWord: one marker per word, near its middle.
//
// Decoding removes every marker and touches nothing else, so it never
// fails and is idempotent. Whitespace collapsed by Encode is not
// restored: Decode(Encode(t)) equals NormalizeWhitespace(t).
package codec
