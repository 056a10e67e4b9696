// Package anki exports lesson content as a CSV file that Anki can import.
// Each note carries the Macedonian text, its English meaning and a tag
// naming the topic it came from.
package anki
