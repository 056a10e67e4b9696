// Package lesson discovers topic folders and exercise files under a content
// root and parses lesson CSV files into quiz, matching, and sentence builder
// payloads. It also maps raw folder names to display names.
package lesson
