// Package models lists the text-to-speech models and voices available for
// pronouncing Macedonian words, both from the OpenAI API and espeak-ng.
package models
