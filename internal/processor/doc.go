// Package processor wires together one learnmk invocation: it opens the
// progress file, the history database and the speech provider, builds
// session controllers from them and implements the non-interactive
// subcommands such as topics, progress, history, import, export and voices.
package processor
