package internal

// Version is the current learnmk release.
const Version = "0.4.0"
