// Package cli provides command-line interface setup and configuration
// for learnmk. It defines the cobra command tree, binds flags to viper
// keys and reads the optional .learnmk.yaml config file.
package cli
