// Command idl checks and evaluates IDL units against an architecture
// configuration.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
