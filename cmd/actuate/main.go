// Package main is the entry point for actuate.
package main

func main() {
	Execute()
}
