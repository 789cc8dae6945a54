// Package main is the entry point for cardbill.
package main

func main() {
	Execute()
}
