// Package main is the entry point for the OpenShelf bookstore server.
package main

func main() {
	Execute()
}
