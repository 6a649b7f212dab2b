// glapigen reads the GL API XML description, merges every function's entry
// points, assigns dispatch offsets and writes the dispatch artifacts.
//
// Usage:
//
//	go run github.com/mlwelles/glapigen validate --api gl_API.xml
//	go run github.com/mlwelles/glapigen generate -o out/
//
// When invoked via go:generate, paths in the config file are resolved
// against the config file's directory.
package main

func main() {
	Execute()
}
