// Command curl-inject-opt-preload is the interception library loaded into
// the target process through the dynamic loader's preload list.
//
//	go build -buildmode=c-shared -o libcurl_inject_opt_preload.so ./cmd/curl-inject-opt-preload
package main

func main() {}
