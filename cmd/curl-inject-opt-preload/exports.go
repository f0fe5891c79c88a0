//go:build cgo && (linux || darwin)

package main

import "C"

import (
	"unsafe"

	"github.com/coder/curl-inject-opt/shim"
	"github.com/coder/curl-inject-opt/shim/native"
)

// rt is initialized while the library loads, before the host can reach
// any exported function.
var rt *shim.Runtime

func init() {
	rt = native.Init()
}

//export curl_easy_perform
func curl_easy_perform(handle unsafe.Pointer) C.int {
	return C.int(rt.EasyPerform(shim.Handle(uintptr(handle))))
}

//export curl_multi_add_handle
func curl_multi_add_handle(multi, handle unsafe.Pointer) C.int {
	return C.int(rt.MultiAddHandle(shim.MultiHandle(uintptr(multi)), shim.Handle(uintptr(handle))))
}
