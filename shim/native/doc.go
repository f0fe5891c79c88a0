// Package native binds the shim to the real libcurl through the dynamic
// loader. It resolves curl_easy_perform, curl_easy_setopt and
// curl_multi_add_handle with dlsym(RTLD_NEXT) and forwards calls with the C
// call shape each option kind needs. It requires cgo on linux or darwin.
package native
