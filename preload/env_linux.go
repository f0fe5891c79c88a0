//go:build linux

package preload

// EnvVar is the environment variable holding the preload list.
const EnvVar = "LD_PRELOAD"

// LibraryName is the file name of the interception library.
const LibraryName = "libcurl_inject_opt_preload.so"
