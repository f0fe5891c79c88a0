//go:build darwin

package preload

// EnvVar is the environment variable holding the preload list.
const EnvVar = "DYLD_INSERT_LIBRARIES"

// LibraryName is the file name of the interception library.
const LibraryName = "libcurl_inject_opt_preload.dylib"
