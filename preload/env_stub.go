//go:build !linux && !darwin

package preload

// EnvVar is the environment variable holding the preload list. Platforms
// without a preload mechanism still get the ELF name so the launcher
// builds, the shim itself only supports linux and darwin.
const EnvVar = "LD_PRELOAD"

// LibraryName is the file name of the interception library.
const LibraryName = "libcurl_inject_opt_preload.so"
