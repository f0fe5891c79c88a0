//go:build cgo && (linux || darwin)

package native

/*
#cgo linux LDFLAGS: -ldl
#define _GNU_SOURCE
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

typedef int (*curl_easy_setopt_fn)(void *handle, int option, ...);
typedef int (*curl_easy_perform_fn)(void *handle);
typedef int (*curl_multi_add_handle_fn)(void *multi, void *handle);

// next_symbol looks up name in the modules loaded after this one.
static void *next_symbol(const char *name, const char **err) {
	dlerror();
	void *sym = dlsym(RTLD_NEXT, name);
	const char *e = dlerror();
	if (e != NULL) {
		*err = e;
		return NULL;
	}
	return sym;
}

static int setopt_long(void *fn, uintptr_t handle, int option, long value) {
	return ((curl_easy_setopt_fn)fn)((void *)handle, option, value);
}

static int setopt_string(void *fn, uintptr_t handle, int option, const char *value) {
	return ((curl_easy_setopt_fn)fn)((void *)handle, option, value);
}

static int easy_perform(void *fn, uintptr_t handle) {
	return ((curl_easy_perform_fn)fn)((void *)handle);
}

static int multi_add_handle(void *fn, uintptr_t multi, uintptr_t handle) {
	return ((curl_multi_add_handle_fn)fn)((void *)multi, (void *)handle);
}

#ifdef __APPLE__
#define PRELOAD_VAR "DYLD_INSERT_LIBRARIES"
#else
#define PRELOAD_VAR "LD_PRELOAD"
#endif
#define NO_INHERIT_VAR "OPT_INJECT_NO_INHERIT"

static const char *preload_var(void) { return PRELOAD_VAR; }
static const char *no_inherit_var(void) { return NO_INHERIT_VAR; }

// strip_chain copies chain into out without any entry equal to marker and
// returns the number of entries removed. out must hold strlen(chain)+1 bytes.
static int strip_chain(const char *chain, const char *marker, char *out) {
	size_t marker_len = strlen(marker);
	size_t n = 0;
	int removed = 0, first = 1;
	const char *p = chain;
	for (;;) {
		const char *end = strchr(p, ':');
		size_t len = end != NULL ? (size_t)(end - p) : strlen(p);
		if (len == marker_len && strncmp(p, marker, len) == 0) {
			removed++;
		} else {
			if (!first) {
				out[n++] = ':';
			}
			memcpy(out + n, p, len);
			n += len;
			first = 0;
		}
		if (end == NULL) {
			break;
		}
		p = end + 1;
	}
	out[n] = '\0';
	return removed;
}

// strip_preload runs while the library is being loaded, before the host's
// main, so no child of the host inherits the shim.
__attribute__((constructor))
static void strip_preload(void) {
	const char *marker = getenv(NO_INHERIT_VAR);
	if (marker == NULL || marker[0] == '\0') {
		return;
	}
	const char *chain = getenv(PRELOAD_VAR);
	if (chain == NULL || chain[0] == '\0') {
		return;
	}
	char *out = malloc(strlen(chain) + 1);
	if (out == NULL) {
		return;
	}
	if (strip_chain(chain, marker, out) > 0) {
		if (out[0] == '\0') {
			unsetenv(PRELOAD_VAR);
		} else {
			setenv(PRELOAD_VAR, out, 1);
		}
	}
	free(out);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"github.com/coder/curl-inject-opt/options"
	"github.com/coder/curl-inject-opt/shim"
)

// library forwards to the entry points found after the shim in link order.
type library struct {
	easyPerform    unsafe.Pointer
	easySetopt     unsafe.Pointer
	multiAddHandle unsafe.Pointer
}

// Next resolves the next provider of name in the dynamic symbol search
// order, skipping the module doing the lookup.
func Next(name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var cerr *C.char
	sym := C.next_symbol(cname, &cerr)
	if cerr != nil {
		return nil, fmt.Errorf("failed to look up symbol %s: %s", name, C.GoString(cerr))
	}
	if sym == nil {
		return nil, fmt.Errorf("failed to look up symbol %s: resolved to NULL", name)
	}
	return sym, nil
}

// Load resolves every entry point in shim.EntryPoints.
func Load() (shim.Library, error) {
	resolved := make(map[string]unsafe.Pointer, len(shim.EntryPoints))
	var errs []error
	for _, name := range shim.EntryPoints {
		sym, err := Next(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		resolved[name] = sym
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &library{
		easyPerform:    resolved[shim.SymEasyPerform],
		easySetopt:     resolved[shim.SymEasySetopt],
		multiAddHandle: resolved[shim.SymMultiAddHandle],
	}, nil
}

func (l *library) SetOption(h shim.Handle, opt options.Option) shim.Code {
	id := C.int(opt.Descriptor.Target)
	switch opt.Value.Kind {
	case options.Integer:
		return shim.Code(C.setopt_long(l.easySetopt, C.uintptr_t(h), id, C.long(opt.Value.Int)))
	default:
		// libcurl copies string options, the buffer can go right after.
		value := C.CString(string(opt.Value.Text))
		defer C.free(unsafe.Pointer(value))
		return shim.Code(C.setopt_string(l.easySetopt, C.uintptr_t(h), id, value))
	}
}

func (l *library) EasyPerform(h shim.Handle) shim.Code {
	return shim.Code(C.easy_perform(l.easyPerform, C.uintptr_t(h)))
}

func (l *library) MultiAddHandle(m shim.MultiHandle, h shim.Handle) shim.MultiCode {
	return shim.MultiCode(C.multi_add_handle(l.multiAddHandle, C.uintptr_t(m), C.uintptr_t(h)))
}

// libcEnv reads the C environment. When Go runs as a shared library its own
// copy of the environment can be empty, and writing through os.Setenv from
// the runtime's thread would race with the host.
type libcEnv struct{}

func (libcEnv) LookupEnv(key string) (string, bool) {
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))

	value := C.getenv(ckey)
	if value == nil {
		return "", false
	}
	return C.GoString(value), true
}

func (libcEnv) Setenv(key, value string) error {
	ckey, cvalue := C.CString(key), C.CString(value)
	defer C.free(unsafe.Pointer(ckey))
	defer C.free(unsafe.Pointer(cvalue))

	if rc, err := C.setenv(ckey, cvalue, 1); rc != 0 {
		return fmt.Errorf("setenv %s: %w", key, err)
	}
	return nil
}

func (libcEnv) Unsetenv(key string) error {
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))

	if rc, err := C.unsetenv(ckey); rc != 0 {
		return fmt.Errorf("unsetenv %s: %w", key, err)
	}
	return nil
}

func preloadVar() string   { return C.GoString(C.preload_var()) }
func noInheritVar() string { return C.GoString(C.no_inherit_var()) }

// stripChain runs the load-time preload rewrite on chain.
func stripChain(chain, marker string) (string, int) {
	cchain, cmarker := C.CString(chain), C.CString(marker)
	defer C.free(unsafe.Pointer(cchain))
	defer C.free(unsafe.Pointer(cmarker))

	out := (*C.char)(C.malloc(C.size_t(len(chain) + 1)))
	defer C.free(unsafe.Pointer(out))

	removed := C.strip_chain(cchain, cmarker, out)
	return C.GoString(out), int(removed)
}

// Init initializes the process wide shim runtime against the real libcurl.
// The no-inherit rewrite of the preload variable already happened in the
// library's load-time constructor.
func Init() *shim.Runtime {
	return shim.Init(shim.Config{
		Load:            Load,
		Env:             libcEnv{},
		Stderr:          os.Stderr,
		Abort:           func() { C.abort() },
		PreloadStripped: true,
	})
}
