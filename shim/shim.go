// Package shim is the runtime half of curl-inject-opt. It is linked into the
// preload library, decodes the option list from the environment once at
// load time and applies it to every handle that passes through an
// intercepted libcurl entry point before delegating to the real function.
package shim

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/coder/curl-inject-opt/codec"
	"github.com/coder/curl-inject-opt/options"
	"github.com/coder/curl-inject-opt/preload"
	"github.com/coder/curl-inject-opt/util"
)

// Environment variables shared with the launcher.
const (
	EnvOptions   = "OPT_INJECT"
	EnvDebug     = "OPT_INJECT_DEBUG"
	EnvNoInherit = "OPT_INJECT_NO_INHERIT"
)

// Names of the intercepted and delegated libcurl entry points.
const (
	SymEasyPerform    = "curl_easy_perform"
	SymEasySetopt     = "curl_easy_setopt"
	SymMultiAddHandle = "curl_multi_add_handle"
)

// EntryPoints lists every symbol the shim must resolve.
var EntryPoints = []string{SymEasyPerform, SymEasySetopt, SymMultiAddHandle}

// Handle is an opaque CURL easy handle.
type Handle uintptr

// MultiHandle is an opaque CURLM multi handle.
type MultiHandle uintptr

// Code is a CURLcode.
type Code int32

// MultiCode is a CURLMcode.
type MultiCode int32

const (
	CodeOK         Code = 0
	CodeFailedInit Code = 2

	MultiCodeOK            MultiCode = 0
	MultiCodeInternalError MultiCode = 4
)

// Library is the set of original libcurl entry points the shim delegates to.
type Library interface {
	// SetOption calls the original curl_easy_setopt with the call shape
	// matching the option's kind.
	SetOption(h Handle, opt options.Option) Code
	EasyPerform(h Handle) Code
	MultiAddHandle(m MultiHandle, h Handle) MultiCode
}

// Environment is the process environment as seen by the shim.
type Environment interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
}

// OSEnv is the real process environment. With cgo enabled, os.Setenv also
// updates the C environment, so children spawned by the host see changes.
type OSEnv struct{}

func (OSEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (OSEnv) Setenv(key, value string) error      { return os.Setenv(key, value) }
func (OSEnv) Unsetenv(key string) error           { return os.Unsetenv(key) }

// Config configures a Runtime.
type Config struct {
	// Load resolves the original entry points, skipping the shim itself.
	Load func() (Library, error)
	Env  Environment
	// Stderr receives diagnostics. Defaults to os.Stderr.
	Stderr io.Writer
	// Abort terminates the process. It is called on protocol errors during
	// initialization and on any intercepted call after a failed
	// initialization.
	Abort func()
	// PreloadStripped means the no-inherit entry was already removed from
	// the preload variable while the library was loading. New then leaves
	// the variable alone.
	PreloadStripped bool
}

// State is the initialization outcome.
type State int

const (
	StateReady State = iota + 1
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Runtime is the process wide shim context. It is never modified after New
// returns, so intercepted calls may run concurrently without locking.
type Runtime struct {
	state     State
	err       error
	lib       Library
	options   options.List
	debug     bool
	noInherit string
	logger    *slog.Logger
	abort     func()
}

var (
	initOnce sync.Once
	current  *Runtime
)

// Init creates the process wide Runtime on first use and returns it. Later
// calls ignore cfg.
func Init(cfg Config) *Runtime {
	initOnce.Do(func() {
		current = New(cfg)
	})
	return current
}

// Current returns the Runtime created by Init, or nil before Init ran.
func Current() *Runtime {
	return current
}

// New initializes a Runtime from cfg. Resolution failures leave the Runtime
// in StateFailed; a malformed option list aborts immediately.
func New(cfg Config) *Runtime {
	if cfg.Env == nil {
		cfg.Env = OSEnv{}
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Abort == nil {
		cfg.Abort = func() { os.Exit(134) }
	}

	debugValue, _ := cfg.Env.LookupEnv(EnvDebug)
	r := &Runtime{
		debug:  util.Truthy(debugValue),
		abort:  cfg.Abort,
		state:  StateReady,
		logger: setupLogging(cfg.Stderr, util.Truthy(debugValue)),
	}
	r.logger.Debug("debug is on")

	lib, err := cfg.Load()
	if err != nil {
		r.state = StateFailed
		r.err = fmt.Errorf("failed to resolve libcurl entry points: %w", err)
		r.logger.Debug("initialization failed", "error", r.err)
	}
	r.lib = lib

	if raw, ok := cfg.Env.LookupEnv(EnvOptions); ok {
		list, err := codec.DecodeString(raw)
		if err != nil {
			r.state = StateFailed
			r.err = fmt.Errorf("failed to parse %s: %w", EnvOptions, err)
			r.logger.Error("invalid option list", "error", r.err)
			r.abort()
			return r
		}
		r.options = list
	}

	if marker, ok := cfg.Env.LookupEnv(EnvNoInherit); ok && marker != "" {
		r.noInherit = marker
		if cfg.PreloadStripped {
			r.logger.Debug("preload list already rewritten at load time")
		} else if err := stripPreload(cfg.Env, marker); err != nil {
			r.logger.Error("failed to remove shim from preload list", "error", err)
		}
	}

	r.logger.Debug("initialized", "state", r.state, "options", len(r.options), "no_inherit", r.noInherit)
	return r
}

// stripPreload removes lib from the preload variable so processes spawned
// from here on are not intercepted.
func stripPreload(env Environment, lib string) error {
	chain, ok := env.LookupEnv(preload.EnvVar)
	if !ok {
		return nil
	}
	stripped := preload.Remove(chain, lib)
	if stripped == chain {
		return nil
	}
	if stripped == "" {
		return env.Unsetenv(preload.EnvVar)
	}
	return env.Setenv(preload.EnvVar, stripped)
}

func setupLogging(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With("component", "curl-inject-opt")
}

func (r *Runtime) State() State {
	return r.state
}

// Err is the initialization error, if any.
func (r *Runtime) Err() error {
	return r.err
}

// Options returns the decoded option list.
func (r *Runtime) Options() options.List {
	return r.options
}

func (r *Runtime) Debug() bool {
	return r.debug
}

// ready aborts the process if initialization failed. It only returns false
// when Abort returns, which the production abort never does.
func (r *Runtime) ready(entryPoint string) bool {
	if r.state == StateReady {
		return true
	}
	r.logger.Error("intercepted call after failed initialization", "entry_point", entryPoint, "error", r.err)
	r.abort()
	return false
}

// Apply sets every configured option on h, in order. A rejected option is
// logged and skipped.
func (r *Runtime) Apply(h Handle) {
	for _, opt := range r.options {
		r.logger.Debug("setting option", "option", opt.Descriptor.Name, "value", opt.Value.String())
		if code := r.lib.SetOption(h, opt); code != CodeOK {
			r.logger.Warn("failed to set option", "option", opt.Descriptor.Name, "code", int32(code))
		}
	}
}

// EasyPerform wraps curl_easy_perform.
func (r *Runtime) EasyPerform(h Handle) Code {
	if !r.ready(SymEasyPerform) {
		return CodeFailedInit
	}
	r.logger.Debug("curl_easy_perform() called")
	r.Apply(h)
	return r.lib.EasyPerform(h)
}

// MultiAddHandle wraps curl_multi_add_handle.
func (r *Runtime) MultiAddHandle(m MultiHandle, h Handle) MultiCode {
	if !r.ready(SymMultiAddHandle) {
		return MultiCodeInternalError
	}
	r.logger.Debug("curl_multi_add_handle() called")
	r.Apply(h)
	return r.lib.MultiAddHandle(m, h)
}
