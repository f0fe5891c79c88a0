package shim

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coder/curl-inject-opt/options"
	"github.com/coder/curl-inject-opt/preload"
)

// recordingLibrary is a stand-in for libcurl that records every call.
type recordingLibrary struct {
	mu    sync.Mutex
	calls []string
	// reject makes SetOption fail for the named option.
	reject string
}

func (l *recordingLibrary) record(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *recordingLibrary) SetOption(h Handle, opt options.Option) Code {
	l.record(fmt.Sprintf("setopt(%d, %d, %s)", h, opt.Descriptor.Target, opt.Value))
	if opt.Descriptor.Name == l.reject {
		return Code(48) // CURLE_UNKNOWN_OPTION
	}
	return CodeOK
}

func (l *recordingLibrary) EasyPerform(h Handle) Code {
	l.record(fmt.Sprintf("perform(%d)", h))
	return Code(7)
}

func (l *recordingLibrary) MultiAddHandle(m MultiHandle, h Handle) MultiCode {
	l.record(fmt.Sprintf("multi_add(%d, %d)", m, h))
	return MultiCode(3)
}

type mapEnv map[string]string

func (e mapEnv) LookupEnv(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

func (e mapEnv) Setenv(key, value string) error {
	e[key] = value
	return nil
}

func (e mapEnv) Unsetenv(key string) error {
	delete(e, key)
	return nil
}

type harness struct {
	lib     *recordingLibrary
	env     mapEnv
	stderr  *bytes.Buffer
	aborted int
}

func newHarness(env mapEnv) *harness {
	return &harness{
		lib:    &recordingLibrary{},
		env:    env,
		stderr: &bytes.Buffer{},
	}
}

func (h *harness) config() Config {
	return Config{
		Load:   func() (Library, error) { return h.lib, nil },
		Env:    h.env,
		Stderr: h.stderr,
		Abort:  func() { h.aborted++ },
	}
}

func TestEasyPerformAppliesOptionsBeforeDelegating(t *testing.T) {
	h := newHarness(mapEnv{EnvOptions: "client-cert=/tmp/c.pem"})
	r := New(h.config())
	require.Equal(t, StateReady, r.State())

	code := r.EasyPerform(Handle(42))
	require.Equal(t, Code(7), code, "result of the original function is returned unchanged")
	require.Equal(t, []string{
		"setopt(42, 10025, /tmp/c.pem)",
		"perform(42)",
	}, h.lib.calls)
	require.Zero(t, h.aborted)
}

func TestMultiAddHandleAppliesOptionsInOrder(t *testing.T) {
	h := newHarness(mapEnv{EnvOptions: "timeout=10,verbose=1,timeout=20,proxy=http://p%2C1"})
	r := New(h.config())

	code := r.MultiAddHandle(MultiHandle(5), Handle(6))
	require.Equal(t, MultiCode(3), code)
	require.Equal(t, []string{
		"setopt(6, 155, 10)",
		"setopt(6, 41, 1)",
		"setopt(6, 155, 20)",
		"setopt(6, 10004, http://p,1)",
		"multi_add(5, 6)",
	}, h.lib.calls)
}

func TestNoOptionsStillDelegates(t *testing.T) {
	for _, env := range []mapEnv{{}, {EnvOptions: ""}, {EnvOptions: ",,"}} {
		h := newHarness(env)
		r := New(h.config())
		require.Empty(t, r.Options())

		r.EasyPerform(Handle(1))
		require.Equal(t, []string{"perform(1)"}, h.lib.calls)
	}
}

func TestRejectedOptionDoesNotStopOthers(t *testing.T) {
	h := newHarness(mapEnv{
		EnvOptions: "verbose=1,proxy-type=99,timeout=5",
		EnvDebug:   "1",
	})
	h.lib.reject = "proxy-type"
	r := New(h.config())

	require.Equal(t, Code(7), r.EasyPerform(Handle(9)))
	require.Equal(t, []string{
		"setopt(9, 41, 1)",
		"setopt(9, 101, 99)",
		"setopt(9, 155, 5)",
		"perform(9)",
	}, h.lib.calls)
	require.Contains(t, h.stderr.String(), "failed to set option")
	require.Contains(t, h.stderr.String(), "option=proxy-type")
	require.Contains(t, h.stderr.String(), "code=48")
}

func TestRejectedOptionIsQuietWithoutDebug(t *testing.T) {
	h := newHarness(mapEnv{EnvOptions: "proxy-type=99"})
	h.lib.reject = "proxy-type"
	r := New(h.config())

	r.EasyPerform(Handle(1))
	require.Empty(t, h.stderr.String())
}

func TestDebugLogging(t *testing.T) {
	h := newHarness(mapEnv{EnvOptions: "verbose=1", EnvDebug: "on"})
	r := New(h.config())
	require.True(t, r.Debug())

	r.EasyPerform(Handle(1))
	out := h.stderr.String()
	require.Contains(t, out, "debug is on")
	require.Contains(t, out, "curl_easy_perform() called")
	require.Contains(t, out, "setting option")
	require.Contains(t, out, "component=curl-inject-opt")
}

func TestDebugFlagValues(t *testing.T) {
	for value, expected := range map[string]bool{"1": true, "TRUE": true, "on": true, "0": false, "false": false, "Off": false} {
		h := newHarness(mapEnv{EnvDebug: value})
		require.Equal(t, expected, New(h.config()).Debug(), value)
	}
	require.False(t, New(newHarness(mapEnv{}).config()).Debug())
}

func TestResolutionFailureAbortsOnFirstCall(t *testing.T) {
	h := newHarness(mapEnv{EnvOptions: "verbose=1"})
	cfg := h.config()
	cfg.Load = func() (Library, error) {
		return nil, errors.New("failed to look up symbol curl_easy_setopt")
	}

	r := New(cfg)
	require.Equal(t, StateFailed, r.State())
	require.ErrorContains(t, r.Err(), "curl_easy_setopt")
	require.Zero(t, h.aborted, "resolution failures are deferred until first use")

	require.Equal(t, CodeFailedInit, r.EasyPerform(Handle(1)))
	require.Equal(t, 1, h.aborted)

	require.Equal(t, MultiCodeInternalError, r.MultiAddHandle(MultiHandle(1), Handle(2)))
	require.Equal(t, 2, h.aborted)

	require.Empty(t, h.lib.calls)
	require.Contains(t, h.stderr.String(), "intercepted call after failed initialization")
}

func TestMalformedOptionListAbortsAtInit(t *testing.T) {
	tests := []string{
		"unknown-option=5",
		"timeout=abc",
		"proxy=%G1",
		"timeout",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			h := newHarness(mapEnv{EnvOptions: raw})
			r := New(h.config())

			require.Equal(t, 1, h.aborted)
			require.Equal(t, StateFailed, r.State())
			require.ErrorContains(t, r.Err(), EnvOptions)
			require.Contains(t, h.stderr.String(), "invalid option list")
		})
	}
}

func TestNoInheritStripsPreload(t *testing.T) {
	const lib = "/usr/lib/libcurl_inject_opt_preload.so"

	tests := []struct {
		name     string
		preload  *string
		expected *string
	}{
		{name: "shim and others", preload: ptr(lib + ":/a:/b"), expected: ptr("/a:/b")},
		{name: "shim only", preload: ptr(lib), expected: nil},
		{name: "no preload variable", preload: nil, expected: nil},
		{name: "shim absent", preload: ptr("/a"), expected: ptr("/a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := mapEnv{EnvNoInherit: lib}
			if tt.preload != nil {
				env[preload.EnvVar] = *tt.preload
			}

			h := newHarness(env)
			r := New(h.config())
			require.Equal(t, StateReady, r.State())

			got, ok := env[preload.EnvVar]
			if tt.expected == nil {
				require.False(t, ok)
				return
			}
			require.True(t, ok)
			require.Equal(t, *tt.expected, got)
		})
	}
}

func TestPreloadUntouchedWithoutNoInherit(t *testing.T) {
	env := mapEnv{preload.EnvVar: "/shim.so:/a"}
	New(newHarness(env).config())
	require.Equal(t, "/shim.so:/a", env[preload.EnvVar])
}

func TestConcurrentCalls(t *testing.T) {
	h := newHarness(mapEnv{EnvOptions: "verbose=1,timeout=3"})
	r := New(h.config())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.EasyPerform(Handle(i))
		}(i)
	}
	wg.Wait()

	require.Len(t, h.lib.calls, 16*3)
}

func TestInitRunsOnce(t *testing.T) {
	loads := 0
	cfg := Config{
		Load: func() (Library, error) {
			loads++
			return &recordingLibrary{}, nil
		},
		Env:    mapEnv{},
		Stderr: &bytes.Buffer{},
		Abort:  func() {},
	}

	first := Init(cfg)
	second := Init(cfg)
	require.Same(t, first, second)
	require.Same(t, first, Current())
	require.Equal(t, 1, loads)
}

func ptr(s string) *string {
	return &s
}

func TestNoInheritSkipsRewriteWhenStrippedAtLoad(t *testing.T) {
	const lib = "/usr/lib/libcurl_inject_opt_preload.so"
	env := mapEnv{EnvNoInherit: lib, preload.EnvVar: lib + ":/a"}

	h := newHarness(env)
	cfg := h.config()
	cfg.PreloadStripped = true
	r := New(cfg)

	require.Equal(t, StateReady, r.State())
	require.Equal(t, lib+":/a", env[preload.EnvVar])
}

// readOnlyEnv fails the test on any write.
type readOnlyEnv struct {
	mapEnv
	t *testing.T
}

func (e readOnlyEnv) Setenv(key, _ string) error {
	e.t.Errorf("unexpected Setenv(%s)", key)
	return nil
}

func (e readOnlyEnv) Unsetenv(key string) error {
	e.t.Errorf("unexpected Unsetenv(%s)", key)
	return nil
}

func TestNoInheritDoesNotWriteUnchangedChain(t *testing.T) {
	env := readOnlyEnv{
		mapEnv: mapEnv{EnvNoInherit: "/usr/lib/libcurl_inject_opt_preload.so", preload.EnvVar: "/a:/b"},
		t:      t,
	}

	cfg := newHarness(nil).config()
	cfg.Env = env
	require.Equal(t, StateReady, New(cfg).State())
	require.Equal(t, "/a:/b", env.mapEnv[preload.EnvVar])
}
