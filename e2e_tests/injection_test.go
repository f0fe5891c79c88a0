package e2e_tests

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coder/curl-inject-opt/e2e_tests/util"
)

func requireCurl(t *testing.T) string {
	t.Helper()
	if preloadLibPath == "" {
		t.Skip("interception library was not built")
	}
	curl, err := exec.LookPath("curl")
	if err != nil {
		t.Skip("curl not installed")
	}
	return curl
}

func newPayloadServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "hello from %s\n", r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInjectsIntoCurl(t *testing.T) {
	curl := requireCurl(t)
	srv := newPayloadServer(t)

	res := util.Run(t, baseEnv(t), launcherPath,
		"--preload-lib", preloadLibPath,
		"-d", "--verbose", "1",
		"--", curl, "-s", srv.URL+"/easy")

	require.Equal(t, 0, res.ExitCode, res.Stderr)
	require.Equal(t, "hello from /easy\n", res.Stdout)
	require.Contains(t, res.Stderr, "component=curl-inject-opt")
	require.Contains(t, res.Stderr, "option=verbose")
	// libcurl's own verbose trace shows the option took effect.
	require.Contains(t, res.Stderr, "> GET /easy")
}

func TestInjectsThroughMultiAddHandle(t *testing.T) {
	curl := requireCurl(t)
	host := buildHost(t, "multi_add", findLibcurl(t, curl))
	srv := newPayloadServer(t)

	res := util.Run(t, baseEnv(t), launcherPath,
		"--preload-lib", preloadLibPath,
		"-d", "--verbose", "1",
		"--", host, srv.URL+"/multi")

	require.Equal(t, 0, res.ExitCode, res.Stderr)
	require.Equal(t, "hello from /multi\n", res.Stdout)
	require.Contains(t, res.Stderr, "curl_multi_add_handle() called")
	require.NotContains(t, res.Stderr, "curl_easy_perform() called")
	require.Contains(t, res.Stderr, "> GET /multi")
}

func TestNoInheritBeforeHostMain(t *testing.T) {
	if preloadLibPath == "" {
		t.Skip("interception library was not built")
	}
	host := buildHost(t, "spawn_first")

	for i := 0; i < 10; i++ {
		res := util.Run(t, baseEnv(t), launcherPath,
			"--preload-lib", preloadLibPath, "--no-inherit",
			"--", host)

		require.Equal(t, 0, res.ExitCode, res.Stderr)
		require.Empty(t, res.Stdout, "child of the target inherited the preload list")
	}
}

func TestInheritByDefault(t *testing.T) {
	if preloadLibPath == "" {
		t.Skip("interception library was not built")
	}
	host := buildHost(t, "spawn_first")

	res := util.Run(t, baseEnv(t), launcherPath, "--preload-lib", preloadLibPath, "--", host)
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	require.Equal(t, preloadLibPath, res.Stdout)
}
