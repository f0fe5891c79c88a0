package e2e_tests

import (
	"os/exec"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildHost compiles testdata/<name>.c with the system C compiler.
func buildHost(t *testing.T, name string, extra ...string) string {
	t.Helper()
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C compiler")
	}

	out := filepath.Join(t.TempDir(), name)
	args := append([]string{"-o", out, filepath.Join("testdata", name+".c")}, extra...)
	output, err := exec.Command(cc, args...).CombinedOutput()
	require.NoError(t, err, "failed to build %s: %s", name, output)
	return out
}

var libcurlPath = regexp.MustCompile(`libcurl\.so[.0-9]* => (\S+)`)

// findLibcurl returns the libcurl the system curl binary is linked against.
func findLibcurl(t *testing.T, curl string) string {
	t.Helper()
	output, err := exec.Command("ldd", curl).Output()
	if err != nil {
		t.Skip("ldd not available")
	}
	m := libcurlPath.FindSubmatch(output)
	if m == nil {
		t.Skip("curl is not dynamically linked against libcurl")
	}
	return string(m[1])
}
