package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// /tmp/
	//   vault/ (.notebox)
	//     subdir/
	//       nested/
	//   configured/ (notebox.yaml)
	//   empty/
	baseDir := t.TempDir()
	vaultDir := filepath.Join(baseDir, "vault")
	subDir := filepath.Join(vaultDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	configuredDir := filepath.Join(baseDir, "configured")
	emptyDir := filepath.Join(baseDir, "empty")

	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.MkdirAll(configuredDir, 0755))
	require.NoError(t, os.MkdirAll(emptyDir, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(vaultDir, ".notebox"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configuredDir, "notebox.yaml"), []byte("adapter: fs\n"), 0644))

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: vaultDir, wantRoot: vaultDir},
		{name: "Start in Subdir", startPath: subDir, wantRoot: vaultDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: vaultDir},
		{name: "Config File Marker", startPath: configuredDir, wantRoot: configuredDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath, ".notebox")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}

func TestSessionKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".notebox")

	first, err := sessionKey(dir, nil)
	require.NoError(t, err)
	assert.Len(t, first, keySize)

	second, err := sessionKey(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second, "stored key is reused")

	info, err := os.Stat(filepath.Join(dir, keyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	explicit, err := sessionKey(dir, []byte("explicit"))
	require.NoError(t, err)
	assert.Equal(t, []byte("explicit"), explicit)

	require.NoError(t, os.WriteFile(filepath.Join(dir, keyFile), []byte("zz"), 0600))
	_, err = sessionKey(dir, nil)
	assert.Error(t, err)
}
