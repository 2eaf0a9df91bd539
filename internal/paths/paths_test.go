package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmartin/aictl/internal/envprobe"
)

func TestGlobalRoot_Default(t *testing.T) {
	probe := envprobe.NewWith(
		envprobe.WithHome("/home/jane"),
		envprobe.WithEnv(map[string]string{}),
	)

	root, err := GlobalRoot(probe)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/jane", GlobalDirName), root)
}

func TestGlobalRoot_EnvOverride(t *testing.T) {
	probe := envprobe.NewWith(
		envprobe.WithHome("/home/jane"),
		envprobe.WithEnv(map[string]string{ConfigHomeEnv: "/srv/aiconfig"}),
	)

	root, err := GlobalRoot(probe)
	require.NoError(t, err)
	assert.Equal(t, "/srv/aiconfig", root)
}

func TestFindProjectRoot_MarkerInParent(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectMarker), []byte("{}\n"), 0o644))

	got := FindProjectRoot(nested)

	// t.TempDir may return a symlinked path on some systems; compare by
	// resolving both sides.
	wantResolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, wantResolved, gotResolved)
}

func TestFindProjectRoot_NoMarker(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", FindProjectRoot(dir))
}

func TestFindProjectRoot_MarkerMustBeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ProjectMarker), 0o755))

	assert.Equal(t, "", FindProjectRoot(dir))
}

func TestProjectConfigPath(t *testing.T) {
	assert.Equal(t, "", ProjectConfigPath(""))
	assert.Equal(t, filepath.Join("/work/app", ProjectMarker), ProjectConfigPath("/work/app"))
}

func TestDocumentPaths(t *testing.T) {
	root := "/home/jane/.aiconfig"
	assert.Equal(t, filepath.Join(root, "config.yaml"), ConfigPath(root))
	assert.Equal(t, filepath.Join(root, "models.yaml"), ModelsPath(root))
	assert.Equal(t, filepath.Join(root, "agents"), AgentsDir(root))
	assert.Equal(t, filepath.Join(root, "skills"), SkillsDir(root))
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")

	require.NoError(t, EnsureDir(dir, 0))
	require.NoError(t, EnsureDir(dir, 0))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLockPath_UnderCacheHome(t *testing.T) {
	assert.Contains(t, LockPath(), AppName)
	assert.True(t, filepath.IsAbs(LockPath()))
}
