package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command tree against a scratch database in a temp dir
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DATABASE_URL", filepath.Join(dir, "selgo.sqlite"))
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("SITE_CONFIG", filepath.Join(dir, "missing.yaml"))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "selgo version dev\n", out)
}

func TestGuardCheck(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "protected without token redirects",
			args: []string{"guard", "check", "/routes/profile"},
			want: []string{"/routes/profile: redirect", "Location: /routes/auth/signin?redirect=%2Froutes%2Fprofile"},
		},
		{
			name: "protected with token fetches",
			args: []string{"guard", "check", "--token", "/routes/favorites"},
			want: []string{"/routes/favorites: fetch"},
		},
		{
			name: "unprotected renders",
			args: []string{"guard", "check", "/routes/boat"},
			want: []string{"/routes/boat: render"},
		},
		{
			name: "query string kept in redirect",
			args: []string{"guard", "check", "/routes/my-ads?page=2"},
			want: []string{"redirect=%2Froutes%2Fmy-ads%3Fpage%3D2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			if !strings.Contains(out, "redirect\n") {
				assert.NotContains(t, out, "Location:")
			}
		})
	}
}

func TestGuardRoutes(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "guard", "routes")
	require.NoError(t, err)
	assert.Contains(t, out, "/routes/profile\n")
	assert.Contains(t, out, "/api/auth/me\n")
}

func TestSeedAndList(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No listings found.")

	out, err = run(t, "seed", "--per-vertical", "3", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, "Created 18 listings\n", out)

	// Seeding again leaves populated verticals alone
	out, err = run(t, "seed", "--per-vertical", "3")
	require.NoError(t, err)
	assert.Equal(t, "Created 0 listings\n", out)

	out, err = run(t, "ls", "boat")
	require.NoError(t, err)
	assert.Contains(t, out, "VERTICAL")
	assert.Contains(t, out, "(3 listings)")

	out, err = run(t, "rotate-featured", "--per-vertical", "1")
	require.NoError(t, err)
	assert.Equal(t, "Featured 6 listings\n", out)
}

func TestList_UnknownVertical(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "ls", "spaceships")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown vertical")
}

func TestSeed_RejectsNonPositive(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "seed", "--per-vertical", "0")
	require.Error(t, err)
}

func TestUserCreate(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "user", "create", "--email", "Kari@Example.com", "--name", "Kari", "--password", "hunter2hunter2")
	require.NoError(t, err)
	assert.Contains(t, out, "(kari@example.com)")
	assert.Contains(t, out, "Session token: ")

	_, err = run(t, "user", "create", "--email", "kari@example.com", "--name", "Kari", "--password", "hunter2hunter2")
	require.Error(t, err)

	_, err = run(t, "user", "create", "--email", "ola@example.com", "--name", "Ola", "--password", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func TestUserCreate_RequiresFlags(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "user", "create", "--email", "ola@example.com")
	require.Error(t, err)
}

func TestUserCreate_PasswordFromEnv(t *testing.T) {
	setupEnv(t)
	t.Setenv("SELGO_PASSWORD", "from-the-env-1")

	out, err := run(t, "user", "create", "--email", "ola@example.com", "--name", "Ola")
	require.NoError(t, err)
	assert.Contains(t, out, "(ola@example.com)")
}

func TestSchedule(t *testing.T) {
	setupEnv(t)
	site := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(site, []byte("rotate_schedule: \"0 0 1 1 *\"\nfeatured_per_page: 5\n"), 0o644))
	t.Setenv("SITE_CONFIG", site)

	out, err := run(t, "schedule", "-n", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Schedule: 0 0 1 1 * (5 per vertical)", lines[0])
	assert.Contains(t, lines[1], "-01-01T00:00:00")
	assert.Contains(t, lines[2], "-01-01T00:00:00")
	assert.NotEqual(t, lines[1], lines[2])
}

func TestSchedule_InvalidExpression(t *testing.T) {
	setupEnv(t)
	site := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(site, []byte("rotate_schedule: \"every tuesday\"\n"), 0o644))
	t.Setenv("SITE_CONFIG", site)

	_, err := run(t, "schedule")
	assert.ErrorContains(t, err, "invalid rotate schedule")
}

func TestRotateFeatured_RejectsNegativeSiteConfig(t *testing.T) {
	setupEnv(t)
	site := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(site, []byte("featured_per_page: -1\n"), 0o644))
	t.Setenv("SITE_CONFIG", site)

	_, err := run(t, "rotate-featured")
	assert.ErrorContains(t, err, "featured_per_page")
}

func TestUserCreate_GeneratedSecret(t *testing.T) {
	setupEnv(t)
	t.Setenv("JWT_SECRET", "")

	out, err := run(t, "user", "create", "--email", "per@example.com", "--name", "Per", "--password", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "Session token: ")
}
