package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	svc := NewService(Config{
		SitesRoot: root,
		MongoURI:  "mongodb://localhost:27017",
		Mode:      "development",
		DevOrigin: "http://localhost:3000",
	})
	return svc, root
}

func readEnv(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	env := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		parts := strings.SplitN(line, "=", 2)
		require.Len(t, parts, 2, "malformed env line %q", line)
		env[parts[0]] = parts[1]
	}
	return env
}

func TestGenerate_WritesConfigArtifacts(t *testing.T) {
	svc, root := newTestService(t)

	result, err := svc.Generate(context.Background(), Tenant{
		Subdomain:    "acme",
		Name:         "Acme Corp",
		DatabaseName: "tenant_acme",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "acme"), result.SiteDir)
	assert.Equal(t, 3020+PortOffset("acme"), result.BackendPort)
	assert.Equal(t, 3040+PortOffset("acme"), result.FrontendPort)

	backendEnv := readEnv(t, filepath.Join(result.BackendDir, ".env"))
	assert.Equal(t, "3066", backendEnv["PORT"])
	assert.Equal(t, "tenant_acme", backendEnv["TENANT_DATABASE"])
	assert.Equal(t, "tenant_acme", backendEnv["DATABASE_NAME"])
	assert.Equal(t, "acme", backendEnv["TENANT_SUBDOMAIN"])
	assert.Equal(t, "Acme Corp", backendEnv["TENANT_NAME"])
	assert.Equal(t, "mongodb://localhost:27017", backendEnv["MONGODB_URI"])
	assert.NotEmpty(t, backendEnv["JWT_SECRET"])
	assert.NotEmpty(t, backendEnv["SESSION_SECRET"])
	assert.NotEqual(t, backendEnv["JWT_SECRET"], backendEnv["SESSION_SECRET"])
	assert.Contains(t, backendEnv["CORS_ALLOWED_ORIGINS"], "http://localhost:3086")
	assert.Contains(t, backendEnv["CORS_ALLOWED_ORIGINS"], "http://localhost:3000")

	frontendEnv := readEnv(t, filepath.Join(result.FrontendDir, ".env"))
	assert.Equal(t, "3086", frontendEnv["PORT"])
	assert.Equal(t, "http://localhost:3066/api", frontendEnv["REACT_APP_API_URL"])
	assert.Equal(t, "Acme Corp", frontendEnv["REACT_APP_TENANT_NAME"])

	// Run script is executable and starts the shared binary
	info, err := os.Stat(filepath.Join(result.BackendDir, "run.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100)

	// API client points at the backend port
	clientJS, err := os.ReadFile(filepath.Join(result.FrontendDir, "src", "api", "client.js"))
	require.NoError(t, err)
	assert.Contains(t, string(clientJS), "http://localhost:3066/api")
}

func TestGenerate_ServerManifest(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Generate(context.Background(), Tenant{
		Subdomain: "demo",
		Name:      "Demo",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(result.BackendDir, "server.json"))
	require.NoError(t, err)

	var manifest map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &manifest))

	assert.Equal(t, "demo", manifest["subdomain"])
	assert.Equal(t, "tenant_demo", manifest["database"])
	assert.Equal(t, float64(3020+PortOffset("demo")), manifest["port"])
	assert.Contains(t, manifest["routes"], "/api/testimonials")
	assert.Contains(t, manifest["routes"], "/api/auth")
	assert.Equal(t, "/health", manifest["health"])
}

func TestGenerate_DerivesDatabaseName(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Generate(context.Background(), Tenant{Subdomain: "blog", Name: "Blog"})
	require.NoError(t, err)

	env := readEnv(t, filepath.Join(result.BackendDir, ".env"))
	assert.Equal(t, "tenant_blog", env["TENANT_DATABASE"])
}

func TestGenerate_InvalidSubdomain(t *testing.T) {
	svc, _ := newTestService(t)

	for _, subdomain := range []string{"", "Has-Caps", "under_score", "-leading", "trailing-", "dot.ted"} {
		_, err := svc.Generate(context.Background(), Tenant{Subdomain: subdomain, Name: "x"})
		assert.Error(t, err, "subdomain %q", subdomain)
	}
}

func TestGenerate_Regeneration(t *testing.T) {
	svc, _ := newTestService(t)
	tenant := Tenant{Subdomain: "shop", Name: "Shop"}

	first, err := svc.Generate(context.Background(), tenant)
	require.NoError(t, err)
	firstEnv := readEnv(t, filepath.Join(first.BackendDir, ".env"))

	// An extra file the generator does not own must survive regeneration
	extra := filepath.Join(first.BackendDir, "notes.txt")
	require.NoError(t, os.WriteFile(extra, []byte("keep me"), 0o644))

	second, err := svc.Generate(context.Background(), tenant)
	require.NoError(t, err)

	assert.Equal(t, first.BackendPort, second.BackendPort)
	assert.Equal(t, firstEnv, readEnv(t, filepath.Join(second.BackendDir, ".env")))

	data, err := os.ReadFile(extra)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestGenerate_CopiesTemplateWithExcludes(t *testing.T) {
	root := t.TempDir()
	templateDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(templateDir, "index.js"), []byte("code"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(templateDir, "package-lock.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(templateDir, "node_modules", "dep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(templateDir, "node_modules", "dep", "x.js"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(templateDir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(templateDir, "src", "app.js"), []byte("app"), 0o644))

	svc := NewService(Config{SitesRoot: root, BackendTemplateDir: templateDir})

	result, err := svc.Generate(context.Background(), Tenant{Subdomain: "acme", Name: "Acme"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(result.BackendDir, "index.js"))
	assert.FileExists(t, filepath.Join(result.BackendDir, "src", "app.js"))
	assert.NoFileExists(t, filepath.Join(result.BackendDir, "package-lock.json"))
	assert.NoDirExists(t, filepath.Join(result.BackendDir, "node_modules"))
}

func TestGenerate_BuildDirExcludedFromFrontendOnly(t *testing.T) {
	root := t.TempDir()
	backendTemplate := t.TempDir()
	frontendTemplate := t.TempDir()

	// A backend tree may legitimately ship a build/ directory
	require.NoError(t, os.MkdirAll(filepath.Join(backendTemplate, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(backendTemplate, "build", "tasks.js"), []byte("tasks"), 0o644))

	// A frontend build/ directory is compiled output and never copied
	require.NoError(t, os.MkdirAll(filepath.Join(frontendTemplate, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(frontendTemplate, "build", "index.html"), []byte("<html>"), 0o644))

	svc := NewService(Config{
		SitesRoot:           root,
		BackendTemplateDir:  backendTemplate,
		FrontendTemplateDir: frontendTemplate,
	})

	result, err := svc.Generate(context.Background(), Tenant{Subdomain: "acme", Name: "Acme"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(result.BackendDir, "build", "tasks.js"))
	assert.NoDirExists(t, filepath.Join(result.FrontendDir, "build"))
}

func TestGenerate_UnwritableSitesRoot(t *testing.T) {
	dir := t.TempDir()

	// A regular file where the sites root should be makes every directory
	// creation fail, regardless of process privileges.
	occupied := filepath.Join(dir, "sites")
	require.NoError(t, os.WriteFile(occupied, []byte("x"), 0o644))

	svc := NewService(Config{SitesRoot: occupied})
	_, err := svc.Generate(context.Background(), Tenant{Subdomain: "acme", Name: "Acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create site directory")
	assert.NoDirExists(t, filepath.Join(occupied, "acme"))
}

func TestGenerate_RewritesPackageDescriptor(t *testing.T) {
	root := t.TempDir()
	templateDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(templateDir, "package.json"),
		[]byte(`{"name":"template-backend","version":"1.0.0","description":"template"}`),
		0o644,
	))

	svc := NewService(Config{SitesRoot: root, BackendTemplateDir: templateDir})

	result, err := svc.Generate(context.Background(), Tenant{Subdomain: "acme", Name: "Acme Corp"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(result.BackendDir, "package.json"))
	require.NoError(t, err)

	var pkg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &pkg))
	assert.Equal(t, "acme-backend", pkg["name"])
	assert.Equal(t, "Backend API for Acme Corp", pkg["description"])
	assert.Equal(t, "1.0.0", pkg["version"])
}

func TestGenerate_MissingTemplateDirSkipped(t *testing.T) {
	root := t.TempDir()
	svc := NewService(Config{
		SitesRoot:           root,
		BackendTemplateDir:  filepath.Join(root, "does-not-exist"),
		FrontendTemplateDir: filepath.Join(root, "also-missing"),
	})

	result, err := svc.Generate(context.Background(), Tenant{Subdomain: "acme", Name: "Acme"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(result.BackendDir, ".env"))
}

func TestGenerate_CancelledContext(t *testing.T) {
	svc, root := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, Tenant{Subdomain: "acme", Name: "Acme"})
	assert.Error(t, err)
	assert.NoDirExists(t, filepath.Join(root, "acme"))
}

func TestDeriveSecret_StableAndScoped(t *testing.T) {
	assert.Equal(t, deriveSecret("acme", "jwt"), deriveSecret("acme", "jwt"))
	assert.NotEqual(t, deriveSecret("acme", "jwt"), deriveSecret("acme", "session"))
	assert.NotEqual(t, deriveSecret("acme", "jwt"), deriveSecret("demo", "jwt"))
}
