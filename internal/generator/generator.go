package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"
)

// Config holds site generation settings.
type Config struct {
	// SitesRoot is the directory that holds one subdirectory per tenant.
	SitesRoot string
	// BackendTemplateDir and FrontendTemplateDir are optional template
	// trees copied into each generated site. A missing template dir is
	// skipped; the configuration artifacts are generated either way.
	BackendTemplateDir  string
	FrontendTemplateDir string
	// MongoURI is written into each generated backend env file.
	MongoURI string
	// Mode is the run mode written into generated env files.
	Mode string
	// DevOrigin is the fixed development origin always present in the
	// generated CORS allow-list.
	DevOrigin string
}

// Tenant is the registry record a site is generated from.
type Tenant struct {
	Subdomain    string
	Name         string
	DatabaseName string
}

// Result describes a generated site.
type Result struct {
	SiteDir      string `json:"site_dir"`
	BackendDir   string `json:"backend_dir"`
	FrontendDir  string `json:"frontend_dir"`
	BackendPort  int    `json:"backend_port"`
	FrontendPort int    `json:"frontend_port"`
}

// Service materializes per-tenant deployments from the shared templates.
//
// Generation is a strictly ordered sequence of filesystem steps. Any failure
// aborts the run and surfaces the raw error; no rollback is attempted, so a
// failed run can leave a partially written site dir behind. The caller
// decides whether to delete it before retrying. Re-running for an existing
// tenant overwrites generated artifacts in place but never deletes files it
// does not own, so manual edits outside the generated set survive (edits TO
// generated files do not).
type Service struct {
	cfg Config
	log *logrus.Entry
}

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// files never copied out of any template tree
var backendExcludes = map[string]bool{
	"node_modules":      true,
	".env":              true,
	".env.local":        true,
	"package-lock.json": true,
	"yarn.lock":         true,
}

// frontend templates additionally leave compiled output behind
var frontendExcludes = map[string]bool{
	"node_modules":      true,
	"build":             true,
	".env":              true,
	".env.local":        true,
	"package-lock.json": true,
	"yarn.lock":         true,
}

// NewService creates a site generator.
func NewService(cfg Config) *Service {
	if cfg.SitesRoot == "" {
		cfg.SitesRoot = "sites"
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.Mode == "" {
		cfg.Mode = "development"
	}
	if cfg.DevOrigin == "" {
		cfg.DevOrigin = "http://localhost:3000"
	}
	return &Service{
		cfg: cfg,
		log: logrus.WithField("component", "site_generator"),
	}
}

// Generate builds the full site for a tenant and returns where it landed.
func (s *Service) Generate(ctx context.Context, t Tenant) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !subdomainPattern.MatchString(t.Subdomain) {
		return nil, fmt.Errorf("invalid subdomain %q: must be a lowercase slug", t.Subdomain)
	}
	if t.DatabaseName == "" {
		t.DatabaseName = "tenant_" + t.Subdomain
	}

	offset := PortOffset(t.Subdomain)
	backendPort := BackendBasePort + offset
	frontendPort := FrontendBasePort + offset

	siteDir := filepath.Join(s.cfg.SitesRoot, t.Subdomain)
	backendDir := filepath.Join(siteDir, "backend")
	frontendDir := filepath.Join(siteDir, "frontend")

	log := s.log.WithField("tenant", t.Subdomain)
	log.WithFields(logrus.Fields{
		"backend_port":  backendPort,
		"frontend_port": frontendPort,
		"database":      t.DatabaseName,
	}).Info("Generating tenant site")

	// 1. Directory tree
	for _, dir := range []string{backendDir, frontendDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create site directory %s: %w", dir, err)
		}
	}

	// 2. Backend template
	if err := s.copyTemplate(s.cfg.BackendTemplateDir, backendDir, backendExcludes, log.WithField("step", "backend_template")); err != nil {
		return nil, err
	}

	// 3. Backend env file
	env := renderEnvFile(backendEnv(t, s.cfg, backendPort, frontendPort))
	if err := os.WriteFile(filepath.Join(backendDir, ".env"), []byte(env), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write backend env file: %w", err)
	}
	log.Info("Wrote backend .env")

	// 4. Server manifest + run script. Generated sites run the shared
	// tenant-server binary; only configuration is materialized per tenant.
	if err := s.writeServerManifest(t, backendDir, backendPort, frontendPort); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(backendDir, "run.sh"), []byte(runScript(t)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to write run script: %w", err)
	}
	log.Info("Wrote server manifest and run script")

	// 5. Backend package descriptor
	if err := s.rewritePackageDescriptor(backendDir, t.Subdomain+"-backend", fmt.Sprintf("Backend API for %s", t.Name), log); err != nil {
		return nil, err
	}

	// 6. Frontend: template, env, descriptor, API client
	if err := s.copyTemplate(s.cfg.FrontendTemplateDir, frontendDir, frontendExcludes, log.WithField("step", "frontend_template")); err != nil {
		return nil, err
	}
	env = renderEnvFile(frontendEnv(t, backendPort, frontendPort))
	if err := os.WriteFile(filepath.Join(frontendDir, ".env"), []byte(env), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write frontend env file: %w", err)
	}
	log.Info("Wrote frontend .env")

	if err := s.rewritePackageDescriptor(frontendDir, t.Subdomain+"-frontend", fmt.Sprintf("Frontend for %s", t.Name), log); err != nil {
		return nil, err
	}

	apiDir := filepath.Join(frontendDir, "src", "api")
	if err := os.MkdirAll(apiDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create frontend api dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(apiDir, "client.js"), []byte(apiClientModule(backendPort)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write frontend api client: %w", err)
	}
	log.Info("Wrote frontend API client")

	log.Info("Site generation complete")
	return &Result{
		SiteDir:      siteDir,
		BackendDir:   backendDir,
		FrontendDir:  frontendDir,
		BackendPort:  backendPort,
		FrontendPort: frontendPort,
	}, nil
}

// copyTemplate copies a template tree into dst, skipping the entries in
// excludes. A missing template dir is not an error: config-only generation
// is a supported deployment shape.
func (s *Service) copyTemplate(templateDir, dst string, excludes map[string]bool, log *logrus.Entry) error {
	if templateDir == "" {
		return nil
	}
	if _, err := os.Stat(templateDir); os.IsNotExist(err) {
		log.WithField("template", templateDir).Info("Template dir not found, skipping copy")
		return nil
	}

	err := filepath.WalkDir(templateDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if excludes[d.Name()] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(templateDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
	if err != nil {
		return fmt.Errorf("failed to copy template %s: %w", templateDir, err)
	}
	log.WithField("template", templateDir).Info("Copied template tree")
	return nil
}

// writeServerManifest records the parameters the dedicated tenant-server
// process is started with: port, CORS allow-list, mounted route groups and
// the health endpoint.
func (s *Service) writeServerManifest(t Tenant, backendDir string, backendPort, frontendPort int) error {
	manifest := map[string]interface{}{
		"tenant":    t.Name,
		"subdomain": t.Subdomain,
		"database":  t.DatabaseName,
		"port":      backendPort,
		"cors_allowed_origins": []string{
			fmt.Sprintf("http://localhost:%d", frontendPort),
			s.cfg.DevOrigin,
		},
		"routes": []string{
			"/api/auth",
			"/api/pages",
			"/api/settings",
			"/api/clients",
			"/api/products",
			"/api/team-members",
			"/api/certificates",
			"/api/testimonials",
			"/api/contacts",
		},
		"health": "/health",
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal server manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(backendDir, "server.json"), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write server manifest: %w", err)
	}
	return nil
}

// rewritePackageDescriptor embeds the tenant in a copied package.json.
// Sites generated without a template have no descriptor; that is fine.
func (s *Service) rewritePackageDescriptor(dir, name, description string, log *logrus.Entry) error {
	path := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.WithField("path", path).Info("No package descriptor, skipping rewrite")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read package descriptor: %w", err)
	}

	var pkg map[string]interface{}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("failed to parse package descriptor %s: %w", path, err)
	}
	pkg["name"] = name
	pkg["description"] = description

	out, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal package descriptor: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write package descriptor: %w", err)
	}
	log.WithField("path", path).Info("Rewrote package descriptor")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
