package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// deriveSecret produces the per-tenant secret written into generated env
// files. It is a deterministic digest of the subdomain, which keeps
// regeneration stable but makes the value unsuitable as a real credential;
// operators are expected to rotate it before production use.
func deriveSecret(subdomain, scope string) string {
	sum := sha256.Sum256([]byte(subdomain + ":" + scope))
	return fmt.Sprintf("%s-%s-%s", subdomain, scope, hex.EncodeToString(sum[:8]))
}

// renderEnvFile renders key=value pairs in a stable order.
func renderEnvFile(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, values[k])
	}
	return b.String()
}

// backendEnv builds the environment for a generated backend deployment.
func backendEnv(t Tenant, cfg Config, backendPort, frontendPort int) map[string]string {
	corsOrigins := fmt.Sprintf("http://localhost:%d,%s", frontendPort, cfg.DevOrigin)
	return map[string]string{
		"MODE":                 cfg.Mode,
		"PORT":                 fmt.Sprintf("%d", backendPort),
		"MONGODB_URI":          cfg.MongoURI,
		"DATABASE_NAME":        t.DatabaseName,
		"TENANT_DATABASE":      t.DatabaseName,
		"TENANT_SUBDOMAIN":     t.Subdomain,
		"TENANT_NAME":          t.Name,
		"JWT_SECRET":           deriveSecret(t.Subdomain, "jwt"),
		"SESSION_SECRET":       deriveSecret(t.Subdomain, "session"),
		"CORS_ALLOWED_ORIGINS": corsOrigins,
	}
}

// frontendEnv builds the environment for a generated frontend deployment.
func frontendEnv(t Tenant, backendPort, frontendPort int) map[string]string {
	return map[string]string{
		"PORT":                       fmt.Sprintf("%d", frontendPort),
		"REACT_APP_API_URL":          fmt.Sprintf("http://localhost:%d/api", backendPort),
		"REACT_APP_TENANT_NAME":      t.Name,
		"REACT_APP_TENANT_SUBDOMAIN": t.Subdomain,
	}
}

// runScript wraps the shared tenant-server binary with the generated env.
// Generated sites run one dedicated process each; the binary itself is not
// copied per tenant.
func runScript(t Tenant) string {
	return fmt.Sprintf(`#!/bin/sh
# Generated for tenant %q. Loads the site env and starts a dedicated server.
set -a
. "$(dirname "$0")/.env"
set +a
exec tenant-server
`, t.Subdomain)
}

// apiClientModule is the frontend API client emitted into each generated
// site. It reads the base URL from the build environment, attaches the
// stored bearer token to every request and drops credentials on a 401.
func apiClientModule(backendPort int) string {
	return fmt.Sprintf(`import axios from 'axios';

const client = axios.create({
  baseURL: process.env.REACT_APP_API_URL || 'http://localhost:%d/api',
});

client.interceptors.request.use((config) => {
  const token = localStorage.getItem('token');
  if (token) {
    config.headers.Authorization = 'Bearer ' + token;
  }
  return config;
});

client.interceptors.response.use(
  (response) => response,
  (error) => {
    if (error.response && error.response.status === 401) {
      localStorage.removeItem('token');
      localStorage.removeItem('user');
      window.location.href = '/login';
    }
    return Promise.reject(error);
  },
);

export default client;
`, backendPort)
}
