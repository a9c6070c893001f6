package main

import (
	"context"
	"fmt"
	"os"

	"siteforge/internal/config"
	"siteforge/internal/generator"
)

// generate-site materializes one tenant site on disk without going through
// the platform API. Useful for local development and for re-provisioning a
// tenant whose site directory was lost.
//
// Usage: generate-site <subdomain> <name> <database_name>
func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "Usage: generate-site <subdomain> <name> <database_name>")
		os.Exit(1)
	}
	subdomain, name, databaseName := os.Args[1], os.Args[2], os.Args[3]

	cfg := config.New()
	svc := generator.NewService(generator.Config{
		SitesRoot:           cfg.Generator.SitesRoot,
		BackendTemplateDir:  cfg.Generator.BackendTemplateDir,
		FrontendTemplateDir: cfg.Generator.FrontendTemplateDir,
		MongoURI:            cfg.Mongo.URI,
		Mode:                cfg.Generator.Mode,
		DevOrigin:           cfg.Generator.DevOrigin,
	})

	result, err := svc.Generate(context.Background(), generator.Tenant{
		Subdomain:    subdomain,
		Name:         name,
		DatabaseName: databaseName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Site generation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Site generated at %s\n", result.SiteDir)
	fmt.Printf("  backend:  %s (port %d)\n", result.BackendDir, result.BackendPort)
	fmt.Printf("  frontend: %s (port %d)\n", result.FrontendDir, result.FrontendPort)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  TENANT_DATABASE=%s PORT=%d tenant-server   # serve the backend\n", databaseName, result.BackendPort)
	fmt.Printf("  cd %s && npm install && npm start          # serve the frontend\n", result.FrontendDir)
}
