// Package pkg provides the libraries behind libmirror.
//
// # Overview
//
// libmirror copies a Maven-style repository that publishes a master index
// into a local library tree, one directory per artifact version with the
// artifact file and a library.xml descriptor. The pkg directory is organized
// into four areas:
//
//  1. [mirror] - Orchestration (index → group → versions → files)
//  2. [integrations] - Repository clients ([integrations/maven])
//  3. [library], [versions] - Local layout, descriptors and version filtering
//  4. [cache], [catalog], [config], [errors], [httputil], [observability] - Infrastructure
//
// # Architecture
//
// The data flow of a mirror run:
//
//	master-index.xml
//	         ↓
//	    [integrations/maven] (group ids)
//	         ↓
//	    <group>/group-index.xml (artifacts + raw version lists)
//	         ↓
//	    [versions] (drop dev/alpha/beta/rc)
//	         ↓
//	    POM → packaging, display name
//	         ↓
//	    [library] (artifact file + library.xml) → [catalog]
//
// # Quick Start
//
//	cfg := config.Default()
//	client := maven.NewClient(nil, maven.Options{
//	    BaseURL: cfg.Repository.BaseURL,
//	    Timeout: cfg.Timeout(),
//	    Retry:   httputil.DefaultPolicy,
//	})
//	result, err := mirror.NewRunner(&cfg, client, nil, nil).Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d versions mirrored, %d failed\n", result.Mirrored, result.Failed())
package pkg
