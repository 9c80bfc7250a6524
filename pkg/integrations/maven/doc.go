// Package maven provides an HTTP client for Maven-layout repositories that
// publish a master index, such as Google's Maven repository
// (https://maven.google.com).
//
// # Repository Layout
//
// The repository exposes three kinds of XML documents:
//
//	master-index.xml                          groups, one child element each
//	<group-path>/group-index.xml              artifacts with their versions
//	<group-path>/<a>/<v>/<a>-<v>.pom          project descriptor
//
// Group paths replace the dots of a group id with slashes, so the index of
// "androidx.core" lives at androidx/core/group-index.xml. Artifact files sit
// next to their POM and use the POM's <packaging> as extension ("jar" when
// absent).
//
// # Usage
//
//	client := maven.NewClient(c, maven.Options{
//	    BaseURL:  "https://dl.google.com/dl/android/maven2",
//	    IndexTTL: 6 * time.Hour,
//	    Retry:    httputil.DefaultPolicy,
//	})
//
//	idx, err := client.FetchMasterIndex(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, group := range idx.Groups {
//	    fmt.Println(group)
//	}
//
// # Validation
//
// Every document is parsed and validated before it is used or cached:
// the master index must have a <metadata> root, a group index must be rooted
// at an element named after its group with a versions attribute on every
// child, and a POM must have a <project> root. Invalid documents fail with
// [errors.ErrCodeInvalidDocument].
//
// # Caching
//
// Indexes are cached for Options.IndexTTL. POMs never change once
// published and are cached without expiry. Artifact bodies are streamed and
// never cached.
//
// [errors.ErrCodeInvalidDocument]: github.com/matzehuels/libmirror/pkg/errors.ErrCodeInvalidDocument
package maven
