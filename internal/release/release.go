// Package release fetches Nushell releases and their release-notes blog
// posts from GitHub.
package release

// Release is one Nushell release in the resolution window. BlogPostContent
// and Instructions are populated lazily during a run; Instructions is set
// once, from cache or synthesis, and not changed afterward.
type Release struct {
	Version         string
	BlogPostURL     string
	BlogPostContent string
	Instructions    string
}
