package lsp

import "lintfix/internal/docuri"

// canonicalURI normalizes file URIs so that the same document always maps
// to one key. Other schemes pass through.
func canonicalURI(uri string) string {
	if path := docuri.ToPath(uri); path != "" {
		return docuri.FromPath(path)
	}
	return uri
}
