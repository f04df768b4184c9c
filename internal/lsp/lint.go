package lsp

import (
	"time"
)

// scheduleLint debounces a lint of uri; a newer request supersedes older ones.
func (s *Server) scheduleLint(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lintSeq[uri]++
	seq := s.lintSeq[uri]
	if t := s.timers[uri]; t != nil {
		t.Stop()
	}
	s.timers[uri] = time.AfterFunc(s.debounce, func() {
		s.runLint(uri, seq)
	})
}

func (s *Server) isLatestLint(uri string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, open := s.openDocs[uri]
	return open && s.lintSeq[uri] == seq
}

func (s *Server) runLint(uri string, seq uint64) {
	if !s.isLatestLint(uri, seq) {
		return
	}
	ctx := s.context()
	lock := s.lockFor(uri)
	if err := lock.Acquire(ctx, 1); err != nil {
		return
	}
	defer lock.Release(1)
	if !s.isLatestLint(uri, seq) {
		return
	}

	start := time.Now()
	if err := s.ws.Revalidate(ctx, uri); err != nil {
		s.logf("lint failed: %s: %v", uri, err)
		return
	}
	s.mu.Lock()
	traceLSP := s.traceLSP
	s.mu.Unlock()
	if traceLSP {
		s.logf("lint: uri=%s seq=%d diagnostics=%d in %s", uri, seq, len(s.ws.Diagnostics(uri)), time.Since(start))
	}
}
