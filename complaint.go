// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package psymtab

import (
	"fmt"
	"sync"

	"github.com/saferwall/symidx/log"
)

// Complainer counts and rate-limits "corrupt input" diagnostics: one
// message per distinct kind per build, never halting the parser. Modeled
// after gdb's complaint.c, folded into a per-build value instead of
// global state so a build is independently cancellable and testable.
type Complainer struct {
	mu     sync.Mutex
	seen   map[string]int
	logger *log.Helper
}

// NewComplainer creates a Complainer that logs the first occurrence of each
// distinct complaint kind through logger. A nil logger is valid; complaints
// are still counted but nothing is logged.
func NewComplainer(logger *log.Helper) *Complainer {
	return &Complainer{seen: make(map[string]int), logger: logger}
}

// Complain records one occurrence of kind with the given formatted detail.
// Only the first occurrence of a kind is logged; subsequent ones are
// counted silently. This matches gdb's "one message per distinct kind per
// build" policy for corrupt-but-recoverable input.
func (c *Complainer) Complain(kind, format string, args ...interface{}) {
	c.mu.Lock()
	n := c.seen[kind]
	c.seen[kind] = n + 1
	c.mu.Unlock()

	if n != 0 {
		return
	}
	if c.logger != nil {
		c.logger.Warnf("%s", fmt.Sprintf(format, args...))
	}
}

// Count returns how many times kind was complained about, 0 if never.
func (c *Complainer) Count(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[kind]
}

// Kinds returns the set of distinct complaint kinds seen so far.
func (c *Complainer) Kinds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]string, 0, len(c.seen))
	for k := range c.seen {
		kinds = append(kinds, k)
	}
	return kinds
}
