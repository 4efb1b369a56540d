// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
)

// newInfoPsymtabsCmd builds the "info-psymtabs [REGEXP]" command: a
// one-line summary per matching psymtab.
func newInfoPsymtabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info-psymtabs [REGEXP]",
		Short: "List psymtabs, optionally filtered by a filename regexp",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, facade, err := buildIndex(objfile)
			if err != nil {
				return err
			}

			var re *regexp.Regexp
			if len(args) > 0 {
				re, err = regexp.Compile(args[0])
				if err != nil {
					return fmt.Errorf("invalid regexp %q: %w", args[0], err)
				}
			}

			for _, pst := range facade.Storage.Range() {
				if re != nil && !re.MatchString(pst.Filename) {
					continue
				}
				shared := ""
				if pst.User != nil {
					shared = fmt.Sprintf(" (shared by %s)", pst.User.Filename)
				}
				fmt.Printf("%-40s globals=%-4d statics=%-4d deps=%-3d readin=%v%s\n",
					pst.Filename, len(pst.GlobalPsymbols), len(pst.StaticPsymbols),
					len(pst.Dependencies), pst.Readin, shared)
			}
			return nil
		},
	}
}
