package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/classvault/classvault/internal/archive"
	"github.com/classvault/classvault/internal/output"
	"github.com/classvault/classvault/internal/render"
)

var listCmd = &cobra.Command{
	Use:         "list",
	Short:       "List stored snapshot archives",
	Annotations: map[string]string{"skipDB": ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		store, err := getStore(cmd)
		if err != nil {
			return cmdErr(err, output.ErrStorage)
		}

		handles, err := store.List(archive.Prefix)
		if err != nil {
			return cmdErr(err, output.ErrStorage)
		}

		// The store returns handles unordered; newest first for display.
		sort.Slice(handles, func(i, j int) bool {
			return handles[i].LastModified.After(handles[j].LastModified)
		})

		w.Success(handles, render.RenderArchiveTable(handles))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
