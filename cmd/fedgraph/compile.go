package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const keyOut = "out"

func (a *app) compileSDLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compile-sdl <schema.graphql|dir>...",
		Short:   "Merge, validate and print the federation schema",
		Example: `fedgraph compile-sdl users.graphql accounts.graphql --out schema.graphql`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.build(cmd.Context(), args)
			if err != nil {
				return reportBuildError(cmd, err)
			}
			out := s.Print()
			if file := a.v.GetString(keyOut); file != "" {
				return os.WriteFile(file, []byte(out), 0o644)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().String(keyOut, "", "Write the schema to this file instead of stdout")
	return cmd
}

func (a *app) sdlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sdl <schema.graphql|dir>...",
		Short: "Print the text served by Query._service.sdl",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.build(cmd.Context(), args)
			if err != nil {
				return reportBuildError(cmd, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), s.SDL())
			return err
		},
	}
}
