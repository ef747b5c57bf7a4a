package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/versioneer/internal/actions"
)

// NewCurrentCmd creates the command that prints the stored version.
func NewCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current [project]",
		Short: "Show the current version of a project (creates versioneer.txt at 0.0 if missing)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := projectArg(args)
			if err != nil {
				return cmdErr(cmd, err)
			}
			res, err := actions.Current(project)
			if err != nil {
				return cmdErr(cmd, err)
			}
			return printSuccess(cmd, res)
		},
	}
}

// projectArg resolves the optional positional project argument against the working directory.
func projectArg(args []string) (string, error) {
	_, project, err := resolveArgs(args)
	return project, err
}

// resolveArgs returns the working directory and the project it resolves args to.
func resolveArgs(args []string) (workDir, project string, err error) {
	workDir, err = os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("resolve working directory: %w", err)
	}
	arg := "."
	if len(args) == 1 {
		arg = args[0]
	}
	return workDir, actions.ResolveProject(workDir, arg), nil
}
