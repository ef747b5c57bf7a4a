package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/versioneer/internal/output"
)

// printSuccess writes a success envelope to the command's stdout.
func printSuccess(cmd *cobra.Command, data interface{}) error {
	cfg := output.DefaultConfig()
	cfg.Writer = cmd.OutOrStdout()
	return output.PrintWith(cfg, output.Success(data))
}

// printFailure writes an error envelope to w. Recoverable errors carry their
// code, context and suggested action.
func printFailure(w io.Writer, err error) {
	cfg := output.DefaultConfig()
	cfg.Writer = w
	if perr := output.PrintWith(cfg, output.Error(err)); perr != nil {
		slog.Warn("failed to print error response", "error", perr.Error())
	}
}
