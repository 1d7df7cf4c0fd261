package cli

import (
	"fmt"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/spf13/cobra"
)

// createLanguagesCommand builds the subcommand listing every language the
// bundled lexer registry recognizes, one name per line.
func createLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   languagesUse,
		Short: languagesShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			for _, languageName := range lexers.GlobalLexerRegistry.Names(false) {
				if _, writeError := fmt.Fprintln(command.OutOrStdout(), languageName); writeError != nil {
					return writeError
				}
			}
			return nil
		},
	}
}
