// Package classify implements the classify command.
package classify

import (
	"io"

	"github.com/spf13/cobra"

	"fjacquet/camp-registration/cmd/common"
	"fjacquet/camp-registration/cmd/root"
	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/receipt"
	"fjacquet/camp-registration/internal/registration"
)

var (
	keyword  string
	fileName string
	text     string
)

// Result is what the command prints.
type Result struct {
	Provider string `json:"provider" yaml:"provider" csv:"provider"`
	Keyword  string `json:"keyword,omitempty" yaml:"keyword,omitempty" csv:"keyword"`
	Match    bool   `json:"match" yaml:"match" csv:"match"`
}

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Decide which provider a receipt belongs to",
	Long: `Classify applies the provider rules to receipt text (from --text or --input)
and a file name. Content is checked for the exact keyword first; the file
name is only consulted when there is no content.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := receipt.ClassifyInput{Text: text, Filename: fileName}
		if in.Text == "" && root.SharedFlags.Input != "" {
			data, err := common.ReadInput(root.SharedFlags.Input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			in.Text = string(data)
		}
		res := Classify(in, keyword)
		root.GetLogger().Debug("Receipt classified", logging.F(logging.FieldProvider, res.Provider))
		return common.WriteOutput(root.SharedFlags.Output, cmd.OutOrStdout(), func(w io.Writer) error {
			if root.SharedFlags.Format == common.FormatCSV {
				return common.Render(w, common.FormatCSV, []Result{res})
			}
			return common.Render(w, root.SharedFlags.Format, res)
		})
	},
}

func init() {
	Cmd.Flags().StringVar(&keyword, "keyword", "", "Provider keyword to test for, e.g. Telebirr")
	Cmd.Flags().StringVar(&fileName, "filename", "", "Receipt file name")
	Cmd.Flags().StringVar(&text, "text", "", "Receipt text")
}

// Classify names the provider of in and, when keyword is set, reports
// whether the receipt matches it.
func Classify(in receipt.ClassifyInput, keyword string) Result {
	res := Result{Provider: registration.ClassifyProvider(in), Keyword: keyword}
	if keyword != "" {
		res.Match = receipt.Classify(in, keyword)
	}
	return res
}
