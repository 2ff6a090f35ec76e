package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelpipe/internal/config"
)

type voiceRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Accent  string `json:"accent"`
	Gender  string `json:"gender"`
	Default bool   `json:"default"`
}

func newVoicesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "voices",
		Short:       "List the narration voices",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultVoice := config.Default().Reels.Voice
			voices := make([]voiceRow, 0, len(config.Voices))
			for _, v := range config.Voices {
				voices = append(voices, voiceRow{
					ID:      v.ID,
					Name:    v.Name,
					Accent:  v.Accent,
					Gender:  v.Gender,
					Default: v.ID == defaultVoice,
				})
			}
			if asJSON {
				return writeJSON(cmd, voices)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderVoiceTable(voices))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func renderVoiceTable(voices []voiceRow) string {
	title := cases.Title(language.English)
	rows := make([][]string, 0, len(voices))
	for _, v := range voices {
		rows = append(rows, []string{
			v.ID,
			title.String(v.Name),
			title.String(v.Accent),
			title.String(v.Gender),
			yesNo(v.Default),
		})
	}
	return renderTable([]string{"Voice", "Name", "Accent", "Gender", "Default"}, rows, nil)
}
