package cmd

import (
	"bytes"

	"github.com/markusressel/epfa/cmd/global"
	"github.com/markusressel/epfa/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/tomlazar/table"
)

func renderTable(headers []string, rows [][]string) (string, error) {
	tab := table.Table{
		Headers: headers,
		Rows:    rows,
	}
	var buf bytes.Buffer
	err := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           !global.NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func printTable(headers []string, rows [][]string) error {
	text, err := renderTable(headers, rows)
	if err != nil {
		return err
	}
	printText(text)
	return nil
}

// printText prints preformatted output, which may contain '%'
func printText(text string) {
	ui.Printfln("%s", text)
}
